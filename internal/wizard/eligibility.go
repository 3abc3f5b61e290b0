// internal/wizard/eligibility.go
package wizard

import "github.com/deepedumate/student-loan-aggregator-sub001/internal/models"

// Eligibility band thresholds on the 0-100 composite score.
const (
	bandExcellentMin = 75
	bandGoodMin      = 50
	bandFairMin      = 30
)

// ScoreEligibility derives the composite readiness score from the profile.
// Weights: academics 30%, financials 30%, test scores 20%, co-applicant 20%.
// Each component is normalized to 0-100 before weighting.
func ScoreEligibility(p models.StudentProfile) models.EligibilityScore {
	breakdown := models.ScoreBreakdown{
		Academic:    clampPct(p.AcademicScorePct),
		Financial:   financialComponent(p),
		TestScore:   clampPct(p.TestScorePct),
		CoApplicant: coApplicantComponent(p.CoApplicantIncome),
	}

	score := (breakdown.Academic*30 + breakdown.Financial*30 +
		breakdown.TestScore*20 + breakdown.CoApplicant*20) / 100

	return models.EligibilityScore{
		Score:     score,
		Band:      bandFor(score),
		Breakdown: breakdown,
	}
}

func bandFor(score int) string {
	switch {
	case score >= bandExcellentMin:
		return "excellent"
	case score >= bandGoodMin:
		return "good"
	case score >= bandFairMin:
		return "fair"
	default:
		return "poor"
	}
}

// financialComponent scores how well the requested amount is backed: full
// marks for collateral plus a requested amount inside the course fee, scaled
// down as the request outgrows the fee or collateral is absent.
func financialComponent(p models.StudentProfile) int {
	score := 50
	if p.HasCollateral {
		score += 30
	}
	if p.CourseFee > 0 && p.RequestedAmount <= p.CourseFee {
		score += 20
	}
	return clampPct(score)
}

// coApplicantComponent scales income into a 0-100 component, saturating at
// an annual income of 24 lakh.
func coApplicantComponent(income int64) int {
	const saturation = 2400000
	if income <= 0 {
		return 0
	}
	if income >= saturation {
		return 100
	}
	return int(income * 100 / saturation)
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
