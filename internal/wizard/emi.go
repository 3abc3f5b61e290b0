// internal/wizard/emi.go
package wizard

import (
	"math"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// MonthlyEMI computes the equated monthly installment for a principal at an
// annual percentage rate over tenure months, using the standard reducing
// balance formula EMI = P*r*(1+r)^N / ((1+r)^N - 1) with r the monthly rate.
// A zero rate degrades to straight division.
func MonthlyEMI(principal int64, annualRatePct float64, tenureMonths int) int64 {
	if principal <= 0 || tenureMonths <= 0 {
		return 0
	}
	if annualRatePct == 0 {
		return int64(math.Round(float64(principal) / float64(tenureMonths)))
	}

	r := annualRatePct / 1200
	factor := math.Pow(1+r, float64(tenureMonths))
	emi := float64(principal) * r * factor / (factor - 1)
	return int64(math.Round(emi))
}

// TotalInterest is the interest paid over the full tenure at the given EMI.
func TotalInterest(principal, emi int64, tenureMonths int) int64 {
	total := emi*int64(tenureMonths) - principal
	if total < 0 {
		return 0
	}
	return total
}

// BuildSummary assembles the summary read model for a completed application.
func BuildSummary(app models.Application, tenureMonths int) models.LoanSummary {
	emi := MonthlyEMI(app.LoanAmount, app.Lender.InterestRate, tenureMonths)
	interest := TotalInterest(app.LoanAmount, emi, tenureMonths)
	fee := int64(math.Round(float64(app.LoanAmount) * app.Lender.ProcessingFeePct / 100))

	return models.LoanSummary{
		ApplicationID: app.ID,
		LenderName:    app.Lender.Name,
		Principal:     app.LoanAmount,
		AnnualRatePct: app.Lender.InterestRate,
		TenureMonths:  tenureMonths,
		MonthlyEMI:    emi,
		TotalInterest: interest,
		TotalPayable:  app.LoanAmount + interest,
		ProcessingFee: fee,
		Currency:      "INR",
	}
}
