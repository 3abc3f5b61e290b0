// internal/models/wizard.go
package models

import "time"

// StudentProfile is the first wizard artifact. Later stages treat it as
// immutable input; a profile re-submission overwrites the whole artifact.
type StudentProfile struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	DateOfBirth       string `json:"dateOfBirth"`
	StudyDestination  string `json:"studyDestination"`
	StudyLevel        string `json:"studyLevel"`
	School            string `json:"school"`
	Program           string `json:"program"`
	IntakeMonth       string `json:"intakeMonth"`
	IntakeYear        string `json:"intakeYear"`
	CourseFee         int64  `json:"courseFee"`
	RequestedAmount   int64  `json:"requestedAmount"`
	CoApplicantIncome int64  `json:"coApplicantIncome"`
	AcademicScorePct  int    `json:"academicScorePct"`
	TestScorePct      int    `json:"testScorePct"`
	HasCollateral     bool   `json:"hasCollateral"`
}

// EligibilityScore is the second wizard artifact.
type EligibilityScore struct {
	Score     int            `json:"score"`
	Band      string         `json:"band"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

type ScoreBreakdown struct {
	Academic    int `json:"academic"`
	Financial   int `json:"financial"`
	TestScore   int `json:"testScore"`
	CoApplicant int `json:"coApplicant"`
}

// Lender is the selection artifact emitted by the lender-selection stage.
type Lender struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	InterestRate     float64 `json:"interestRate"`
	LoanAmountMin    int64   `json:"loanAmountMin"`
	LoanAmountMax    int64   `json:"loanAmountMax"`
	ProcessingFeePct float64 `json:"processingFeePercent"`
	TenureMaxMonths  int     `json:"tenureMaxMonths"`
}

// DocumentUpload describes one uploaded document.
type DocumentUpload struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Application is the terminal aggregate the tracking and summary stages
// consume. It accumulates the selected lender, loan amount and document list
// as the wizard progresses.
type Application struct {
	ID          string           `json:"id"`
	Profile     StudentProfile   `json:"profile"`
	Eligibility EligibilityScore `json:"eligibility"`
	Lender      Lender           `json:"lender"`
	LoanAmount  int64            `json:"loanAmount"`
	Documents   []DocumentUpload `json:"documents"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Application status values.
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusInReview  = "in_review"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
)

// LoanSummary is the read model for the summary stage.
type LoanSummary struct {
	ApplicationID   string  `json:"applicationId"`
	LenderName      string  `json:"lenderName"`
	Principal       int64   `json:"principal"`
	AnnualRatePct   float64 `json:"annualRatePercent"`
	TenureMonths    int     `json:"tenureMonths"`
	MonthlyEMI      int64   `json:"monthlyEmi"`
	TotalInterest   int64   `json:"totalInterest"`
	TotalPayable    int64   `json:"totalPayable"`
	ProcessingFee   int64   `json:"processingFee"`
	Currency        string  `json:"currency"`
	ConvertedAmount float64 `json:"convertedAmount,omitempty"`
	ConvertedTo     string  `json:"convertedTo,omitempty"`
}

// ContactProfile is the subset of a contact record used to pre-populate the
// browse filters the first time profile data becomes available.
type ContactProfile struct {
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	IntakeMonth      string `json:"intake_month"`
	IntakeYear       string `json:"intake_year"`
	DegreeLevel      string `json:"degree_level"`
	StudyDestination string `json:"study_destination"`
}
