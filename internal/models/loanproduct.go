// internal/models/loanproduct.go
package models

// LoanProduct is the catalog record returned by the loan catalog service.
// It is consumed read-only; the platform never mutates or caches it beyond
// the current page.
type LoanProduct struct {
	ID                 string   `json:"id"`
	ProductName        string   `json:"product_name"`
	LenderName         string   `json:"lender_name"`
	InterestRateMin    float64  `json:"interest_rate_min"`
	InterestRateMax    float64  `json:"interest_rate_max"`
	LoanAmountMin      int64    `json:"loan_amount_min"`
	LoanAmountMax      int64    `json:"loan_amount_max"`
	TenureMinMonths    int      `json:"tenure_min_months"`
	TenureMaxMonths    int      `json:"tenure_max_months"`
	Currency           string   `json:"currency"`
	StudyLevels        []string `json:"study_levels"`
	SupportedCountries []string `json:"supported_countries"`
	CollateralRequired bool     `json:"collateral_required"`
	ProcessingFeePct   float64  `json:"processing_fee_percent"`
	MoratoriumMonths   int      `json:"moratorium_months"`
}

// PageRequest is the tuple a catalog fetch is derived from.
type PageRequest struct {
	Page    int
	Size    int
	SortKey string
	SortDir string
	Search  string
	Filters APIFilters
}

// PageResult is the catalog's paginated response. The server is authoritative
// for every counter, including the page/size echo-back.
type PageResult struct {
	Data       []LoanProduct `json:"data"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	TotalPages int           `json:"totalPages"`
}

// FilterOptions is the discovery payload describing available filter domains.
type FilterOptions struct {
	IntakeMonths       []string `json:"intake_months"`
	IntakeYears        []int    `json:"intake_years"`
	StudyLevels        []string `json:"study_levels"`
	Schools            []string `json:"schools"`
	SupportedCountries []string `json:"supported_countries"`
	LoanAmountMin      int64    `json:"loan_amount_min"`
	LoanAmountMax      int64    `json:"loan_amount_max"`
}

// InterestSubmission records a student's interest in a loan product.
type InterestSubmission struct {
	ProductID string `json:"product_id"`
	StudentID string `json:"student_id"`
	Amount    int64  `json:"amount,omitempty"`
	Note      string `json:"note,omitempty"`
}
