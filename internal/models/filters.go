// internal/models/filters.go
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field names the dimensions of the loan-product filter set. A FilterValues
// key that is absent means "no constraint on that dimension"; removing a
// filter deletes the key, it never stores an empty-string or zero sentinel.
type Field string

const (
	FieldIntakeMonth        Field = "intakeMonth"
	FieldIntakeYear         Field = "intakeYear"
	FieldStudyLevel         Field = "studyLevel"
	FieldStatus             Field = "status"
	FieldSchool             Field = "school"
	FieldProgram            Field = "program"
	FieldMinLoanAmount      Field = "minLoanAmount"
	FieldMaxLoanAmount      Field = "maxLoanAmount"
	FieldTotalTuitionFee    Field = "totalTuitionFee"
	FieldTotalCostOfLiving  Field = "totalCostOfLiving"
	FieldSupportedCountries Field = "supportedCountries"
)

var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var StudyLevels = []string{"bachelors", "masters", "mba", "phd"}

var SupportedCountries = []string{"us", "uk", "canada"}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

func isOneOf(value string, domain []string) bool {
	for _, d := range domain {
		if d == value {
			return true
		}
	}
	return false
}

// FilterValues is the editable filter set. Optional fields are pointers; nil
// means the key is absent. SearchQuery is real-time and never staged, so it is
// a plain string ("" means no search).
type FilterValues struct {
	IntakeMonth        *string `json:"intakeMonth,omitempty"`
	IntakeYear         *string `json:"intakeYear,omitempty"`
	StudyLevel         *string `json:"studyLevel,omitempty"`
	Status             *string `json:"status,omitempty"`
	School             *string `json:"school,omitempty"`
	Program            *string `json:"program,omitempty"`
	MinLoanAmount      *int    `json:"minLoanAmount,omitempty"`
	MaxLoanAmount      *int    `json:"maxLoanAmount,omitempty"`
	TotalTuitionFee    *int    `json:"totalTuitionFee,omitempty"`
	TotalCostOfLiving  *int    `json:"totalCostOfLiving,omitempty"`
	SupportedCountries *string `json:"supportedCountries,omitempty"`
	SearchQuery        string  `json:"searchQuery,omitempty"`
}

// Clone returns a deep copy.
func (f FilterValues) Clone() FilterValues {
	out := f
	out.IntakeMonth = cloneString(f.IntakeMonth)
	out.IntakeYear = cloneString(f.IntakeYear)
	out.StudyLevel = cloneString(f.StudyLevel)
	out.Status = cloneString(f.Status)
	out.School = cloneString(f.School)
	out.Program = cloneString(f.Program)
	out.MinLoanAmount = cloneInt(f.MinLoanAmount)
	out.MaxLoanAmount = cloneInt(f.MaxLoanAmount)
	out.TotalTuitionFee = cloneInt(f.TotalTuitionFee)
	out.TotalCostOfLiving = cloneInt(f.TotalCostOfLiving)
	out.SupportedCountries = cloneString(f.SupportedCountries)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CountSet returns the number of set filter keys. SearchQuery is not a filter
// key and is never counted.
func (f FilterValues) CountSet() int {
	n := 0
	for _, p := range []interface{}{
		f.IntakeMonth, f.IntakeYear, f.StudyLevel, f.Status, f.School,
		f.Program, f.MinLoanAmount, f.MaxLoanAmount, f.TotalTuitionFee,
		f.TotalCostOfLiving, f.SupportedCountries,
	} {
		switch v := p.(type) {
		case *string:
			if v != nil {
				n++
			}
		case *int:
			if v != nil {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether no filter key is set (search excluded).
func (f FilterValues) IsEmpty() bool {
	return f.CountSet() == 0
}

// Set parses raw into the named field. An empty raw deletes the key, matching
// the invariant that undefined/empty values remove the constraint.
func (f *FilterValues) Set(field Field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.Remove(field)
		return nil
	}

	switch field {
	case FieldIntakeMonth:
		v := strings.ToLower(raw)
		if !isOneOf(v, Months) {
			return fmt.Errorf("unknown month %q", raw)
		}
		f.IntakeMonth = &v
	case FieldIntakeYear:
		if !yearPattern.MatchString(raw) {
			return fmt.Errorf("intake year must be a 4-digit year, got %q", raw)
		}
		v := raw
		f.IntakeYear = &v
	case FieldStudyLevel:
		v := strings.ToLower(raw)
		if !isOneOf(v, StudyLevels) {
			return fmt.Errorf("unknown study level %q", raw)
		}
		f.StudyLevel = &v
	case FieldStatus:
		v := raw
		f.Status = &v
	case FieldSchool:
		v := raw
		f.School = &v
	case FieldProgram:
		v := raw
		f.Program = &v
	case FieldMinLoanAmount, FieldMaxLoanAmount, FieldTotalTuitionFee, FieldTotalCostOfLiving:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", field, raw)
		}
		switch field {
		case FieldMinLoanAmount:
			f.MinLoanAmount = &n
		case FieldMaxLoanAmount:
			f.MaxLoanAmount = &n
		case FieldTotalTuitionFee:
			f.TotalTuitionFee = &n
		case FieldTotalCostOfLiving:
			f.TotalCostOfLiving = &n
		}
	case FieldSupportedCountries:
		v := strings.ToLower(raw)
		if !isOneOf(v, SupportedCountries) {
			return fmt.Errorf("unknown country %q", raw)
		}
		f.SupportedCountries = &v
	default:
		return fmt.Errorf("unknown filter field %q", field)
	}
	return nil
}

// Remove deletes the named key. Unknown fields are a no-op.
func (f *FilterValues) Remove(field Field) {
	switch field {
	case FieldIntakeMonth:
		f.IntakeMonth = nil
	case FieldIntakeYear:
		f.IntakeYear = nil
	case FieldStudyLevel:
		f.StudyLevel = nil
	case FieldStatus:
		f.Status = nil
	case FieldSchool:
		f.School = nil
	case FieldProgram:
		f.Program = nil
	case FieldMinLoanAmount:
		f.MinLoanAmount = nil
	case FieldMaxLoanAmount:
		f.MaxLoanAmount = nil
	case FieldTotalTuitionFee:
		f.TotalTuitionFee = nil
	case FieldTotalCostOfLiving:
		f.TotalCostOfLiving = nil
	case FieldSupportedCountries:
		f.SupportedCountries = nil
	}
}

// APIFilters is the backend's snake_case filter shape, used on the wire
// (filters[intake_month]=... pairs) and in stored presets.
type APIFilters struct {
	IntakeMonth        *string `json:"intake_month,omitempty"`
	IntakeYear         *int    `json:"intake_year,omitempty"`
	StudyLevel         *string `json:"study_level,omitempty"`
	Status             *string `json:"status,omitempty"`
	School             *string `json:"school,omitempty"`
	Program            *string `json:"program,omitempty"`
	LoanAmountMin      *int    `json:"loan_amount_min,omitempty"`
	LoanAmountMax      *int    `json:"loan_amount_max,omitempty"`
	TotalTuitionFee    *int    `json:"total_tuition_fee,omitempty"`
	TotalCostOfLiving  *int    `json:"total_cost_of_living,omitempty"`
	SupportedCountries *string `json:"supported_countries,omitempty"`
}

// ToAPI translates the UI-facing shape into the backend shape. The mapping is
// total and lossless for every field with a backend counterpart; SearchQuery
// travels as a separate query parameter and is not part of the filter object.
func (f FilterValues) ToAPI() APIFilters {
	out := APIFilters{
		IntakeMonth:        cloneString(f.IntakeMonth),
		StudyLevel:         cloneString(f.StudyLevel),
		Status:             cloneString(f.Status),
		School:             cloneString(f.School),
		Program:            cloneString(f.Program),
		LoanAmountMin:      cloneInt(f.MinLoanAmount),
		LoanAmountMax:      cloneInt(f.MaxLoanAmount),
		TotalTuitionFee:    cloneInt(f.TotalTuitionFee),
		TotalCostOfLiving:  cloneInt(f.TotalCostOfLiving),
		SupportedCountries: cloneString(f.SupportedCountries),
	}
	if f.IntakeYear != nil {
		if year, err := strconv.Atoi(*f.IntakeYear); err == nil {
			out.IntakeYear = &year
		}
	}
	return out
}

// FromAPI translates the backend shape back into the UI-facing shape.
func FromAPI(a APIFilters) FilterValues {
	out := FilterValues{
		IntakeMonth:        cloneString(a.IntakeMonth),
		StudyLevel:         cloneString(a.StudyLevel),
		Status:             cloneString(a.Status),
		School:             cloneString(a.School),
		Program:            cloneString(a.Program),
		MinLoanAmount:      cloneInt(a.LoanAmountMin),
		MaxLoanAmount:      cloneInt(a.LoanAmountMax),
		TotalTuitionFee:    cloneInt(a.TotalTuitionFee),
		TotalCostOfLiving:  cloneInt(a.TotalCostOfLiving),
		SupportedCountries: cloneString(a.SupportedCountries),
	}
	if a.IntakeYear != nil {
		year := strconv.Itoa(*a.IntakeYear)
		out.IntakeYear = &year
	}
	return out
}

// Pairs returns the backend filter keys and stringified values, ordered by
// key name so query construction is deterministic. Only set keys appear.
func (a APIFilters) Pairs() [][2]string {
	var pairs [][2]string
	add := func(key string, s *string) {
		if s != nil && *s != "" {
			pairs = append(pairs, [2]string{key, *s})
		}
	}
	addInt := func(key string, n *int) {
		if n != nil {
			pairs = append(pairs, [2]string{key, strconv.Itoa(*n)})
		}
	}

	add("intake_month", a.IntakeMonth)
	addInt("intake_year", a.IntakeYear)
	addInt("loan_amount_max", a.LoanAmountMax)
	addInt("loan_amount_min", a.LoanAmountMin)
	add("program", a.Program)
	add("school", a.School)
	add("status", a.Status)
	add("study_level", a.StudyLevel)
	add("supported_countries", a.SupportedCountries)
	addInt("total_cost_of_living", a.TotalCostOfLiving)
	addInt("total_tuition_fee", a.TotalTuitionFee)

	return pairs
}

// IsEmpty reports whether no backend filter key is set.
func (a APIFilters) IsEmpty() bool {
	return len(a.Pairs()) == 0
}

// FilterPreset is a named, persisted snapshot of applied filters. Identity is
// the ID; presets are immutable once created except for deletion.
type FilterPreset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Filters   APIFilters `json:"filters"`
	CreatedAt time.Time  `json:"createdAt"`
}
