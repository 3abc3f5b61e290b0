// internal/browse/autofill.go
package browse

import (
	"context"
	"strings"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// monthAliases normalizes the free-form month spellings contact records carry
// into the catalog's lowercase month names.
var monthAliases = map[string]string{
	"jan": "january", "feb": "february", "mar": "march", "apr": "april",
	"may": "may", "jun": "june", "jul": "july", "aug": "august",
	"sep": "september", "sept": "september", "oct": "october",
	"nov": "november", "dec": "december",
}

// degreeLevels maps contact degree-level wording onto the study-level enum.
var degreeLevels = map[string]string{
	"bachelor":      "bachelors",
	"bachelors":     "bachelors",
	"undergraduate": "bachelors",
	"ug":            "bachelors",
	"master":        "masters",
	"masters":       "masters",
	"postgraduate":  "masters",
	"pg":            "masters",
	"mba":           "mba",
	"phd":           "phd",
	"doctorate":     "phd",
}

// destinations maps study-destination wording onto the supported-country enum.
var destinations = map[string]string{
	"us":             "us",
	"usa":            "us",
	"united states":  "us",
	"america":        "us",
	"uk":             "uk",
	"united kingdom": "uk",
	"england":        "uk",
	"canada":         "canada",
}

// NormalizeMonth resolves a month spelling to a canonical lowercase name,
// or "" when it cannot be resolved.
func NormalizeMonth(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return ""
	}
	for _, m := range models.Months {
		if v == m {
			return m
		}
	}
	if full, ok := monthAliases[v]; ok {
		return full
	}
	return ""
}

// NormalizeDegreeLevel resolves degree wording to a study level, or "".
func NormalizeDegreeLevel(raw string) string {
	return degreeLevels[strings.ToLower(strings.TrimSpace(raw))]
}

// NormalizeDestination resolves a destination to a supported country, or "".
func NormalizeDestination(raw string) string {
	return destinations[strings.ToLower(strings.TrimSpace(raw))]
}

// FiltersFromProfile builds the auto-populated filter set from a contact
// profile. Unresolvable fields are simply left unset.
func FiltersFromProfile(p models.ContactProfile) models.FilterValues {
	var f models.FilterValues
	if m := NormalizeMonth(p.IntakeMonth); m != "" {
		_ = f.Set(models.FieldIntakeMonth, m)
	}
	if p.IntakeYear != "" {
		_ = f.Set(models.FieldIntakeYear, p.IntakeYear)
	}
	if lvl := NormalizeDegreeLevel(p.DegreeLevel); lvl != "" {
		_ = f.Set(models.FieldStudyLevel, lvl)
	}
	if c := NormalizeDestination(p.StudyDestination); c != "" {
		_ = f.Set(models.FieldSupportedCountries, c)
	}
	return f
}

// ApplyProfileDefaults populates the applied filters from a contact profile
// the first time profile data becomes available. It runs at most once per
// session, and it backs off entirely when the user has already set filters:
// late-arriving profile data must not overwrite explicit choices.
func (s *Session) ApplyProfileDefaults(ctx context.Context, p models.ContactProfile) error {
	s.mu.Lock()
	if s.autofilled {
		s.mu.Unlock()
		return nil
	}
	s.autofilled = true

	if !s.applied.IsEmpty() {
		s.mu.Unlock()
		s.logger.Debug("skipping profile autofill, user filters present", nil)
		return nil
	}

	defaults := FiltersFromProfile(p)
	if defaults.IsEmpty() {
		s.mu.Unlock()
		return nil
	}

	defaults.SearchQuery = s.applied.SearchQuery
	s.applied = defaults
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}
