// internal/models/filters_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValidation(t *testing.T) {
	var f FilterValues

	require.NoError(t, f.Set(FieldIntakeMonth, "September"))
	assert.Equal(t, "september", *f.IntakeMonth)

	assert.Error(t, f.Set(FieldIntakeMonth, "septembre"))
	assert.Error(t, f.Set(FieldIntakeYear, "26"))
	assert.Error(t, f.Set(FieldIntakeYear, "20261"))
	require.NoError(t, f.Set(FieldIntakeYear, "2026"))

	assert.Error(t, f.Set(FieldStudyLevel, "diploma"))
	require.NoError(t, f.Set(FieldStudyLevel, "masters"))

	assert.Error(t, f.Set(FieldMinLoanAmount, "-5"))
	assert.Error(t, f.Set(FieldMinLoanAmount, "lots"))
	require.NoError(t, f.Set(FieldMinLoanAmount, "500000"))

	assert.Error(t, f.Set(FieldSupportedCountries, "australia"))
	require.NoError(t, f.Set(FieldSupportedCountries, "uk"))

	assert.Equal(t, 5, f.CountSet())
}

func TestSetEmptyValueDeletesKey(t *testing.T) {
	var f FilterValues
	require.NoError(t, f.Set(FieldSchool, "MIT"))
	require.NotNil(t, f.School)

	require.NoError(t, f.Set(FieldSchool, "  "))
	assert.Nil(t, f.School)
	assert.True(t, f.IsEmpty())
}

func TestSearchQueryIsNotAFilterKey(t *testing.T) {
	f := FilterValues{SearchQuery: "stem"}
	assert.True(t, f.IsEmpty())
	assert.Equal(t, 0, f.CountSet())
	assert.True(t, f.ToAPI().IsEmpty())
}

func TestTranslationRoundTrip(t *testing.T) {
	var f FilterValues
	require.NoError(t, f.Set(FieldIntakeMonth, "january"))
	require.NoError(t, f.Set(FieldIntakeYear, "2027"))
	require.NoError(t, f.Set(FieldStudyLevel, "mba"))
	require.NoError(t, f.Set(FieldSchool, "LBS"))
	require.NoError(t, f.Set(FieldMinLoanAmount, "100000"))
	require.NoError(t, f.Set(FieldMaxLoanAmount, "4000000"))
	require.NoError(t, f.Set(FieldSupportedCountries, "uk"))
	f.SearchQuery = "fixed rate"

	api := f.ToAPI()
	require.NotNil(t, api.IntakeYear)
	assert.Equal(t, 2027, *api.IntakeYear)
	assert.Equal(t, "january", *api.IntakeMonth)

	back := FromAPI(api)
	back.SearchQuery = f.SearchQuery
	assert.Equal(t, f, back)
}

func TestPairsOrderingAndOmission(t *testing.T) {
	var f FilterValues
	require.NoError(t, f.Set(FieldSupportedCountries, "us"))
	require.NoError(t, f.Set(FieldIntakeYear, "2026"))
	require.NoError(t, f.Set(FieldIntakeMonth, "september"))
	require.NoError(t, f.Set(FieldMaxLoanAmount, "0"))

	pairs := f.ToAPI().Pairs()
	assert.Equal(t, [][2]string{
		{"intake_month", "september"},
		{"intake_year", "2026"},
		{"loan_amount_max", "0"},
		{"supported_countries", "us"},
	}, pairs)
}

func TestCloneIsIndependent(t *testing.T) {
	var f FilterValues
	require.NoError(t, f.Set(FieldProgram, "CS"))

	c := f.Clone()
	require.NoError(t, c.Set(FieldProgram, "EE"))

	assert.Equal(t, "CS", *f.Program)
	assert.Equal(t, "EE", *c.Program)
}
