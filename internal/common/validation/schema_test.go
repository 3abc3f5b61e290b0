// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string"},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSON(t *testing.T) {
	v, err := NewValidator(testSchema)
	require.NoError(t, err)

	res, err := v.ValidateJSON([]byte(`{"name": "ok", "count": 3}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.FirstError())

	res, err = v.ValidateJSON([]byte(`{"name": "bad", "count": -1, "extra": true}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.FirstError())
}

func TestValidatorRejectsBrokenSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 42}`)
	assert.Error(t, err)
}

func TestValidateMalformedDocument(t *testing.T) {
	v, err := NewValidator(testSchema)
	require.NoError(t, err)

	_, err = v.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}
