package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_BulletRewrites(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid",
			doc:  `{"sections": [{"name": "Experience", "bullets": [{"index": 1, "text": "Built Go APIs"}, {"index": 0, "text": "Led a team"}]}]}`,
		},
		{
			name: "empty sections",
			doc:  `{"sections": []}`,
		},
		{
			name:    "missing sections",
			doc:     `{"bullets": []}`,
			wantErr: true,
		},
		{
			name:    "negative index",
			doc:     `{"sections": [{"name": "Experience", "bullets": [{"index": -1, "text": "x"}]}]}`,
			wantErr: true,
		},
		{
			name:    "index is a string",
			doc:     `{"sections": [{"name": "Experience", "bullets": [{"index": "0", "text": "x"}]}]}`,
			wantErr: true,
		},
		{
			name:    "empty text",
			doc:     `{"sections": [{"name": "Experience", "bullets": [{"index": 0, "text": ""}]}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			doc:     `Sure! Here are your bullets`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(BulletRewrites, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "error should be ValidationError type")
			assert.Greater(t, len(verr.Errors), 0)
			assert.Contains(t, err.Error(), BulletRewrites)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "nope.schema.json")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{"name": 3}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Errors[0].Field)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
