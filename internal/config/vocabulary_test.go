package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary_Loads(t *testing.T) {
	v := DefaultVocabulary()
	require.NotNil(t, v)
	assert.Equal(t, 18, v.TopFrequent)
	assert.Contains(t, v.RequiredCues, "must")
	assert.Contains(t, v.PreferredCues, "nice to have")
	assert.True(t, v.IsStopword("the"))
	assert.False(t, v.IsStopword("kubernetes"))

	var found bool
	for _, term := range v.Skills {
		if term.Name == "kubernetes" {
			found = true
			assert.Contains(t, term.Aliases, "k8s")
		}
	}
	assert.True(t, found)
}

func TestParseVocabulary_Defaults(t *testing.T) {
	v, err := ParseVocabulary([]byte(`
required_cues: [must]
preferred_cues: [plus]
skills:
  - {name: " Go ", aliases: [Golang]}
`))
	require.NoError(t, err)
	assert.Equal(t, 18, v.TopFrequent)
	require.Len(t, v.Skills, 1)
	assert.Equal(t, "go", v.Skills[0].Name)
	assert.Equal(t, []string{"golang"}, v.Skills[0].Aliases)
	assert.Equal(t, 1.0, v.Skills[0].Importance)
}

func TestParseVocabulary_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no cues", `skills: [{name: go}]`},
		{"duplicate skill", "required_cues: [must]\npreferred_cues: [plus]\nskills: [{name: go}, {name: GO}]"},
		{"nameless skill", "required_cues: [must]\npreferred_cues: [plus]\nskills: [{importance: 2}]"},
		{"bad yaml", "required_cues: [must"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVocabulary([]byte(tt.yaml))
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLoadVocabulary_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("required_cues: [must]\npreferred_cues: [plus]\nstopwords: [The]\n"), 0644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.True(t, v.IsStopword("the"))

	def, err := LoadVocabulary("")
	require.NoError(t, err)
	assert.Same(t, DefaultVocabulary(), def)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
