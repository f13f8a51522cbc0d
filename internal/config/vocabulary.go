package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary is the injectable keyword table: known skills, cue words and stop-words.
type Vocabulary struct {
	Skills        []Term   `yaml:"skills"`
	RequiredCues  []string `yaml:"required_cues"`
	PreferredCues []string `yaml:"preferred_cues"`
	RoleNouns     []string `yaml:"role_nouns"`
	Stopwords     []string `yaml:"stopwords"`
	TopFrequent   int      `yaml:"top_frequent"`

	stopSet map[string]bool
}

// Term is one known skill with its alternate spellings.
type Term struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases,omitempty"`
	Importance float64  `yaml:"importance"`
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
	defaultVocabErr  error
)

// DefaultVocabulary returns the embedded vocabulary. The returned value must not be modified.
func DefaultVocabulary() *Vocabulary {
	defaultVocabOnce.Do(func() {
		defaultVocab, defaultVocabErr = ParseVocabulary(defaultVocabularyYAML)
	})
	if defaultVocabErr != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", defaultVocabErr))
	}
	return defaultVocab
}

// LoadVocabulary reads a YAML vocabulary file. An empty path yields the embedded default.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Field: "vocabulary_path", Message: "cannot read vocabulary file", Cause: err}
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and validates a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &ConfigurationError{Field: "vocabulary", Message: "failed to parse vocabulary YAML", Cause: err}
	}
	if err := v.normalize(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vocabulary) normalize() error {
	if len(v.RequiredCues) == 0 || len(v.PreferredCues) == 0 {
		return &ConfigurationError{Field: "vocabulary", Message: "required_cues and preferred_cues must not be empty"}
	}
	if v.TopFrequent <= 0 {
		v.TopFrequent = 18
	}
	seen := make(map[string]bool, len(v.Skills))
	for i := range v.Skills {
		t := &v.Skills[i]
		t.Name = strings.ToLower(strings.TrimSpace(t.Name))
		if t.Name == "" {
			return &ConfigurationError{Field: "vocabulary", Message: fmt.Sprintf("skill %d has no name", i)}
		}
		if seen[t.Name] {
			return &ConfigurationError{Field: "vocabulary", Message: fmt.Sprintf("duplicate skill %q", t.Name)}
		}
		seen[t.Name] = true
		if t.Importance <= 0 {
			t.Importance = 1
		}
		for j, a := range t.Aliases {
			t.Aliases[j] = strings.ToLower(strings.TrimSpace(a))
		}
	}
	v.stopSet = make(map[string]bool, len(v.Stopwords))
	for _, w := range v.Stopwords {
		v.stopSet[strings.ToLower(w)] = true
	}
	return nil
}

// IsStopword reports whether w (lower-case) is a stop-word.
func (v *Vocabulary) IsStopword(w string) bool {
	return v.stopSet[w]
}

// StopwordSet returns the stop-words as a set.
func (v *Vocabulary) StopwordSet() map[string]bool {
	out := make(map[string]bool, len(v.stopSet))
	for k := range v.stopSet {
		out[k] = true
	}
	return out
}
