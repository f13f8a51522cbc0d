// Package config provides configuration loading and validation for the assistant.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Providers accepted in AI.Provider.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default values
const (
	DefaultMaxPages            = 2
	DefaultApplyThreshold      = 0.7
	DefaultMaybeThreshold      = 0.4
	DefaultRequiredWeight      = 1.0
	DefaultPreferredWeight     = 0.5
	DefaultCoverLetterKeywords = 3
	DefaultCharsPerLine        = 95
	DefaultLinesPerPage        = 48
	DefaultAITimeoutSeconds    = 30
	DefaultAIMaxRetries        = 2
	DefaultOutputDir           = "outputs"
	DefaultOpenAIModel         = "gpt-4o-mini"
	DefaultGeminiModel         = "gemini-2.5-flash"
	DefaultLogFormat           = "console"
	DefaultLogLevel            = "info"
	DefaultPort                = 5055
)

// Config is the engine configuration. It is loaded once, validated, and then treated as read-only.
type Config struct {
	MaxPages       int       `json:"max_pages" validate:"min=1,max=10"`
	Scoring        Scoring   `json:"scoring"`
	Tailoring      Tailoring `json:"tailoring"`
	AI             AI        `json:"ai"`
	Output         Output    `json:"output"`
	Log            Log       `json:"log"`
	Server         Server    `json:"server"`
	VocabularyPath string    `json:"vocabulary_path,omitempty"`
}

// Scoring holds the fit-score weights and recommendation cut points.
type Scoring struct {
	ApplyThreshold  float64 `json:"apply_threshold" validate:"gte=0,lte=1"`
	MaybeThreshold  float64 `json:"maybe_threshold" validate:"gte=0,lte=1"`
	RequiredWeight  float64 `json:"required_weight" validate:"gt=0"`
	PreferredWeight float64 `json:"preferred_weight" validate:"gte=0"`
}

// Tailoring holds cover letter and page-length estimation parameters.
type Tailoring struct {
	CoverLetterKeywords int `json:"cover_letter_keywords" validate:"min=1,max=10"`
	CharsPerLine        int `json:"chars_per_line" validate:"min=20,max=300"`
	LinesPerPage        int `json:"lines_per_page" validate:"min=10,max=200"`
}

// AI identifies the external text-generation capability. APIKey is never read from the config file.
type AI struct {
	Provider       string `json:"provider" validate:"oneof=none openai gemini"`
	Model          string `json:"model,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"min=1,max=600"`
	MaxRetries     int    `json:"max_retries" validate:"min=0,max=5"`
	APIKey         string `json:"-"`
}

// Output holds input and output locations.
type Output struct {
	Dir      string `json:"dir" validate:"required"`
	Template string `json:"template,omitempty"`
	Resume   string `json:"resume,omitempty"`
}

// Log selects the logger encoding and level.
type Log struct {
	Format string `json:"format" validate:"oneof=json console"`
	Level  string `json:"level" validate:"oneof=debug info warn error"`
}

// Server configures the HTTP form and API. An empty APIToken leaves the API open.
type Server struct {
	Port     int    `json:"port" validate:"min=1,max=65535"`
	APIToken string `json:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxPages: DefaultMaxPages,
		Scoring: Scoring{
			ApplyThreshold:  DefaultApplyThreshold,
			MaybeThreshold:  DefaultMaybeThreshold,
			RequiredWeight:  DefaultRequiredWeight,
			PreferredWeight: DefaultPreferredWeight,
		},
		Tailoring: Tailoring{
			CoverLetterKeywords: DefaultCoverLetterKeywords,
			CharsPerLine:        DefaultCharsPerLine,
			LinesPerPage:        DefaultLinesPerPage,
		},
		AI: AI{
			Provider:       ProviderNone,
			TimeoutSeconds: DefaultAITimeoutSeconds,
			MaxRetries:     DefaultAIMaxRetries,
		},
		Output: Output{
			Dir: DefaultOutputDir,
		},
		Log: Log{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
		Server: Server{
			Port: DefaultPort,
		},
	}
}

// LoadConfig loads configuration from a JSON file on top of Default.
// Fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the run configuration: defaults, then the optional file, then environment overrides.
// The result is validated; any problem is returned as a *ConfigurationError.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, &ConfigurationError{Field: "config", Message: "cannot load config file", Cause: err}
		}
		cfg = *fileCfg
	}

	if getenv != nil {
		if err := cfg.ApplyEnv(getenv); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigurationError{
				Field:   strings.ToLower(fe.Namespace()),
				Message: fmt.Sprintf("failed '%s' constraint (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return &ConfigurationError{Message: "invalid configuration", Cause: err}
	}

	// Cut points must be strictly ordered so every score maps to exactly one tier
	if c.Scoring.ApplyThreshold <= c.Scoring.MaybeThreshold {
		return &ConfigurationError{
			Field:   "scoring",
			Message: fmt.Sprintf("apply_threshold (%.2f) must be greater than maybe_threshold (%.2f)", c.Scoring.ApplyThreshold, c.Scoring.MaybeThreshold),
		}
	}
	if c.Scoring.RequiredWeight <= c.Scoring.PreferredWeight {
		return &ConfigurationError{
			Field:   "scoring",
			Message: fmt.Sprintf("required_weight (%.2f) must be greater than preferred_weight (%.2f)", c.Scoring.RequiredWeight, c.Scoring.PreferredWeight),
		}
	}

	if c.Output.Template != "" {
		if _, err := os.Stat(c.Output.Template); os.IsNotExist(err) {
			return &ConfigurationError{Field: "output.template", Message: fmt.Sprintf("template file not found: %s", c.Output.Template)}
		}
	}

	return nil
}

// Timeout returns the bound applied to every AI call.
func (a AI) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// AIEnabled reports whether an AI provider is selected and has a credential.
func (c *Config) AIEnabled() bool {
	return c.AI.Provider != ProviderNone && c.AI.APIKey != ""
}
