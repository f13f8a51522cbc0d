package config

import (
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv
const (
	EnvMaxPages    = "RESUME_MAX_PAGES"
	EnvResume      = "RESUME_TXT"
	EnvTemplate    = "RESUME_TEMPLATE"
	EnvOutputDir   = "RESUME_OUTPUT_DIR"
	EnvVocabulary  = "RESUME_VOCABULARY"
	EnvAIProvider  = "AI_PROVIDER"
	EnvAITimeout   = "AI_TIMEOUT"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvOpenAIModel = "OPENAI_MODEL"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvGeminiModel = "GEMINI_MODEL"
	EnvApplyCutoff = "FIT_APPLY_THRESHOLD"
	EnvMaybeCutoff = "FIT_MAYBE_THRESHOLD"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvPort        = "PORT"
	EnvAPIToken    = "API_TOKEN"
)

// ApplyEnv overrides configuration values from the environment.
// When no provider is named, the first provider with a credential is selected.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvMaxPages)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Field: EnvMaxPages, Message: "must be an integer", Cause: err}
		}
		c.MaxPages = n
	}
	if v := getenv(EnvResume); v != "" {
		c.Output.Resume = v
	}
	if v := getenv(EnvTemplate); v != "" {
		c.Output.Template = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := getenv(EnvVocabulary); v != "" {
		c.VocabularyPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Field: EnvPort, Message: "must be an integer", Cause: err}
		}
		c.Server.Port = n
	}
	c.Server.APIToken = getenv(EnvAPIToken)
	if v := strings.TrimSpace(getenv(EnvAITimeout)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Field: EnvAITimeout, Message: "must be a number of seconds", Cause: err}
		}
		c.AI.TimeoutSeconds = n
	}
	for env, target := range map[string]*float64{
		EnvApplyCutoff: &c.Scoring.ApplyThreshold,
		EnvMaybeCutoff: &c.Scoring.MaybeThreshold,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return &ConfigurationError{Field: env, Message: "must be a number", Cause: err}
			}
			*target = f
		}
	}

	provider := strings.ToLower(strings.TrimSpace(getenv(EnvAIProvider)))
	if provider == "" && (c.AI.Provider == "" || c.AI.Provider == ProviderNone) {
		switch {
		case getenv(EnvOpenAIKey) != "":
			provider = ProviderOpenAI
		case getenv(EnvGeminiKey) != "":
			provider = ProviderGemini
		}
	}
	if provider != "" {
		c.AI.Provider = provider
	}

	switch c.AI.Provider {
	case ProviderOpenAI:
		c.AI.APIKey = getenv(EnvOpenAIKey)
		if v := getenv(EnvOpenAIModel); v != "" {
			c.AI.Model = v
		}
		if c.AI.Model == "" {
			c.AI.Model = DefaultOpenAIModel
		}
	case ProviderGemini:
		c.AI.APIKey = getenv(EnvGeminiKey)
		if v := getenv(EnvGeminiModel); v != "" {
			c.AI.Model = v
		}
		if c.AI.Model == "" {
			c.AI.Model = DefaultGeminiModel
		}
	}

	return nil
}
