// Package llm provides the optional text-generation capability used for AI tailoring.
// Providers are wrapped in a Guard that bounds every call with a timeout, retries and a circuit breaker.
package llm

import (
	"time"

	"github.com/jonathan/job-application-assistant/internal/config"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short outputs: taglines
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: bullet rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for longer prose: cover letters
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for one provider
type Config struct {
	Provider   Provider
	Models     map[ModelTier]string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: config.DefaultGeminiModel,
			TierAdvanced: config.DefaultGeminiModel,
		},
		Timeout:    config.DefaultAITimeoutSeconds * time.Second,
		MaxRetries: config.DefaultAIMaxRetries,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     config.DefaultOpenAIModel,
			TierStandard: config.DefaultOpenAIModel,
			TierAdvanced: config.DefaultOpenAIModel,
		},
		Timeout:    config.DefaultAITimeoutSeconds * time.Second,
		MaxRetries: config.DefaultAIMaxRetries,
	}
}

// ConfigFromAI builds a provider configuration from the engine's AI settings.
// An explicit model is used for every tier. It returns nil when no provider is selected.
func ConfigFromAI(ai config.AI) *Config {
	var cfg *Config
	switch ai.Provider {
	case config.ProviderGemini:
		cfg = DefaultGeminiConfig()
	case config.ProviderOpenAI:
		cfg = DefaultOpenAIConfig()
	default:
		return nil
	}
	if ai.Model != "" {
		for tier := range cfg.Models {
			cfg.Models[tier] = ai.Model
		}
	}
	if t := ai.Timeout(); t > 0 {
		cfg.Timeout = t
	}
	cfg.MaxRetries = ai.MaxRetries
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:   c.Provider,
		Models:     make(map[ModelTier]string),
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
