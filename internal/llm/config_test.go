package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-application-assistant/internal/config"
)

func TestDefaultGeminiConfig(t *testing.T) {
	cfg := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, config.DefaultGeminiModel, cfg.GetModel(TierStandard))
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestConfigFromAI(t *testing.T) {
	t.Run("explicit model applies to every tier", func(t *testing.T) {
		cfg := ConfigFromAI(config.AI{Provider: config.ProviderOpenAI, Model: "gpt-test", TimeoutSeconds: 5, MaxRetries: 1})
		require.NotNil(t, cfg)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
			assert.Equal(t, "gpt-test", cfg.GetModel(tier))
		}
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 1, cfg.MaxRetries)
	})

	t.Run("timeout follows the engine setting", func(t *testing.T) {
		ai := config.Default().AI
		ai.Provider = config.ProviderGemini
		ai.TimeoutSeconds = 12
		cfg := ConfigFromAI(ai)
		require.NotNil(t, cfg)
		assert.Equal(t, ai.Timeout(), cfg.Timeout)
		assert.Equal(t, 12*time.Second, cfg.Timeout)
	})

	t.Run("zero timeout keeps provider default", func(t *testing.T) {
		cfg := ConfigFromAI(config.AI{Provider: config.ProviderOpenAI})
		require.NotNil(t, cfg)
		assert.Equal(t, config.DefaultAITimeoutSeconds*time.Second, cfg.Timeout)
	})

	t.Run("no provider", func(t *testing.T) {
		assert.Nil(t, ConfigFromAI(config.AI{Provider: config.ProviderNone}))
	})
}

func TestGetModel_Fallback(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", cfg.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", cfg.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	cfg := DefaultGeminiConfig()
	newConfig := cfg.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, config.DefaultGeminiModel, cfg.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, cfg.Timeout, newConfig.Timeout)
}

func TestNewGenerator_DisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	gen, err := NewGenerator(context.Background(), &cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, gen)

	cfg.AI.Provider = config.ProviderOpenAI
	gen, err = NewGenerator(context.Background(), &cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, gen, "a provider without a key is unavailable")
}

func TestNewGenerator_OpenAIIsGuarded(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = config.ProviderOpenAI
	cfg.AI.APIKey = "sk-test"

	gen, err := NewGenerator(context.Background(), &cfg, nil)
	require.NoError(t, err)
	guard, ok := gen.(*Guard)
	require.True(t, ok)
	assert.Equal(t, "openai", guard.Name())
	assert.NoError(t, guard.Close())
}
