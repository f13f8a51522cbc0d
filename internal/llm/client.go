package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/job-application-assistant/internal/config"
)

// DefaultTemperature is used when Constraints.Temperature is zero.
const DefaultTemperature = 0.1

// Constraints shape a single generation request.
type Constraints struct {
	// Tier selects the model.
	Tier ModelTier
	// JSON asks the provider for a JSON response and strips code fences from it.
	JSON bool
	// MaxTokens caps the response length. Zero leaves the provider default.
	MaxTokens int
	// Temperature controls sampling. Zero uses DefaultTemperature.
	Temperature float64
}

func (c Constraints) temperature() float64 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

// Generator is the external text-generation capability: prompt in, text out.
type Generator interface {
	Generate(ctx context.Context, prompt string, c Constraints) (string, error)
}

// NewGenerator builds the guarded generator for the configured provider.
// It returns a nil Generator and no error when AI is disabled or has no credential,
// which callers treat as "use the heuristic path".
func NewGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if cfg == nil || !cfg.AIEnabled() {
		return nil, nil
	}
	llmCfg := ConfigFromAI(cfg.AI)
	if llmCfg == nil {
		return nil, nil
	}

	var (
		gen Generator
		err error
	)
	switch llmCfg.Provider {
	case ProviderGemini:
		gen, err = NewGeminiClient(ctx, llmCfg, cfg.AI.APIKey)
	case ProviderOpenAI:
		gen, err = NewOpenAIClient(llmCfg, cfg.AI.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", llmCfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewGuard(gen, DefaultGuardConfig(llmCfg), logger), nil
}

// GeminiClient implements Generator for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return string(ProviderGemini)
}

// Generate generates text content using the model for the requested tier
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cons Constraints) (string, error) {
	modelName := c.config.GetModel(cons.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", cons.Tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(float32(cons.temperature()))
	if cons.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cons.MaxTokens))
	}
	if cons.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	if cons.JSON {
		return CleanJSONBlock(text), nil
	}
	return strings.TrimSpace(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
