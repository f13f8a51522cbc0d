package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const systemPrompt = "You are a careful resume editor. Use only facts present in the material you are given."

// OpenAIClient implements Generator for OpenAI chat completions
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)...)

	return &OpenAIClient{
		client: &client,
		config: config,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return string(ProviderOpenAI)
}

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, cons Constraints) (string, error) {
	modelName := c.config.GetModel(cons.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", cons.Tier)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(modelName),
		Temperature: openai.Float(cons.temperature()),
	}
	if cons.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(cons.MaxTokens))
	}
	if cons.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no response from openai")
	}

	content := completion.Choices[0].Message.Content
	if cons.JSON {
		return CleanJSONBlock(content), nil
	}
	return strings.TrimSpace(content), nil
}
