package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig points the generator at any OpenAI-compatible
// /chat/completions endpoint.
type OpenAIConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator asks a chat-completions model for JSON that matches the
// Output schema.
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client openai.Client
}

var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)
	return &OpenAIGenerator{cfg: cfg, client: client}
}

// outputSchema requires a single projectSuggestions array of strings.
var outputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"projectSuggestions": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "A list of project suggestions based on user interests.",
		},
	},
	"required":             []string{"projectSuggestions"},
	"additionalProperties": false,
}

// Generate sends the prompt and decodes the model's JSON answer.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*Output, error) {
	if g.cfg.APIKey == "" {
		return nil, errors.New("suggest: no API key configured")
	}

	chat, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    g.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "suggest_project_prompts",
					Strict: openai.Bool(true),
					Schema: outputSchema,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: calling model: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, errors.New("suggest: no completions returned")
	}

	var out Output
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("suggest: model output is not valid JSON: %w", err)
	}
	return &out, nil
}
