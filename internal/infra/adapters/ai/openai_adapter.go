package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ScriptGenerator = (*OpenAIAdapter)(nil)

// OpenAIAdapter generates scene scripts through the Chat Completions API
// with a JSON-schema response format, so the code/class_name/description
// contract is enforced server-side.
type OpenAIAdapter struct {
	client       openai.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float64
}

func NewOpenAIAdapter(apiKey, model, systemPrompt string, maxTokens int, temperature float64, timeout time.Duration) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-2024-08-06"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIAdapter{
		client:       openai.NewClient(option.WithAPIKey(apiKey), option.WithRequestTimeout(timeout)),
		model:        model,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
		temperature:  temperature,
	}, nil
}

func (o *OpenAIAdapter) ModelName() string { return o.model }

func (o *OpenAIAdapter) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	sys := RenderSystemPrompt(o.systemPrompt, prompt)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sys),
			openai.UserMessage(fmt.Sprintf("Create a Manim animation that teaches: %s", prompt)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "manim_scene",
					Strict: openai.Bool(true),
					Schema: sceneSchema,
				},
			},
		},
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, &malformedSceneError{cause: fmt.Errorf("openai refused the request: %s", choice.Message.Refusal)}
	}

	script, err := parseScenePayload(choice.Message.Content, model.MethodOpenAI, o.model)
	if err != nil {
		return nil, err
	}
	return script, nil
}

// CountTokens uses tiktoken locally; the model encoding falls back to
// cl100k_base for models tiktoken doesn't know yet.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, prompt string) (int, error) {
	enc, err := tiktoken.EncodingForModel(o.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(prompt, nil, nil)), nil
}
