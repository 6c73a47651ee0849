// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
)

var _ adapter.ScriptGenerator = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	model        string
	systemPrompt string
	maxOut       int
}

// NewGeminiAdapter creates a Gemini generator using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model, systemPrompt string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, systemPrompt: systemPrompt, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) ModelName() string { return g.model }

func (g *GeminiAdapter) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	sys := RenderSystemPrompt(g.systemPrompt, prompt)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: sys + "\n\nRespond with a single JSON object: {\"code\", \"class_name\", \"description\", \"explanation\"}."}},
		},
		ResponseMIMEType: "application/json",
	}
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = int32(g.maxOut)
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf("Create a Manim animation that teaches: %s", prompt)}},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}

	return parseScenePayload(text, model.MethodGemini, g.model)
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, prompt string) (int, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
	resp, err := g.client.Models.CountTokens(ctx, g.model, contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}
