// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"strings"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
)

var _ adapter.ScriptGenerator = (*MultiAdapter)(nil)

// MultiAdapter routes generation to a provider picked from the configured
// model name. Each provider adapter is responsible for its own default model.
type MultiAdapter struct {
	defaultProvider string // "openai" or "gemini"
	model           string
	byProvider      map[string]adapter.ScriptGenerator
}

func NewMultiAdapter(defaultProvider, modelName string, byProvider map[string]adapter.ScriptGenerator) *MultiAdapter {
	return &MultiAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		model:           modelName,
		byProvider:      byProvider,
	}
}

func (m *MultiAdapter) resolveProvider() string {
	l := strings.ToLower(m.model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAdapter) pick() adapter.ScriptGenerator {
	if g := m.byProvider[m.resolveProvider()]; g != nil {
		return g
	}
	// last resort: first available
	for _, g := range m.byProvider {
		if g != nil {
			return g
		}
	}
	return nil
}

func (m *MultiAdapter) ModelName() string { return m.model }

func (m *MultiAdapter) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	g := m.pick()
	if g == nil {
		return nil, errNoGenerator
	}
	return g.GenerateScene(ctx, prompt)
}

func (m *MultiAdapter) CountTokens(ctx context.Context, prompt string) (int, error) {
	g := m.pick()
	if g == nil {
		return 0, nil
	}
	return g.CountTokens(ctx, prompt)
}
