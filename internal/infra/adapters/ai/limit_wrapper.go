package ai

import (
	"context"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ScriptGenerator = (*limitedGenerator)(nil)

type limitedGenerator struct {
	inner adapter.ScriptGenerator
	sem   chan struct{}
}

// NewLimitedGenerator caps concurrent provider calls with a semaphore.
func NewLimitedGenerator(inner adapter.ScriptGenerator, maxConcurrent int) adapter.ScriptGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGenerator{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGenerator) ModelName() string { return l.inner.ModelName() }

func (l *limitedGenerator) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.GenerateScene(ctx, prompt)
}

func (l *limitedGenerator) CountTokens(ctx context.Context, prompt string) (int, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.CountTokens(ctx, prompt)
}
