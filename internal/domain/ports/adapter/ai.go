package adapter

import (
	"context"

	"manim-studio/internal/domain/model"
)

// ScriptGenerator is the port for LLM-backed animation script generation.
type ScriptGenerator interface {
	// GenerateScene turns a natural-language prompt into a complete scene script.
	GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error)

	// CountTokens returns prompt tokens for the given text
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, prompt string) (int, error)

	// ModelName reports the model this generator targets.
	ModelName() string
}
