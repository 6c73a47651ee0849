package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/rs/zerolog"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
	"manim-studio/internal/infra/metrics"
)

var errNoGenerator = errors.New("no script generator available")

var _ adapter.ScriptGenerator = (*FallbackGenerator)(nil)

// sampleSpec describes one pre-made sample script kept on disk.
type sampleSpec struct {
	file        string
	className   string
	description string
	keywords    []string
}

var sampleCatalog = map[string]sampleSpec{
	"vector": {
		file:        "vector_add_sub.py",
		className:   "VectorAddSub",
		description: "Vector addition and subtraction visualization",
		keywords:    []string{"vector", "add", "subtract", "addition", "subtraction", "arrow"},
	},
	"hyperbola": {
		file:        "hyperbola_foci.py",
		className:   "HyperbolaFoci",
		description: "Hyperbola and foci visualization",
		keywords:    []string{"hyperbola", "foci", "focus", "conic", "asymptote"},
	},
	"teacher": {
		file:        "hyperbola_teacher.py",
		className:   "HyperbolaTeacher",
		description: "Educational hyperbola animation",
		keywords:    []string{"teach", "explain", "hyperbola", "lesson", "education"},
	},
}

// SamplePrompts returns canned prompts per sample category, used by the
// example gallery.
func SamplePrompts() map[string][]string {
	return map[string][]string{
		"vector": {
			"Show how vectors add and subtract",
			"Visualize vector addition with arrows",
			"Animate vector operations in 2D",
			"Demonstrate vector arithmetic",
		},
		"hyperbola": {
			"Show a hyperbola with its foci",
			"Animate hyperbola properties",
			"Visualize conic sections - hyperbola",
			"Explain hyperbola asymptotes",
		},
		"teacher": {
			"Teach hyperbolas step by step",
			"Educational animation about conics",
			"Explain mathematical concepts visually",
			"Create a math lesson animation",
		},
	}
}

// FallbackGenerator wraps a real generator and substitutes pre-made sample
// content when the provider fails transiently. Auth and output-contract
// failures are passed through untouched: retrying those with a sample would
// hide a configuration bug.
type FallbackGenerator struct {
	inner      adapter.ScriptGenerator
	samplesDir string
	log        *zerolog.Logger
}

func NewFallbackGenerator(inner adapter.ScriptGenerator, samplesDir string, log *zerolog.Logger) *FallbackGenerator {
	return &FallbackGenerator{inner: inner, samplesDir: samplesDir, log: log}
}

func (f *FallbackGenerator) ModelName() string { return f.inner.ModelName() }

func (f *FallbackGenerator) CountTokens(ctx context.Context, prompt string) (int, error) {
	return f.inner.CountTokens(ctx, prompt)
}

func (f *FallbackGenerator) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	script, err := f.inner.GenerateScene(ctx, prompt)
	if err == nil {
		return script, nil
	}
	if !shouldFallback(err) {
		return nil, err
	}

	f.log.Warn().Err(err).Str("prompt", truncate(prompt, 50)).Msg("provider failed, using sample fallback")
	return f.sampleScene(prompt)
}

// sampleScene picks the catalog entry with the most keyword matches, or a
// random one when nothing matches.
func (f *FallbackGenerator) sampleScene(prompt string) (*model.SceneScript, error) {
	lower := strings.ToLower(prompt)
	selected := ""
	maxMatches := 0
	for key, spec := range sampleCatalog {
		matches := 0
		for _, kw := range spec.keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			selected = key
		}
	}
	if selected == "" {
		keys := make([]string, 0, len(sampleCatalog))
		for k := range sampleCatalog {
			keys = append(keys, k)
		}
		selected = keys[rand.Intn(len(keys))]
	}
	spec := sampleCatalog[selected]

	code, err := os.ReadFile(filepath.Join(f.samplesDir, spec.file))
	if err != nil {
		f.log.Error().Err(err).Str("sample", spec.file).Msg("sample script missing, using emergency scene")
		metrics.IncFallback(model.MethodEmergencyFallback)
		return &model.SceneScript{
			Code:        emergencyScene(prompt, spec.className),
			SceneName:   spec.className,
			Description: fmt.Sprintf("EMERGENCY FALLBACK for: %s", prompt),
			Method:      model.MethodEmergencyFallback,
		}, nil
	}

	metrics.IncFallback(model.MethodSampleFallback)
	return &model.SceneScript{
		Code:        string(code),
		SceneName:   spec.className,
		Description: fmt.Sprintf("SAMPLE CONTENT: %s (AI provider temporarily unavailable)", spec.description),
		Method:      model.MethodSampleFallback,
		SampleUsed:  selected,
	}, nil
}

// shouldFallback decides whether a provider error is worth masking with
// sample content. Authentication and contract errors are not; everything
// else (quota, rate limits, timeouts, network, unknown) is.
func shouldFallback(err error) bool {
	var malformed *malformedSceneError
	if errors.As(err, &malformed) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403, 422:
			return false
		}
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"api key", "api_key", "unauthorized", "forbidden", "invalid"} {
		if strings.Contains(msg, kw) {
			return false
		}
	}
	return true
}

// emergencyScene synthesizes a minimal scene when even the sample files are
// gone. The video will be trivial but the pipeline stays alive.
func emergencyScene(prompt, className string) string {
	short := truncate(prompt, 50)
	return fmt.Sprintf(`from manim import *

class %s(Scene):
    def construct(self):
        title = Text("Mathematical Animation", font_size=48)
        subtitle = Text("Generated from: %s", font_size=24)
        subtitle.next_to(title, DOWN, buff=0.5)

        self.play(Write(title))
        self.wait(1)
        self.play(FadeIn(subtitle))
        self.wait(2)

        circle = Circle(radius=2, color=BLUE)
        self.play(Create(circle))
        self.play(circle.animate.set_color(RED))
        self.wait(1)

        self.play(FadeOut(title), FadeOut(subtitle), FadeOut(circle))
`, className, short)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
