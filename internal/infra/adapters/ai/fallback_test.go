//go:build !integration

package ai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"manim-studio/internal/domain/model"
)

type stubGenerator struct {
	script *model.SceneScript
	err    error
	calls  int
}

func (s *stubGenerator) GenerateScene(ctx context.Context, prompt string) (*model.SceneScript, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.script, nil
}

func (s *stubGenerator) CountTokens(ctx context.Context, prompt string) (int, error) { return 7, nil }
func (s *stubGenerator) ModelName() string                                           { return "stub" }

func writeSample(t *testing.T, dir, name string) {
	t.Helper()
	code := "from manim import *\n\nclass Something(Scene):\n    def construct(self):\n        pass\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFallbackPassesThroughSuccess(t *testing.T) {
	log := zerolog.Nop()
	want := &model.SceneScript{SceneName: "Real", Method: model.MethodOpenAI}
	f := NewFallbackGenerator(&stubGenerator{script: want}, t.TempDir(), &log)

	got, err := f.GenerateScene(context.Background(), "anything")
	if err != nil {
		t.Fatalf("GenerateScene: %v", err)
	}
	if got != want {
		t.Fatal("successful results must pass through unchanged")
	}
}

func TestFallbackOnTransientError(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "hyperbola_foci.py")
	log := zerolog.Nop()
	f := NewFallbackGenerator(&stubGenerator{err: errors.New("rate limit exceeded")}, dir, &log)

	got, err := f.GenerateScene(context.Background(), "show a hyperbola with its foci")
	if err != nil {
		t.Fatalf("GenerateScene: %v", err)
	}
	if got.Method != model.MethodSampleFallback {
		t.Fatalf("method = %q, want sample_fallback", got.Method)
	}
	if got.SceneName != "HyperbolaFoci" {
		t.Fatalf("scene = %q, keyword matching should pick the hyperbola sample", got.SceneName)
	}
	if got.SampleUsed != "hyperbola" {
		t.Fatalf("sample used = %q", got.SampleUsed)
	}
}

func TestFallbackKeywordSelection(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "vector_add_sub.py")
	writeSample(t, dir, "hyperbola_foci.py")
	writeSample(t, dir, "hyperbola_teacher.py")
	log := zerolog.Nop()
	f := NewFallbackGenerator(&stubGenerator{err: errors.New("timeout")}, dir, &log)

	cases := []struct {
		prompt string
		scene  string
	}{
		{"visualize vector addition with arrows", "VectorAddSub"},
		{"teach me about hyperbolas in a lesson", "HyperbolaTeacher"},
		{"conic sections and asymptotes of a hyperbola", "HyperbolaFoci"},
	}
	for _, tc := range cases {
		got, err := f.GenerateScene(context.Background(), tc.prompt)
		if err != nil {
			t.Fatalf("GenerateScene(%q): %v", tc.prompt, err)
		}
		if got.SceneName != tc.scene {
			t.Errorf("prompt %q picked %s, want %s", tc.prompt, got.SceneName, tc.scene)
		}
	}
}

func TestFallbackEmergencyWhenSamplesMissing(t *testing.T) {
	log := zerolog.Nop()
	// empty samples dir: every catalog file is missing
	f := NewFallbackGenerator(&stubGenerator{err: errors.New("connection refused")}, t.TempDir(), &log)

	got, err := f.GenerateScene(context.Background(), "show a hyperbola")
	if err != nil {
		t.Fatalf("GenerateScene: %v", err)
	}
	if got.Method != model.MethodEmergencyFallback {
		t.Fatalf("method = %q, want emergency_fallback", got.Method)
	}
	if !strings.Contains(got.Code, "from manim import") || !strings.Contains(got.Code, "def construct(") {
		t.Fatalf("emergency code not a valid scene:\n%s", got.Code)
	}
}

func TestAuthErrorsAreNotMasked(t *testing.T) {
	log := zerolog.Nop()
	dir := t.TempDir()
	writeSample(t, dir, "hyperbola_foci.py")

	for _, msg := range []string{
		"invalid api key",
		"401 unauthorized",
		"access forbidden",
	} {
		f := NewFallbackGenerator(&stubGenerator{err: errors.New(msg)}, dir, &log)
		if _, err := f.GenerateScene(context.Background(), "hyperbola"); err == nil {
			t.Errorf("error %q must not be masked by a sample", msg)
		}
	}
}

func TestShouldFallback(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", errors.New("429 rate limit exceeded"), true},
		{"timeout", errors.New("context deadline exceeded"), true},
		{"network", errors.New("dial tcp: connection refused"), true},
		{"unknown", errors.New("something odd"), true},
		{"api key", errors.New("incorrect api key provided"), false},
		{"unauthorized", errors.New("unauthorized"), false},
		{"cancelled", context.Canceled, false},
		{"malformed payload", &malformedSceneError{cause: errors.New("no code field")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldFallback(tc.err); got != tc.want {
				t.Fatalf("shouldFallback(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
