//go:build !integration

package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"manim-studio/internal/domain"
)

func TestQualityFlag(t *testing.T) {
	cases := []struct{ in, want string }{
		{"low", "-ql"},
		{"low_quality", "-ql"},
		{"high", "-qh"},
		{"high_quality", "-qh"},
		{"medium", "-qm"},
		{"", "-qm"},
		{"whatever", "-qm"},
		{"HIGH", "-qh"},
	}
	for _, tc := range cases {
		if got := QualityFlag(tc.in); got != tc.want {
			t.Errorf("QualityFlag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("high", "/tmp/scene.py", "WaveDemo", "WaveDemo_1.mp4", "/srv/out")
	want := []string{"-qh", "/tmp/scene.py", "WaveDemo", "-o", "WaveDemo_1.mp4", "--media_dir", "/srv/out"}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	log := zerolog.Nop()
	r := NewManimRenderer("manim", t.TempDir(), time.Minute, &log)

	valid := "from manim import *\n\nclass WaveDemo(Scene):\n    def construct(self):\n        pass\n"
	if err := r.Validate(valid); err != nil {
		t.Fatalf("valid script rejected: %v", err)
	}

	cases := []struct{ name, code string }{
		{"no import", "class X(Scene):\n    def construct(self): pass\n"},
		{"no scene class", "from manim import *\ndef construct(self): pass\n"},
		{"no construct", "from manim import *\nclass X(Scene):\n    pass\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Validate(tc.code)
			if !errors.Is(err, domain.ErrScriptInvalid) {
				t.Fatalf("err = %v, want ErrScriptInvalid", err)
			}
		})
	}
}

func TestRenderMissingBinary(t *testing.T) {
	log := zerolog.Nop()
	dir := t.TempDir()
	r := NewManimRenderer("definitely-not-a-real-binary-a1b2c3", dir, time.Minute, &log)

	script := filepath.Join(dir, "scene.py")
	if err := os.WriteFile(script, []byte("pass"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Render(context.Background(), script, "X", "medium")
	if !errors.Is(err, domain.ErrRendererMissing) {
		t.Fatalf("err = %v, want ErrRendererMissing", err)
	}
}

func TestCollectOutputMovesNestedFile(t *testing.T) {
	log := zerolog.Nop()
	out := t.TempDir()
	r := NewManimRenderer("manim", out, time.Minute, &log)

	// simulate manim writing into a nested quality dir
	nested := filepath.Join(out, "videos", "scene", "720p30")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "X_1.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := r.collectOutput("X_1.mp4")
	if err != nil {
		t.Fatalf("collectOutput: %v", err)
	}
	if got != "X_1.mp4" {
		t.Fatalf("got %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "X_1.mp4")); err != nil {
		t.Fatalf("file not moved to the output root: %v", err)
	}
}

func TestCollectOutputMissingFile(t *testing.T) {
	log := zerolog.Nop()
	r := NewManimRenderer("manim", t.TempDir(), time.Minute, &log)
	if _, err := r.collectOutput("ghost.mp4"); !errors.Is(err, domain.ErrRenderFailed) {
		t.Fatalf("err = %v, want ErrRenderFailed", err)
	}
}
