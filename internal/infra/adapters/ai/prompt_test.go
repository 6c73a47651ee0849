//go:build !integration

package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSystemPrompt(t *testing.T) {
	if got := LoadSystemPrompt(""); got != fallbackSystemPrompt {
		t.Fatal("empty path must yield the built-in template")
	}
	if got := LoadSystemPrompt("/does/not/exist.md"); got != fallbackSystemPrompt {
		t.Fatal("missing file must yield the built-in template")
	}

	path := filepath.Join(t.TempDir(), "prompt.md")
	os.WriteFile(path, []byte("  Teach {TOPIC} well.  \n"), 0o644)
	if got := LoadSystemPrompt(path); got != "Teach {TOPIC} well." {
		t.Fatalf("got %q", got)
	}
}

func TestRenderSystemPrompt(t *testing.T) {
	tpl := "Explain {TOPIC}. Class {SceneName} in {file_name}.py produces {output_name}.mp4."
	got := RenderSystemPrompt(tpl, "the chain rule")
	if strings.Contains(got, "{") {
		t.Fatalf("unsubstituted placeholder left: %q", got)
	}
	if !strings.Contains(got, "the chain rule") {
		t.Fatalf("topic missing: %q", got)
	}
}
