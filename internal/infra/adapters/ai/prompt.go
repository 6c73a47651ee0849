package ai

import (
	"os"
	"strings"
)

// Default system prompt used when no template file is configured or the
// configured file cannot be read.
const fallbackSystemPrompt = `You are a veteran math teacher and motion designer. Create one Manim Scene that teaches {TOPIC} clearly, with clean pacing and zero clutter.

Create a single Python file containing one Scene class that:
1. Uses a two-pane layout (left for visuals, right for text board)
2. Teaches the concept step-by-step with clear beats
3. Uses proper Manim syntax and imports
4. Has clean, readable code
5. Implements proper animations with FadeIn, FadeOut, Create, etc.

Output only the complete Python code for the Manim scene.`

// LoadSystemPrompt reads the prompt template from path, falling back to the
// built-in template when the file is absent.
func LoadSystemPrompt(path string) string {
	if path == "" {
		return fallbackSystemPrompt
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fallbackSystemPrompt
	}
	return strings.TrimSpace(string(b))
}

// RenderSystemPrompt substitutes the user's topic into the template.
func RenderSystemPrompt(template, topic string) string {
	out := strings.ReplaceAll(template, "{TOPIC}", topic)
	out = strings.ReplaceAll(out, "{SceneName}", "GeneratedScene")
	out = strings.ReplaceAll(out, "{file_name}", "generated_scene")
	out = strings.ReplaceAll(out, "{output_name}", "generated_animation")
	return out
}
