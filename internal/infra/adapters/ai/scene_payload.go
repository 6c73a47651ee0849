package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"manim-studio/internal/domain/model"
)

// scenePayload is the structured output contract shared by the providers.
type scenePayload struct {
	Code        string `json:"code"`
	ClassName   string `json:"class_name"`
	Description string `json:"description"`
	Explanation string `json:"explanation,omitempty"`
}

// sceneSchema is the JSON schema sent to providers that support structured
// output enforcement.
var sceneSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"code": map[string]interface{}{
			"type":        "string",
			"description": "Complete, executable Python code for the Manim scene. Only valid Python: imports, class definition, methods. No markdown fences.",
		},
		"class_name": map[string]interface{}{
			"type":        "string",
			"description": "Name of the Scene class defined in the code.",
		},
		"description": map[string]interface{}{
			"type":        "string",
			"description": "Brief description of what this animation teaches.",
		},
		"explanation": map[string]interface{}{
			"type":        "string",
			"description": "Optional detailed explanation of the mathematical concept.",
		},
	},
	"required":             []string{"code", "class_name", "description", "explanation"},
	"additionalProperties": false,
}

var sceneClassRe = regexp.MustCompile(`class\s+(\w+)\s*\(\s*Scene\s*\)`)

// parseScenePayload decodes a structured-output response body into a script.
// A payload that cannot be decoded is a contract violation, not a transient
// provider failure, so the error is marked non-fallback.
func parseScenePayload(raw, method, modelName string) (*model.SceneScript, error) {
	var p scenePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, &malformedSceneError{cause: fmt.Errorf("decode scene payload: %w", err)}
	}
	p.Code = stripMarkdownFences(p.Code)
	if strings.TrimSpace(p.Code) == "" {
		return nil, &malformedSceneError{cause: fmt.Errorf("scene payload has empty code")}
	}
	if p.ClassName == "" {
		p.ClassName = ExtractSceneClass(p.Code)
	}
	return &model.SceneScript{
		Code:        p.Code,
		SceneName:   p.ClassName,
		Description: p.Description,
		Explanation: p.Explanation,
		Method:      method,
		Model:       modelName,
	}, nil
}

// ExtractSceneClass finds the Scene subclass name in generated code.
func ExtractSceneClass(code string) string {
	if m := sceneClassRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return "GeneratedScene"
}

// stripMarkdownFences removes ```python fences some models wrap code in.
func stripMarkdownFences(code string) string {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	code = strings.TrimPrefix(code, "```python")
	code = strings.TrimPrefix(code, "```")
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}

// malformedSceneError marks provider responses that violated the output
// contract. These must not trigger the sample fallback.
type malformedSceneError struct{ cause error }

func (e *malformedSceneError) Error() string { return e.cause.Error() }
func (e *malformedSceneError) Unwrap() error { return e.cause }
