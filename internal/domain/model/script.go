package model

// Generation methods, kept as plain strings because they travel through
// JSON to the frontend unchanged.
const (
	MethodOpenAI            = "openai_generated"
	MethodGemini            = "gemini_generated"
	MethodSampleFallback    = "sample_fallback"
	MethodEmergencyFallback = "emergency_fallback"
)

// SceneScript is an animation script produced by a ScriptGenerator.
type SceneScript struct {
	Code        string
	SceneName   string
	Description string
	Explanation string
	Method      string
	Model       string
	SampleUsed  string
}
