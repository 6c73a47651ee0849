package model

import "time"

type JobStatus string

const (
	JobStatusAnalyzing  JobStatus = "analyzing"
	JobStatusGenerating JobStatus = "generating"
	JobStatusRendering  JobStatus = "rendering"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// RenderJob tracks one animation-generation request from prompt to video.
// Jobs are created by the generate endpoint, mutated only by the pipeline,
// and expire from the store after a TTL once terminal.
type RenderJob struct {
	ID          string            `json:"id"`
	Prompt      string            `json:"prompt"`
	Quality     string            `json:"quality"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"` // 0..100
	CurrentStep string            `json:"current_step"`
	Result      *GenerationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewRenderJob(id, prompt, quality string) *RenderJob {
	now := time.Now()
	return &RenderJob{
		ID:          id,
		Prompt:      prompt,
		Quality:     quality,
		Status:      JobStatusAnalyzing,
		Progress:    10,
		CurrentStep: "Analyzing prompt",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Advance moves the job to an in-progress stage.
func (j *RenderJob) Advance(status JobStatus, progress int, step string) {
	j.Status = status
	j.Progress = progress
	j.CurrentStep = step
	j.UpdatedAt = time.Now()
}

// Complete marks the job terminal with its result attached.
func (j *RenderJob) Complete(res *GenerationResult) {
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.CurrentStep = "Done"
	j.Result = res
	j.UpdatedAt = time.Now()
}

// Fail marks the job terminal with an error message.
func (j *RenderJob) Fail(msg string) {
	j.Status = JobStatusFailed
	j.CurrentStep = "Failed"
	j.Error = msg
	j.UpdatedAt = time.Now()
}

// GenerationResult is what a completed job carries back to the caller.
// Method distinguishes real AI output from sample substitutions so the
// UI can flag non-AI content.
type GenerationResult struct {
	VideoURL    string `json:"video_url"`
	Code        string `json:"code"`
	SceneName   string `json:"scene_name"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"` // openai_generated | sample_fallback | emergency_fallback
	Model       string `json:"model,omitempty"`
	SampleUsed  string `json:"sample_used,omitempty"`
}
