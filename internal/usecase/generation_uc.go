// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/adapter"
	"manim-studio/internal/domain/ports/repository"
	"manim-studio/internal/infra/logging"
	"manim-studio/internal/infra/metrics"
	"manim-studio/internal/infra/storage"
	"manim-studio/internal/infra/worker"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

type GenerationUseCase interface {
	// Start creates a job and schedules the pipeline; it returns immediately.
	Start(ctx context.Context, prompt, quality string) (*model.RenderJob, error)
	// RenderSync runs the whole pipeline inline and returns the result.
	RenderSync(ctx context.Context, prompt, quality string) (*model.GenerationResult, error)
	Status(ctx context.Context, id string) (*model.RenderJob, error)
	Delete(ctx context.Context, id string) error
}

type generationUC struct {
	jobs           repository.JobRepository
	gen            adapter.ScriptGenerator
	renderer       adapter.Renderer
	store          *storage.FileStore
	pool           worker.Submitter
	maxPromptChars int
	log            *zerolog.Logger
}

func NewGenerationUseCase(
	jobs repository.JobRepository,
	gen adapter.ScriptGenerator,
	renderer adapter.Renderer,
	store *storage.FileStore,
	pool worker.Submitter,
	maxPromptChars int,
	log *zerolog.Logger,
) *generationUC {
	if maxPromptChars <= 0 {
		maxPromptChars = 500
	}
	return &generationUC{
		jobs:           jobs,
		gen:            gen,
		renderer:       renderer,
		store:          store,
		pool:           pool,
		maxPromptChars: maxPromptChars,
		log:            log,
	}
}

func (u *generationUC) validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return domain.ErrEmptyPrompt
	}
	if len(prompt) > u.maxPromptChars {
		return domain.ErrPromptTooLong
	}
	return nil
}

func (u *generationUC) Start(ctx context.Context, prompt, quality string) (*model.RenderJob, error) {
	if err := u.validatePrompt(prompt); err != nil {
		return nil, err
	}

	job := model.NewRenderJob(ulid.Make().String(), strings.TrimSpace(prompt), quality)
	if err := u.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	jobID := job.ID
	if err := u.pool.Submit(func(taskCtx context.Context) error {
		u.run(logging.WithJobID(taskCtx, jobID), jobID)
		return nil
	}); err != nil {
		_ = u.jobs.Delete(ctx, jobID)
		return nil, domain.ErrGenerationQueue
	}

	u.log.Info().Str("job_id", jobID).Str("prompt", prompt).Msg("generation job accepted")
	return job, nil
}

func (u *generationUC) RenderSync(ctx context.Context, prompt, quality string) (*model.GenerationResult, error) {
	if err := u.validatePrompt(prompt); err != nil {
		return nil, err
	}
	job := model.NewRenderJob(ulid.Make().String(), strings.TrimSpace(prompt), quality)
	return u.produce(ctx, job, func(*model.RenderJob) {})
}

func (u *generationUC) Status(ctx context.Context, id string) (*model.RenderJob, error) {
	return u.jobs.FindByID(ctx, id)
}

func (u *generationUC) Delete(ctx context.Context, id string) error {
	return u.jobs.Delete(ctx, id)
}

// run executes the pipeline for a stored job and persists every stage.
func (u *generationUC) run(ctx context.Context, jobID string) {
	log := logging.With(ctx, u.log)

	job, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Msg("job vanished before processing")
		return
	}

	start := time.Now()
	result, err := u.produce(ctx, job, func(j *model.RenderJob) {
		// checkpoint callback: persist each stage so pollers see progress
		if saveErr := u.jobs.Save(ctx, j); saveErr != nil {
			log.Warn().Err(saveErr).Msg("progress checkpoint failed")
		}
	})

	if err != nil {
		job.Fail(err.Error())
		metrics.IncRenderJob(string(model.JobStatusFailed))
		log.Error().Err(err).Msg("generation job failed")
	} else {
		job.Complete(result)
		metrics.IncRenderJob(string(model.JobStatusCompleted))
		log.Info().Dur("duration", time.Since(start)).Str("video", result.VideoURL).Msg("generation job completed")
	}
	if saveErr := u.jobs.Save(context.Background(), job); saveErr != nil {
		log.Error().Err(saveErr).Msg("final job save failed")
	}
}

// produce runs analyze -> generate -> render, invoking checkpoint after
// each stage transition.
func (u *generationUC) produce(ctx context.Context, job *model.RenderJob, checkpoint func(*model.RenderJob)) (*model.GenerationResult, error) {
	genStart := time.Now()
	script, err := u.gen.GenerateScene(ctx, job.Prompt)
	genLatency := time.Since(genStart)
	if err != nil {
		metrics.ObserveGeneration(u.gen.ModelName(), 0, 0, int(genLatency/time.Millisecond), false)
		return nil, fmt.Errorf("generate scene: %w", err)
	}
	tokens, _ := u.gen.CountTokens(ctx, job.Prompt)
	metrics.ObserveGeneration(u.gen.ModelName(), tokens, 0, int(genLatency/time.Millisecond), true)

	job.Advance(model.JobStatusGenerating, 40, "Generating animation code")
	checkpoint(job)

	if err := u.renderer.Validate(script.Code); err != nil {
		return nil, err
	}
	scriptPath, err := u.store.SaveScript(script.Code, script.SceneName)
	if err != nil {
		return nil, err
	}

	job.Advance(model.JobStatusRendering, 70, "Rendering video")
	checkpoint(job)

	result := &model.GenerationResult{
		Code:        script.Code,
		SceneName:   script.SceneName,
		Description: script.Description,
		Method:      script.Method,
		Model:       script.Model,
		SampleUsed:  script.SampleUsed,
	}

	// Pre-rendered sample videos short-circuit the render stage.
	if rel, ok := u.store.FindPrerendered(script.SceneName); ok {
		result.VideoURL = u.store.VideoURL(rel)
		return result, nil
	}

	videoFile, err := u.renderer.Render(ctx, scriptPath, script.SceneName, job.Quality)
	if err != nil {
		return nil, err
	}
	result.VideoURL = u.store.VideoURL(videoFile)
	return result, nil
}
