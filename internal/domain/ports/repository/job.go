package repository

import (
	"context"

	"manim-studio/internal/domain/model"
)

// JobRepository stores render jobs. Jobs are ephemeral: implementations may
// expire terminal jobs after a TTL.
type JobRepository interface {
	Save(ctx context.Context, job *model.RenderJob) error
	FindByID(ctx context.Context, id string) (*model.RenderJob, error)
	Delete(ctx context.Context, id string) error
}
