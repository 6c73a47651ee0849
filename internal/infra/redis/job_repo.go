package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo keeps render jobs in Redis as JSON values with a TTL.
// Jobs are short-lived by design; the TTL covers both active polling and a
// grace window for the client to fetch the terminal status.
type JobRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewJobRepo(client RedisClient, ttl time.Duration) *JobRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JobRepo{client: client, ttl: ttl}
}

func (r *JobRepo) jobKey(id string) string {
	return fmt.Sprintf("render_job:%s", id)
}

func (r *JobRepo) Save(ctx context.Context, job *model.RenderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.jobKey(job.ID), data, r.ttl)
}

func (r *JobRepo) FindByID(ctx context.Context, id string) (*model.RenderJob, error) {
	data, err := r.client.Get(ctx, r.jobKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}

	var job model.RenderJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.jobKey(id))
}
