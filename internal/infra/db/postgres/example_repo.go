package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/repository"
)

var _ repository.ExampleRepository = (*exampleRepo)(nil)

type exampleRepo struct {
	pool *pgxpool.Pool
}

func NewExampleRepo(pool *pgxpool.Pool) *exampleRepo {
	return &exampleRepo{pool: pool}
}

// Schema (applied out of band):
//
//	CREATE TABLE examples (
//	    id            TEXT PRIMARY KEY,
//	    title         TEXT NOT NULL,
//	    prompt        TEXT NOT NULL,
//	    video_url     TEXT NOT NULL UNIQUE,
//	    thumbnail_url TEXT,
//	    description   TEXT NOT NULL DEFAULT '',
//	    category      TEXT NOT NULL DEFAULT 'general',
//	    duration      TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
func (r *exampleRepo) ListAll(ctx context.Context) ([]*model.ExampleItem, error) {
	const q = `
SELECT id, title, prompt, video_url, COALESCE(thumbnail_url, ''), description, category, duration
FROM examples
ORDER BY category, title;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.ExampleItem
	for rows.Next() {
		var it model.ExampleItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Prompt, &it.VideoURL,
			&it.ThumbnailURL, &it.Description, &it.Category, &it.Duration); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Save inserts a gallery row; re-seeding the same video is a no-op.
func (r *exampleRepo) Save(ctx context.Context, item *model.ExampleItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	const q = `
INSERT INTO examples (id, title, prompt, video_url, thumbnail_url, description, category, duration)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
ON CONFLICT (video_url) DO NOTHING;`

	_, err := r.pool.Exec(ctx, q,
		item.ID, item.Title, item.Prompt, item.VideoURL,
		item.ThumbnailURL, item.Description, item.Category, item.Duration)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil // unique violation: already seeded
		}
		return err
	}
	return nil
}
