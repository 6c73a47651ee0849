package repository

import (
	"context"

	"manim-studio/internal/domain/model"
)

// ExampleRepository lists the example gallery. Save exists for seeding only.
type ExampleRepository interface {
	ListAll(ctx context.Context) ([]*model.ExampleItem, error)
	Save(ctx context.Context, item *model.ExampleItem) error
}
