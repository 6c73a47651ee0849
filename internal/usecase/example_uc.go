package usecase

import (
	"context"

	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/repository"
)

var _ ExampleUseCase = (*exampleUC)(nil)

type ExampleUseCase interface {
	List(ctx context.Context) ([]*model.ExampleItem, error)
}

type exampleUC struct {
	examples repository.ExampleRepository
}

func NewExampleUseCase(examples repository.ExampleRepository) *exampleUC {
	return &exampleUC{examples: examples}
}

func (u *exampleUC) List(ctx context.Context) ([]*model.ExampleItem, error) {
	items, err := u.examples.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.ExampleItem{}
	}
	return items, nil
}
