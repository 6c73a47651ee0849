package storage

import (
	"context"
	"fmt"
	"strings"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/model"
	"manim-studio/internal/domain/ports/repository"
)

var _ repository.ExampleRepository = (*DiskExampleRepo)(nil)

// DiskExampleRepo derives the example gallery from the pre-rendered sample
// videos on disk. It is the zero-setup alternative to the Postgres gallery
// and the source the seeder reads from.
type DiskExampleRepo struct {
	store         *FileStore
	samplePrompts map[string][]string
}

func NewDiskExampleRepo(store *FileStore, samplePrompts map[string][]string) *DiskExampleRepo {
	return &DiskExampleRepo{store: store, samplePrompts: samplePrompts}
}

func (r *DiskExampleRepo) ListAll(ctx context.Context) ([]*model.ExampleItem, error) {
	videos := r.store.ListSampleVideos()
	items := make([]*model.ExampleItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, r.describe(v))
	}
	return items, nil
}

// Save is not supported: the disk gallery is read-only by construction.
func (r *DiskExampleRepo) Save(ctx context.Context, item *model.ExampleItem) error {
	return domain.ErrInvalidArgument
}

// describe infers gallery metadata from the video directory name.
func (r *DiskExampleRepo) describe(v SampleVideo) *model.ExampleItem {
	name := strings.ToLower(v.Name)
	item := &model.ExampleItem{
		VideoURL: v.URL,
		Duration: "45-90s",
	}

	switch {
	case strings.Contains(name, "vector"):
		item.Category = "algebra"
		item.Title = "Vector Addition & Subtraction"
		item.Prompt = r.firstPrompt("vector", "Show vector addition")
		item.Description = "Learn how to add and subtract vectors with animated arrows and step-by-step visualization."
	case strings.Contains(name, "hyperbola_foci"):
		item.Category = "geometry"
		item.Title = "Hyperbola & Foci"
		item.Prompt = r.firstPrompt("hyperbola", "Show hyperbola with foci")
		item.Description = "Explore hyperbolas and their foci with interactive geometric visualization."
	case strings.Contains(name, "hyperbola_teacher"):
		item.Category = "geometry"
		item.Title = "Hyperbola Teaching Animation"
		item.Prompt = r.firstPrompt("teacher", "Teach hyperbolas")
		item.Description = "Educational animation explaining hyperbola properties and mathematical concepts."
	default:
		title := titleCase(strings.ReplaceAll(v.Name, "_", " "))
		item.Category = "general"
		item.Title = title
		item.Prompt = fmt.Sprintf("Create an animation about %s", strings.ToLower(title))
		item.Description = fmt.Sprintf("Mathematical visualization of %s.", strings.ToLower(title))
	}
	return item
}

func (r *DiskExampleRepo) firstPrompt(key, def string) string {
	if ps := r.samplePrompts[key]; len(ps) > 0 {
		return ps[0]
	}
	return def
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
