//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/model"
)

// fakeRedis is an in-memory stand-in honoring the RedisClient contract,
// including redis.Nil for missing keys.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestJobRepoRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	repo := NewJobRepo(fake, time.Hour)
	ctx := context.Background()

	job := model.NewRenderJob("01JABC", "plot a parabola", "medium")
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.FindByID(ctx, "01JABC")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.ID != job.ID || got.Prompt != job.Prompt || got.Status != model.JobStatusAnalyzing {
		t.Fatalf("got = %+v", got)
	}

	// updates overwrite in place
	job.Advance(model.JobStatusRendering, 70, "Rendering video")
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, _ = repo.FindByID(ctx, "01JABC")
	if got.Status != model.JobStatusRendering || got.Progress != 70 {
		t.Fatalf("update lost: %+v", got)
	}
}

func TestJobRepoMissingJob(t *testing.T) {
	repo := NewJobRepo(newFakeRedis(), time.Hour)
	if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("err = %v, want ErrJobNotFound", err)
	}
}

func TestJobRepoDelete(t *testing.T) {
	fake := newFakeRedis()
	repo := NewJobRepo(fake, time.Hour)
	ctx := context.Background()

	job := model.NewRenderJob("01JDEL", "p", "")
	_ = repo.Save(ctx, job)
	if err := repo.Delete(ctx, "01JDEL"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "01JDEL"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("err = %v, want ErrJobNotFound after delete", err)
	}
}

func TestJobRepoAppliesTTL(t *testing.T) {
	fake := newFakeRedis()
	repo := NewJobRepo(fake, 15*time.Minute)
	_ = repo.Save(context.Background(), model.NewRenderJob("01JTTL", "p", ""))

	fake.mu.Lock()
	ttl := fake.ttls["render_job:01JTTL"]
	fake.mu.Unlock()
	if ttl != 15*time.Minute {
		t.Fatalf("ttl = %s, want 15m", ttl)
	}
}

func TestJobRepoCompletedJobKeepsResult(t *testing.T) {
	fake := newFakeRedis()
	repo := NewJobRepo(fake, time.Hour)
	ctx := context.Background()

	job := model.NewRenderJob("01JRES", "p", "")
	job.Complete(&model.GenerationResult{VideoURL: "/output/x.mp4", SceneName: "X", Method: model.MethodOpenAI})
	_ = repo.Save(ctx, job)

	got, err := repo.FindByID(ctx, "01JRES")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Result == nil || got.Result.VideoURL != "/output/x.mp4" {
		t.Fatalf("result lost in round trip: %+v", got.Result)
	}
}
