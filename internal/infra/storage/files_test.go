//go:build !integration

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"manim-studio/internal/domain"
)

func TestCamelToSnake(t *testing.T) {
	cases := []struct{ in, want string }{
		{"HyperbolaFoci", "hyperbola_foci"},
		{"VectorAddSub", "vector_add_sub"},
		{"ParabolaPlot2D", "parabola_plot2_d"},
		{"X", "x"},
		{"already_snake", "already_snake"},
	}
	for _, tc := range cases {
		if got := CamelToSnake(tc.in); got != tc.want {
			t.Errorf("CamelToSnake(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	a := UniqueFilename("WaveDemo", "py")
	b := UniqueFilename("WaveDemo", "py")
	if a == b {
		t.Fatalf("filenames collided: %s", a)
	}
	if !strings.HasPrefix(a, "WaveDemo_") || !strings.HasSuffix(a, ".py") {
		t.Fatalf("unexpected shape: %s", a)
	}
}

func TestSaveScript(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, dir, dir)

	path, err := s.SaveScript("print(1)", "WaveDemo")
	if err != nil {
		t.Fatalf("SaveScript: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "print(1)" {
		t.Fatalf("content = %q", data)
	}
}

func TestVideoURL(t *testing.T) {
	s := NewFileStore("media", "output", "generated")
	if got := s.VideoURL("WaveDemo_1.mp4"); got != "/output/WaveDemo_1.mp4" {
		t.Fatalf("fresh render url = %q", got)
	}
	if got := s.VideoURL("videos/wave_demo/720p30/WaveDemo.mp4"); got != "/static/videos/wave_demo/720p30/WaveDemo.mp4" {
		t.Fatalf("sample url = %q", got)
	}
}

func seedSampleVideo(t *testing.T, mediaDir, scene, quality string) {
	t.Helper()
	dir := filepath.Join(mediaDir, "videos", scene, quality)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, scene+".mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindPrerendered(t *testing.T) {
	media := t.TempDir()
	seedSampleVideo(t, media, "hyperbola_foci", "480p15")
	s := NewFileStore(media, t.TempDir(), t.TempDir())

	rel, ok := s.FindPrerendered("HyperbolaFoci")
	if !ok {
		t.Fatal("camel-case scene name did not match its snake_case directory")
	}
	if !strings.HasPrefix(rel, "videos/hyperbola_foci/") {
		t.Fatalf("rel = %q", rel)
	}

	if _, ok := s.FindPrerendered("NoSuchScene"); ok {
		t.Fatal("matched a scene that has no video")
	}
}

func TestListSampleVideos(t *testing.T) {
	media := t.TempDir()
	seedSampleVideo(t, media, "vector_add_sub", "480p15")
	seedSampleVideo(t, media, "hyperbola_foci", "720p30")
	s := NewFileStore(media, t.TempDir(), t.TempDir())

	samples := s.ListSampleVideos()
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	for _, v := range samples {
		if !strings.HasPrefix(v.URL, "/static/videos/") {
			t.Errorf("url = %q", v.URL)
		}
	}
}

func TestCleanupOld(t *testing.T) {
	scripts := t.TempDir()
	output := t.TempDir()
	s := NewFileStore(t.TempDir(), output, scripts)

	oldScript := filepath.Join(scripts, "old.py")
	newScript := filepath.Join(scripts, "new.py")
	oldVideo := filepath.Join(output, "old.mp4")
	for _, p := range []string{oldScript, newScript, oldVideo} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	os.Chtimes(oldScript, stale, stale)
	os.Chtimes(oldVideo, stale, stale)

	removed, err := s.CleanupOld(24 * time.Hour)
	if err != nil {
		t.Fatalf("CleanupOld: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := os.Stat(newScript); err != nil {
		t.Fatal("fresh file was removed")
	}
}

func TestStats(t *testing.T) {
	media, output, scripts := t.TempDir(), t.TempDir(), t.TempDir()
	seedSampleVideo(t, media, "vector_add_sub", "480p15")
	os.WriteFile(filepath.Join(scripts, "a.py"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(output, "a.mp4"), []byte("x"), 0o644)

	s := NewFileStore(media, output, scripts)
	st := s.Stats()
	if st.GeneratedScripts != 1 || st.OutputVideos != 1 || st.SampleVideos != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestDiskExampleRepoDescribes(t *testing.T) {
	media := t.TempDir()
	seedSampleVideo(t, media, "vector_add_sub", "480p15")
	seedSampleVideo(t, media, "hyperbola_foci", "480p15")
	seedSampleVideo(t, media, "golden_ratio", "480p15")
	s := NewFileStore(media, t.TempDir(), t.TempDir())

	repo := NewDiskExampleRepo(s, map[string][]string{
		"vector":    {"Show how vectors add and subtract"},
		"hyperbola": {"Show a hyperbola with its foci"},
	})

	items, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	byCategory := map[string]int{}
	for _, it := range items {
		byCategory[it.Category]++
		if it.VideoURL == "" || it.Title == "" || it.Prompt == "" {
			t.Errorf("incomplete item: %+v", it)
		}
	}
	if byCategory["algebra"] != 1 || byCategory["geometry"] != 1 || byCategory["general"] != 1 {
		t.Fatalf("categories = %v", byCategory)
	}
}

func TestDiskExampleRepoIsReadOnly(t *testing.T) {
	repo := NewDiskExampleRepo(NewFileStore(t.TempDir(), t.TempDir(), t.TempDir()), nil)
	if err := repo.Save(context.Background(), nil); err != domain.ErrInvalidArgument {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
