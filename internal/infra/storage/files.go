package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Quality subdirectories manim writes videos into, in preference order.
var qualityDirs = []string{"480p15", "720p30", "1080p60"}

// SampleVideo is one pre-rendered video discovered under the media dir.
type SampleVideo struct {
	Name string
	Path string // relative to the media dir
	URL  string
}

// Stats summarizes what the store currently holds.
type Stats struct {
	GeneratedScripts int `json:"generated_scripts"`
	OutputVideos     int `json:"output_videos"`
	SampleVideos     int `json:"sample_videos"`
}

// FileStore owns the on-disk layout: pre-rendered sample videos under the
// media dir, fresh renders under the output dir, generated scene scripts
// under the scripts dir.
type FileStore struct {
	mediaDir   string
	outputDir  string
	scriptsDir string
}

func NewFileStore(mediaDir, outputDir, scriptsDir string) *FileStore {
	return &FileStore{mediaDir: mediaDir, outputDir: outputDir, scriptsDir: scriptsDir}
}

func (s *FileStore) MediaDir() string   { return s.mediaDir }
func (s *FileStore) OutputDir() string  { return s.outputDir }
func (s *FileStore) ScriptsDir() string { return s.scriptsDir }

// EnsureDirs creates the writable directories at startup.
func (s *FileStore) EnsureDirs() error {
	for _, dir := range []string{s.outputDir, s.scriptsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure dir %s: %w", dir, err)
		}
	}
	return nil
}

// SaveScript writes a generated scene script as {Scene}_{8hex}.py and
// returns its absolute path.
func (s *FileStore) SaveScript(code, sceneName string) (string, error) {
	name := UniqueFilename(sceneName, "py")
	path := filepath.Join(s.scriptsDir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("save script: %w", err)
	}
	return path, nil
}

// UniqueFilename appends an 8-hex suffix so repeated renders of the same
// scene never collide.
func UniqueFilename(base, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s.%s", base, suffix, ext)
}

// VideoURL maps a stored video path to its public URL: fresh renders are
// served from /output, sample videos from /static.
func (s *FileStore) VideoURL(videoPath string) string {
	if strings.HasSuffix(videoPath, ".mp4") && !strings.HasPrefix(videoPath, "videos/") {
		return "/output/" + videoPath
	}
	return "/static/" + videoPath
}

// FindPrerendered looks for an existing sample video matching the scene
// name, trying snake_case and substring matches across quality dirs.
func (s *FileStore) FindPrerendered(sceneName string) (string, bool) {
	videosDir := filepath.Join(s.mediaDir, "videos")
	entries, err := os.ReadDir(videosDir)
	if err != nil {
		return "", false
	}

	snake := CamelToSnake(sceneName)
	lower := strings.ToLower(sceneName)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dirName := strings.ToLower(e.Name())
		if dirName != snake && dirName != lower &&
			!strings.Contains(dirName, lower) && !strings.Contains(lower, dirName) {
			continue
		}
		for _, q := range qualityDirs {
			qDir := filepath.Join(videosDir, e.Name(), q)
			matches, _ := filepath.Glob(filepath.Join(qDir, "*.mp4"))
			if len(matches) > 0 {
				return filepath.ToSlash(filepath.Join("videos", e.Name(), q, filepath.Base(matches[0]))), true
			}
		}
	}
	return "", false
}

// ListSampleVideos enumerates every pre-rendered video, one per scene dir.
func (s *FileStore) ListSampleVideos() []SampleVideo {
	var samples []SampleVideo
	videosDir := filepath.Join(s.mediaDir, "videos")
	entries, err := os.ReadDir(videosDir)
	if err != nil {
		return samples
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, q := range qualityDirs {
			qDir := filepath.Join(videosDir, e.Name(), q)
			matches, _ := filepath.Glob(filepath.Join(qDir, "*.mp4"))
			if len(matches) == 0 {
				continue
			}
			rel := filepath.ToSlash(filepath.Join("videos", e.Name(), q, filepath.Base(matches[0])))
			samples = append(samples, SampleVideo{
				Name: e.Name(),
				Path: rel,
				URL:  s.VideoURL(rel),
			})
			break // one video per scene dir
		}
	}
	return samples
}

// CleanupOld removes generated scripts and output videos older than maxAge.
// Sample videos under the media dir are never touched.
func (s *FileStore) CleanupOld(maxAge time.Duration) (int, error) {
	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, spec := range []struct{ dir, pattern string }{
		{s.scriptsDir, "*.py"},
		{s.outputDir, "*.mp4"},
	} {
		matches, err := filepath.Glob(filepath.Join(spec.dir, spec.pattern))
		if err != nil {
			return removed, err
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(path); err == nil {
					removed++
				}
			}
		}
	}
	return removed, nil
}

// Stats counts stored artifacts for the admin endpoint.
func (s *FileStore) Stats() Stats {
	count := func(dir, pattern string) int {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		return len(matches)
	}
	return Stats{
		GeneratedScripts: count(s.scriptsDir, "*.py"),
		OutputVideos:     count(s.outputDir, "*.mp4"),
		SampleVideos:     len(s.ListSampleVideos()),
	}
}

var (
	camelBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelToSnake converts a scene class name to the directory naming manim
// uses for its output (HyperbolaFoci -> hyperbola_foci).
func CamelToSnake(name string) string {
	out := camelBoundary1.ReplaceAllString(name, "${1}_${2}")
	out = camelBoundary2.ReplaceAllString(out, "${1}_${2}")
	return strings.ToLower(out)
}
