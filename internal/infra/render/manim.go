package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/ports/adapter"
	"manim-studio/internal/infra/metrics"
)

// Compile-time assurance this renderer satisfies the port
var _ adapter.Renderer = (*ManimRenderer)(nil)

var sceneClassRe = regexp.MustCompile(`class\s+\w+\s*\(\s*Scene\s*\)`)

// ManimRenderer shells out to the manim CLI. Output files land under
// outputDir; manim nests them in quality subdirectories, so the produced
// file is located afterwards and moved to the output root.
type ManimRenderer struct {
	bin       string
	outputDir string
	timeout   time.Duration
	log       *zerolog.Logger
}

func NewManimRenderer(bin, outputDir string, timeout time.Duration, log *zerolog.Logger) *ManimRenderer {
	if bin == "" {
		bin = "manim"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ManimRenderer{bin: bin, outputDir: outputDir, timeout: timeout, log: log}
}

// QualityFlag maps the API quality names to manim CLI flags.
func QualityFlag(quality string) string {
	switch strings.ToLower(quality) {
	case "low", "low_quality":
		return "-ql"
	case "high", "high_quality":
		return "-qh"
	default:
		return "-qm"
	}
}

// BuildArgs assembles the manim command line for one render.
func BuildArgs(quality, scriptPath, sceneName, outputName, mediaDir string) []string {
	return []string{
		QualityFlag(quality),
		scriptPath,
		sceneName,
		"-o", outputName,
		"--media_dir", mediaDir,
	}
}

func (r *ManimRenderer) Render(ctx context.Context, scriptPath, sceneName, quality string) (string, error) {
	outputName := fmt.Sprintf("%s_%d.mp4", sceneName, time.Now().UnixNano()%1_000_000_00)
	args := BuildArgs(quality, scriptPath, sceneName, outputName, r.outputDir)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = filepath.Dir(scriptPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	metrics.ObserveRenderSeconds(elapsed.Seconds())

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", domain.ErrRenderFailed, r.timeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", domain.ErrRendererMissing
		}
		r.log.Error().Err(err).Str("scene", sceneName).Str("stderr", tail(stderr.String(), 400)).Msg("manim render failed")
		return "", fmt.Errorf("%w: %s", domain.ErrRenderFailed, tail(stderr.String(), 400))
	}

	found, err := r.collectOutput(outputName)
	if err != nil {
		return "", err
	}
	r.log.Info().Str("scene", sceneName).Str("video", found).Dur("duration", elapsed).Msg("render complete")
	return found, nil
}

// collectOutput locates the rendered file under outputDir and moves it to
// the output root so it is servable at a stable /output URL.
func (r *ManimRenderer) collectOutput(outputName string) (string, error) {
	target := filepath.Join(r.outputDir, outputName)
	if _, err := os.Stat(target); err == nil {
		return outputName, nil
	}

	var produced string
	_ = filepath.WalkDir(r.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if d.Name() == outputName {
			produced = path
			return fs.SkipAll
		}
		return nil
	})
	if produced == "" {
		return "", fmt.Errorf("%w: video file not found after rendering", domain.ErrRenderFailed)
	}
	if err := os.Rename(produced, target); err != nil {
		return "", fmt.Errorf("move rendered video: %w", err)
	}
	return outputName, nil
}

// Validate performs the structural checks possible without a Python
// interpreter: required import, a Scene subclass, a construct method.
func (r *ManimRenderer) Validate(code string) error {
	if !strings.Contains(code, "from manim import") {
		return fmt.Errorf("%w: missing 'from manim import' statement", domain.ErrScriptInvalid)
	}
	if !sceneClassRe.MatchString(code) {
		return fmt.Errorf("%w: no Scene class found", domain.ErrScriptInvalid)
	}
	if !strings.Contains(code, "def construct(") {
		return fmt.Errorf("%w: no construct method found", domain.ErrScriptInvalid)
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
