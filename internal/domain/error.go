package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyPrompt     = errors.New("prompt must not be empty")
	ErrPromptTooLong   = errors.New("prompt exceeds maximum length")
	ErrGenerationQueue = errors.New("generation queue is full")
	ErrRenderFailed    = errors.New("rendering failed")
	ErrRendererMissing = errors.New("manim binary not found in PATH")
	ErrScriptInvalid   = errors.New("generated script failed validation")
	ErrNoProvider      = errors.New("no AI provider configured")
)
