package adapter

import "context"

// Renderer is the port to the external animation rendering toolchain.
type Renderer interface {
	// Render renders sceneName from the script at scriptPath and returns
	// the produced video filename (relative to the output directory).
	Render(ctx context.Context, scriptPath, sceneName, quality string) (string, error)

	// Validate performs structural checks on a script without rendering it.
	Validate(code string) error
}
