package internal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// BuildImage builds the builder image by invoking the configured engine
// binary with its build subcommand, using contextDir as the build context.
// The engine's output streams to the writer and its exit code is propagated:
// a failed build aborts the run before any container is created.
func BuildImage(ctx context.Context, config Config, contextDir string, w Writer) error {
	cmd := exec.CommandContext(ctx, config.Docker, buildArgs(config, contextDir)...)
	cmd.Stdout = w.GetWriter()
	cmd.Stderr = w.GetErrorWriter()

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = ExitError{Status: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to build image %q with %q: %w\nCheck the engine output above for details", config.Image, config.Docker, err)
	}

	return nil
}

func buildArgs(config Config, contextDir string) []string {
	args := []string{"build", "--tag", string(config.Image)}
	if config.NoCache {
		args = append(args, "--no-cache")
	}
	return append(args, contextDir)
}
