package internal

import "fmt"

// ExitError reports a build container that ran to completion but exited with
// a non-zero status. The launcher propagates the status as its own exit code.
type ExitError struct {
	Status int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("build exited with status %d", e.Status)
}
