// Package docker drives the container engine API for buildreth.
//
// It handles the build container lifecycle, target volume creation, output
// streaming (with TTY support on interactive terminals), and resource
// cleanup. The Client type is the main entry point for all engine
// operations.
package docker
