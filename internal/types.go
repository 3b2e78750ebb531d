package internal

// ImageName represents a Docker image tag.
type ImageName string

// VolumeName represents a named Docker volume.
type VolumeName string

// Command represents the command and arguments to execute in the container.
type Command []string

// Environment represents environment variables to pass to the container.
type Environment []string
