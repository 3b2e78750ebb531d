package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/ryanmoran/buildreth/internal"
)

type Client struct {
	client DockerClient
}

// NewClient creates a Client that wraps the provided Docker client interface.
func NewClient(dockerClient DockerClient) Client {
	return Client{
		client: dockerClient,
	}
}

// NewDefaultClient creates a Client with a real Docker client from the
// environment, so DOCKER_HOST and DOCKER_API_VERSION apply as usual.
func NewDefaultClient() (Client, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	return NewClient(cli), nil
}

// Close closes the underlying Docker client connection.
func (c Client) Close() {
	c.client.Close()
}

// EnsureVolume creates the named build-output volume. Volume creation is
// create-or-get on the engine side, so an existing volume from a previous
// run is reused and its cached build output survives.
func (c Client) EnsureVolume(ctx context.Context, name internal.VolumeName) error {
	_, err := c.client.VolumeCreate(ctx, client.VolumeCreateOptions{
		Name: string(name),
	})
	if err != nil {
		return fmt.Errorf("failed to create volume %q: %w\nCheck Docker daemon logs for details", name, err)
	}

	return nil
}

// CreateContainer creates the build container with the specified image,
// command, environment, binds, and working directory. Because the container
// name is fixed, a leftover container from a previous run is force-removed
// first; any other create failure is returned. The tty flag controls whether
// the container allocates a TTY and accepts stdin, which the caller decides
// based on whether the launcher itself is attached to a terminal.
func (c Client) CreateContainer(ctx context.Context, name string, image internal.ImageName, args internal.Command, env internal.Environment, binds []string, workingDir string, stopTimeout, ttyRetries int, retryDelay time.Duration, tty bool) (Container, error) {
	_, err := c.client.ContainerRemove(ctx, name, client.ContainerRemoveOptions{
		Force: true,
	})
	if err != nil && !errdefs.IsNotFound(err) {
		return Container{}, fmt.Errorf("failed to remove leftover container %q: %w\nRemove it manually and retry", name, err)
	}

	response, err := c.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:        string(image),
			Cmd:          []string(args),
			Tty:          tty,
			OpenStdin:    tty,
			AttachStdin:  tty,
			AttachStdout: true,
			AttachStderr: true,
			Env:          []string(env),
			WorkingDir:   workingDir,
		},
		HostConfig: &container.HostConfig{
			ExtraHosts: []string{
				"host.docker.internal:host-gateway",
			},
			Binds: binds,
		},
		Name:             name,
		NetworkingConfig: nil,
		Platform:         nil,
	})
	if err != nil {
		return Container{}, fmt.Errorf("failed to create container %q from image %q: %w\nEnsure image exists and container config is valid", name, image, err)
	}

	return Container{
		ID:          response.ID,
		Name:        name,
		TTY:         tty,
		client:      c.client,
		StopTimeout: stopTimeout,
		TTYRetries:  ttyRetries,
		RetryDelay:  retryDelay,
	}, nil
}
