package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docker/cli/cli/streams"
	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/moby/term"
	"github.com/ryanmoran/buildreth/internal"
	"golang.org/x/sync/errgroup"
)

type Container struct {
	client DockerClient

	ID          string
	Name        string
	TTY         bool
	StopTimeout int
	TTYRetries  int
	RetryDelay  time.Duration
}

// Start starts the container. Returns an error if the container fails to
// start, which may indicate a misconfiguration or an unhealthy Docker daemon.
func (c Container) Start(ctx context.Context) error {
	_, err := c.client.ContainerStart(ctx, c.ID, client.ContainerStartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w\nContainer may be misconfigured or Docker daemon may be unhealthy", c.Name, err)
	}

	return nil
}

// Attach streams the container's output. On an interactive terminal (TTY
// container) the local terminal goes raw, stdin is forwarded, and resize
// events propagate to the container so cargo's progress rendering works.
// Otherwise the multiplexed stream is demuxed onto the writer's output and
// error streams. The returned channel closes once output forwarding has
// drained, so callers can join it after the container exits and not lose a
// final chunk of output.
func (c Container) Attach(ctx context.Context, w internal.Writer) (<-chan struct{}, error) {
	if c.TTY {
		return c.attachTTY(ctx, w)
	}
	return c.attachPlain(ctx, w)
}

func (c Container) attachPlain(ctx context.Context, w internal.Writer) (<-chan struct{}, error) {
	response, err := c.client.ContainerAttach(ctx, c.ID, client.ContainerAttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to container %q: %w\nContainer may have exited prematurely or Docker API is unreachable", c.Name, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, err := stdcopy.StdCopy(w.GetWriter(), w.GetErrorWriter(), response.Reader)
		// Context cancellation is expected, not an error
		if err != nil && err != io.EOF && ctx.Err() == nil {
			w.Warningf("output streaming error: %v", err)
		}
	}()

	return done, nil
}

func (c Container) attachTTY(ctx context.Context, w internal.Writer) (<-chan struct{}, error) {
	stdin, stdout, _ := term.StdStreams()
	in := streams.NewIn(stdin)
	out := streams.NewOut(stdout)

	// Attempt initial resize - if it fails, the TTY monitor will retry
	height, width := out.GetTtySize()
	_, err := c.client.ContainerResize(ctx, c.ID, client.ContainerResizeOptions{
		Height: height,
		Width:  width,
	})
	if err != nil {
		w.Warningf("failed to resize tty: %v", err)
	}

	tty := NewTTY(c.client, out, c.ID, c.TTYRetries, c.RetryDelay, w)
	err = tty.Monitor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to monitor tty size: %w", err)
	}

	restore := sync.OnceFunc(func() {
		in.RestoreTerminal()
		out.RestoreTerminal()
	})

	err = in.SetRawTerminal()
	if err != nil {
		return nil, fmt.Errorf("failed to set stdin to raw terminal mode: %w\nYour terminal may not support TTY operations", err)
	}

	response, err := c.client.ContainerAttach(ctx, c.ID, client.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		restore()
		return nil, fmt.Errorf("failed to attach to container %q: %w\nContainer may have exited prematurely or Docker API is unreachable", c.Name, err)
	}

	// Use errgroup for coordinated goroutine management
	g, gctx := errgroup.WithContext(ctx)

	// Forward stdin to container
	g.Go(func() error {
		defer restore()
		defer response.Conn.Close()

		_, err := io.Copy(response.Conn, in)
		// Context cancellation is expected, not an error
		if gctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.Warningf("stdin forwarding error: %v", err)
		}
		return nil
	})

	err = out.SetRawTerminal()
	if err != nil {
		restore()
		return nil, fmt.Errorf("failed to set stdout to raw terminal mode: %w\nYour terminal may not support TTY operations", err)
	}

	// Forward container output to stdout. The done channel tracks only this
	// direction: the stdin copy can block on a terminal read indefinitely,
	// so joining it would hang interactive runs.
	done := make(chan struct{})
	g.Go(func() error {
		defer restore()
		defer close(done)

		_, err := io.Copy(out, response.Reader)
		// Context cancellation is expected, not an error
		if gctx.Err() != nil {
			return nil
		}
		if err != nil && err != io.EOF {
			w.Warningf("stdout/stderr forwarding error: %v", err)
		}
		return nil
	})

	go func() {
		_ = g.Wait()
	}()

	return done, nil
}

// Wait blocks until the container exits or an interrupt signal (SIGINT,
// SIGTERM) arrives. On a signal, it attempts to gracefully stop the container
// with the configured timeout and reports a zero status. Otherwise it returns
// the container's exit status so the launcher can propagate it.
func (c Container) Wait(ctx context.Context, w internal.Writer) (int64, error) {
	wait := c.client.ContainerWait(ctx, c.ID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-wait.Error:
		if err != nil {
			return 0, fmt.Errorf("failed to wait for container %q: %w\nDocker daemon may have encountered an error", c.Name, err)
		}
	case status := <-wait.Result:
		w.Printf("\nBuild container exited with status: %d\n", status.StatusCode)
		return status.StatusCode, nil
	case <-sigChan:
		w.Println("\nReceived signal, stopping build container...")
		// The same signal cancels the run context in main, so the stop must
		// not ride on it or the graceful timeout never happens.
		timeout := c.StopTimeout
		_, err := c.client.ContainerStop(context.WithoutCancel(ctx), c.ID, client.ContainerStopOptions{Timeout: &timeout})
		if err != nil {
			w.Warningf("failed to stop container: %v", err)
		}
	}
	return 0, nil
}

// ForceRemove forcibly removes the container from the Docker daemon, even if
// it is still running. The image and the target volume are left in place;
// they are the caches the next run builds on.
func (c Container) ForceRemove(ctx context.Context) error {
	_, err := c.client.ContainerRemove(ctx, c.ID, client.ContainerRemoveOptions{
		Force: true,
	})
	if err != nil {
		return fmt.Errorf("failed to force remove container %q: %w\nContainer may be in an inconsistent state", c.Name, err)
	}

	return nil
}
