package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moby/term"
	"github.com/ryanmoran/buildreth/internal"
	"github.com/ryanmoran/buildreth/internal/docker"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	if err := run(os.Args, os.Environ()); err != nil {
		var exitErr internal.ExitError
		if errors.As(err, &exitErr) {
			log.Print(err)
			os.Exit(exitErr.Status)
		}
		log.Fatal(err)
	}
}

func run(args, env []string) error {
	cleanupMgr := internal.NewCleanupManager()
	defer cleanupMgr.Execute()

	config := internal.ParseConfig(args[1:], env)

	// Create context with cancellation for proper goroutine cleanup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals to cancel context and cleanup
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	w := internal.NewStandardWriter()

	contextDir := config.ContextDir
	if contextDir == "" {
		var err error
		contextDir, err = internal.LauncherDir()
		if err != nil {
			return fmt.Errorf("failed to locate the launcher directory: %w\nPass --context to set the build context explicitly", err)
		}
	}

	plan := internal.PlanMounts(config, internal.ProjectsDir(contextDir))
	err := plan.Validate()
	if err != nil {
		return err
	}

	if !config.NoBuild {
		err = internal.BuildImage(ctx, config, contextDir, w)
		if err != nil {
			return err
		}
	}

	client, err := docker.NewDefaultClient()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
	}
	cleanupMgr.Add("docker-client", func() error {
		client.Close()
		return nil
	})

	err = client.EnsureVolume(ctx, config.Volume)
	if err != nil {
		return fmt.Errorf("failed to prepare target volume %q: %w", config.Volume, err)
	}

	interactive := term.IsTerminal(os.Stdin.Fd())

	container, err := client.CreateContainer(
		ctx,
		config.RunName,
		config.Image,
		config.Args,
		config.Env,
		plan.Binds,
		plan.WorkingDir,
		config.StopTimeout,
		config.TTYRetries,
		config.RetryDelay,
		interactive,
	)
	if err != nil {
		return fmt.Errorf("failed to create container %q from image %q: %w", config.RunName, config.Image, err)
	}
	cleanupMgr.Add("container", func() error {
		// Cleanup must still reach the daemon after a signal cancels ctx.
		return container.ForceRemove(context.WithoutCancel(ctx))
	})

	err = container.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w", config.RunName, err)
	}

	done, err := container.Attach(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to attach to container %q: %w", config.RunName, err)
	}

	status, err := container.Wait(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to wait for container %q: %w", config.RunName, err)
	}

	// Let output forwarding drain before reporting, so a fast-exiting build
	// doesn't lose its final chunk of output.
	select {
	case <-done:
	case <-time.After(config.DrainTimeout):
	}

	if status != 0 {
		return internal.ExitError{Status: int(status)}
	}

	return nil
}
