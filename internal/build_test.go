package internal

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	config := Config{Image: "build-reth:dev"}

	args := buildArgs(config, "/some/context")
	want := []string{"build", "--tag", "build-reth:dev", "/some/context"}
	if len(args) != len(want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("expected %v, got %v", want, args)
		}
	}
}

func TestBuildArgs_NoCache(t *testing.T) {
	config := Config{Image: "foo", NoCache: true}

	args := buildArgs(config, "/ctx")
	want := []string{"build", "--tag", "foo", "--no-cache", "/ctx"}
	if len(args) != len(want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("expected %v, got %v", want, args)
		}
	}
}

func TestBuildImage_EngineOutputStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewCustomWriter(&out, &errOut)

	// "echo" stands in for the engine binary so the invocation itself is
	// observable on the output stream.
	config := Config{Image: "build-reth:dev", Docker: "echo"}
	err := BuildImage(context.Background(), config, "/some/context", w)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := out.String(); got != "build --tag build-reth:dev /some/context\n" {
		t.Errorf("unexpected engine invocation: %q", got)
	}
}

func TestBuildImage_MissingEngineBinary(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewCustomWriter(&out, &errOut)

	config := Config{Image: "build-reth:dev", Docker: "/nonexistent/engine"}
	err := BuildImage(context.Background(), config, "/some/context", w)
	if err == nil {
		t.Fatal("expected an error for a missing engine binary")
	}
}

func TestBuildImage_PropagatesFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	w := NewCustomWriter(&out, &errOut)

	config := Config{Image: "build-reth:dev", Docker: "false"}
	err := BuildImage(context.Background(), config, "/some/context", w)
	if err == nil {
		t.Fatal("expected the engine's failure to propagate")
	}

	var exitErr ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected the engine exit code to propagate, got %v", err)
	}
	if exitErr.Status != 1 {
		t.Errorf("expected exit status 1, got %d", exitErr.Status)
	}
}
