package internal

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultImage is the tag given to the builder image when BUILDER_IMAGE
	// is unset.
	DefaultImage = "build-reth:dev"

	// DefaultVolume is the named volume that holds the cargo target directory
	// when TARGET_DIR_VOLUME is unset. Keeping build output in a volume means
	// successive runs reuse incremental compilation state.
	DefaultVolume = "build-reth_target_dir"

	// DefaultDocker is the container engine binary invoked for the image
	// build step when DOCKER is unset.
	DefaultDocker = "docker"

	// RunName is the fixed container name for the build. A fixed name makes
	// concurrent launches conflict instead of silently racing on the shared
	// target volume.
	RunName = "build-reth"

	// DefaultStopTimeout is the timeout in seconds for gracefully stopping
	// the build container before forcefully killing it.
	DefaultStopTimeout = 10

	// DefaultTTYRetries is the number of retry attempts for initial TTY
	// resize operations. The container may not be fully ready when we first
	// try to resize, so we retry multiple times with increasing delays.
	DefaultTTYRetries = 10

	// DefaultRetryDelay is the base delay between TTY resize retry attempts.
	// Each retry multiplies this by (retry+1): 10ms, 20ms, 30ms, etc.
	DefaultRetryDelay = 10 * time.Millisecond

	// DefaultDrainTimeout bounds how long the launcher waits for output
	// forwarding to drain after the container has exited.
	DefaultDrainTimeout = 2 * time.Second
)

type Config struct {
	Image        ImageName
	Volume       VolumeName
	Docker       string
	RunName      string
	CargoHome    string
	ContextDir   string
	StopTimeout  int
	TTYRetries   int
	RetryDelay   time.Duration
	DrainTimeout time.Duration

	NoBuild bool
	NoCache bool

	Args    Command
	Env     Environment
	Volumes []string
}

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// ParseConfig resolves the launcher configuration from command-line arguments
// and environment variables. The environment supplies the overridable knobs
// (BUILDER_IMAGE, TARGET_DIR_VOLUME, DOCKER, CARGO_HOME), flags supply
// per-invocation options (--context, --no-build, --no-cache, --env,
// --volume), and any remaining arguments become the command run inside the
// container in place of the image's default. All ambient state is captured
// here; nothing else reads the environment.
func ParseConfig(args []string, environment []string) Config {
	lookup := make(map[string]string)
	for _, variable := range environment {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}

	var (
		contextDir string
		noBuild    bool
		noCache    bool
		extraEnv   stringSlice
		volumes    stringSlice
	)

	fs := flag.NewFlagSet("buildreth", flag.ContinueOnError)
	fs.StringVar(&contextDir, "context", "", "image build context directory")
	fs.BoolVar(&noBuild, "no-build", false, "skip the image build step")
	fs.BoolVar(&noCache, "no-cache", false, "build the image without layer caching")
	fs.Var(&extraEnv, "env", "environment variable")
	fs.Var(&volumes, "volume", "volume mount")

	// Ignore errors since we want to capture remaining args
	_ = fs.Parse(args)

	image, ok := lookup["BUILDER_IMAGE"]
	if !ok {
		image = DefaultImage
	}

	volume, ok := lookup["TARGET_DIR_VOLUME"]
	if !ok {
		volume = DefaultVolume
	}

	docker, ok := lookup["DOCKER"]
	if !ok {
		docker = DefaultDocker
	}

	cargoHome, ok := lookup["CARGO_HOME"]
	if !ok {
		cargoHome = DefaultCargoHome()
	}

	var env []string
	value, ok := lookup["TERM"]
	if !ok {
		value = "xterm-256color"
	}
	env = append(env, fmt.Sprintf("TERM=%s", value))
	env = append(env, extraEnv...)

	return Config{
		Image:        ImageName(image),
		Volume:       VolumeName(volume),
		Docker:       docker,
		RunName:      RunName,
		CargoHome:    cargoHome,
		ContextDir:   contextDir,
		StopTimeout:  DefaultStopTimeout,
		TTYRetries:   DefaultTTYRetries,
		RetryDelay:   DefaultRetryDelay,
		DrainTimeout: DefaultDrainTimeout,
		NoBuild:      noBuild,
		NoCache:      noCache,
		Args:         Command(fs.Args()),
		Env:          Environment(env),
		Volumes:      volumes,
	}
}
