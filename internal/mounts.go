package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ContainerProjectsDir is where the reth checkout and its siblings land
	// inside the container. Both checkouts share a parent so that relative
	// path dependencies (reth patching in ../alloy) keep resolving.
	ContainerProjectsDir = "/projects"

	// ContainerCargoHome is CARGO_HOME inside the container, matching the
	// official rust images. The host registry and git caches are bound
	// underneath it.
	ContainerCargoHome = "/usr/local/cargo"
)

// MountPlan is the full set of binds for one build container run, assembled
// once from the resolved configuration and the projects directory.
type MountPlan struct {
	Binds      []string
	WorkingDir string

	RethDir  string
	AlloyDir string
}

// PlanMounts computes the bind specifications for the build container: the
// reth checkout read-write, the cargo registry and git caches read-write, the
// named target volume read-write, and the alloy checkout read-only. Any
// --volume extras are appended last so they can shadow the defaults.
func PlanMounts(config Config, projectsDir string) MountPlan {
	rethDir := filepath.Join(projectsDir, "reth")
	alloyDir := filepath.Join(projectsDir, "alloy")

	binds := []string{
		fmt.Sprintf("%s:%s/reth", rethDir, ContainerProjectsDir),
		fmt.Sprintf("%s:%s/registry", filepath.Join(config.CargoHome, "registry"), ContainerCargoHome),
		fmt.Sprintf("%s:%s/git", filepath.Join(config.CargoHome, "git"), ContainerCargoHome),
		fmt.Sprintf("%s:%s/reth/target", config.Volume, ContainerProjectsDir),
		fmt.Sprintf("%s:%s/alloy:ro", alloyDir, ContainerProjectsDir),
	}
	binds = append(binds, config.Volumes...)

	return MountPlan{
		Binds:      binds,
		WorkingDir: ContainerProjectsDir + "/reth",
		RethDir:    rethDir,
		AlloyDir:   alloyDir,
	}
}

// Validate checks that the sibling checkouts exist on the host before any
// engine call is made, so a misplaced launcher fails before the run step
// rather than partway through it.
func (p MountPlan) Validate() error {
	for _, dir := range []string{p.RethDir, p.AlloyDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("missing sibling checkout %q: %w\nThe launcher expects reth and alloy checkouts under %q", dir, err, filepath.Dir(dir))
		}
		if !info.IsDir() {
			return fmt.Errorf("sibling checkout %q is not a directory", dir)
		}
	}

	return nil
}
