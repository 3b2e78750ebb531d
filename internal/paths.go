package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// LauncherDir returns the directory containing the running executable, with
// symlinks resolved. This is the image build context: the Dockerfile ships
// beside the installed binary, the same way the original launcher kept its
// Dockerfile beside the script, so the result must be stable however the
// binary was invoked (relative path, PATH lookup, symlink).
func LauncherDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve the executable path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlinks in %q: %w", exe, err)
	}

	return filepath.Dir(resolved), nil
}

// ProjectsDir returns the grandparent of the launcher directory, the root
// assumed to hold the sibling checkouts (reth, alloy).
func ProjectsDir(launcherDir string) string {
	return filepath.Dir(filepath.Dir(launcherDir))
}

// DefaultCargoHome returns the host cargo root used when CARGO_HOME is unset.
// Cargo itself defaults to ~/.cargo, so the launcher mirrors that.
func DefaultCargoHome() string {
	return filepath.Join(xdg.Home, ".cargo")
}
