package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/quire/pkg/layout"
)

// ErrRootNotFound is returned by FindRoot when no store is found.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a store root: a directory holding
// a config file or the repos directory. It returns the absolute path.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if hasFile(dir, ConfigFile) || hasFile(dir, layout.ReposDir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
