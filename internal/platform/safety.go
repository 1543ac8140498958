package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// SandboxDir is the directory under os.TempDir that sandboxed stores live in.
const SandboxDir = "quire-dev"

// IsDevRun reports whether the process is a `go run` or `go test` binary.
// Both are built into temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveRoot returns the directory a store should use. With forceTemp the
// root is moved under os.TempDir unless it already lives there.
func ResolveRoot(root string, forceTemp bool) string {
	if root == "" {
		root = "."
	}
	if !forceTemp {
		return root
	}

	clean := filepath.Clean(root)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), SandboxDir, name)
}
