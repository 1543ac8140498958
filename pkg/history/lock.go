package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LockFile is the name of the per-notebook lock file, created next to the blob.
const LockFile = ".quire.lock"

// StaleLockAge is how old a lock file must be before it is considered left
// behind by a dead process and broken. Writes hold the lock for milliseconds.
var StaleLockAge = time.Minute

const lockRetryInterval = 10 * time.Millisecond

// Lock acquires the file-based lock of a notebook directory. It blocks until
// the lock is acquired or ctx is done. The directory must exist.
//
// The lock file holds the PID of its owner. A lock older than StaleLockAge is
// removed and acquisition retried.
func Lock(ctx context.Context, dir string) (func(), error) {
	path := filepath.Join(dir, LockFile)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0666)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			f.Close()
			return func() {
				os.Remove(path)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		if breakStale(path) {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", dir, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

// breakStale removes the lock at path if it is older than StaleLockAge.
func breakStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Released between our attempt and the stat.
		return os.IsNotExist(err)
	}
	if time.Since(info.ModTime()) < StaleLockAge {
		return false
	}

	owner, _ := os.ReadFile(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false
	}
	slog.Warn("broke stale lock", "path", path, "owner_pid", string(owner), "age", time.Since(info.ModTime()).String())
	return true
}

// Lock acquires the lock of this history's directory.
func (h *History) Lock(ctx context.Context) (func(), error) {
	return Lock(ctx, h.dir)
}
