package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "quire-tmp-"
)

// WriteMode selects how writeFile treats an existing target.
type WriteMode int

const (
	// ModeCreateExclusive never replaces an existing target.
	ModeCreateExclusive WriteMode = iota
	// ModeOverwrite replaces the target unconditionally.
	ModeOverwrite
)

// WriteOutcome tells the caller which path a write took.
type WriteOutcome int

const (
	OutcomeCreated WriteOutcome = iota
	OutcomeExisted
	OutcomeOverwritten
)

func (o WriteOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeExisted:
		return "existed"
	case OutcomeOverwritten:
		return "overwritten"
	default:
		return "unknown"
	}
}

// writeFile writes data to filename, creating missing parent directories.
// The content is first written to a temp file in the same directory, so the
// target is always either absent or complete.
//
// In ModeCreateExclusive the temp file is hard-linked into place, which fails
// if the target exists; that case is reported as OutcomeExisted, not as an error.
func writeFile(filename string, mode WriteMode, data []byte, perm os.FileMode) (WriteOutcome, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	tmpName, err := writeTemp(dir, data, perm)
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmpName)

	switch mode {
	case ModeCreateExclusive:
		if err := os.Link(tmpName, filename); err != nil {
			if errors.Is(err, iofs.ErrExist) {
				return OutcomeExisted, nil
			}
			return 0, fmt.Errorf("failed to create %s: %w", filename, err)
		}
		return OutcomeCreated, nil

	case ModeOverwrite:
		if err := os.Rename(tmpName, filename); err != nil {
			return 0, fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
		}
		return OutcomeOverwritten, nil

	default:
		return 0, fmt.Errorf("unknown write mode %d", mode)
	}
}

func writeTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmpFile.Name()

	fail := func(err error) (string, error) {
		tmpFile.Close()
		os.Remove(name)
		return "", err
	}

	if _, err := tmpFile.Write(data); err != nil {
		return fail(fmt.Errorf("failed to write to temp file: %w", err))
	}
	if err := tmpFile.Sync(); err != nil {
		return fail(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to chmod temp file: %w", err)
	}
	return name, nil
}
