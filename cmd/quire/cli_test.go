package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/history"
)

// run executes the command line in-process and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "quire %s", strings.Join(args, " "))
	return out
}

func blobPath(root, owner, collection, name string) string {
	return filepath.Join(root, "repos", owner, collection, name, name+".bkr")
}

func TestCLI_Workflow(t *testing.T) {
	root := t.TempDir()

	out := mustRun(t, "--root", root, "create", "1", "2", "foo", "--data", `{"cells": []}`)
	assert.Contains(t, out, "Notebook '1/2/foo' saved at revision")
	assert.Contains(t, out, "(1 revisions)")
	assert.FileExists(t, blobPath(root, "1", "2", "foo"))

	out = mustRun(t, "--root", root, "update", "1", "2", "foo", "--data", `{"cells": ["x"]}`, "-m", "add cell")
	assert.Contains(t, out, "Notebook '1/2/foo' committed at revision")

	t.Run("Load", func(t *testing.T) {
		out := mustRun(t, "--root", root, "load", "1", "2", "foo")
		assert.Equal(t, "{\n    \"cells\": [\n        \"x\"\n    ]\n}\n", out)
	})

	t.Run("List", func(t *testing.T) {
		out := mustRun(t, "--root", root, "list", "1", "2")
		fields := strings.Split(strings.TrimSpace(out), "\t")
		require.Len(t, fields, 3)
		assert.Equal(t, "foo", fields[0])
		assert.Equal(t, "2", fields[2])
	})

	t.Run("List JSON", func(t *testing.T) {
		out := mustRun(t, "--root", root, "list", "1", "2", "--json")
		var summaries []core.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &summaries))
		require.Len(t, summaries, 1)
		assert.Equal(t, "foo", summaries[0].Name)
		assert.Equal(t, 2, summaries[0].NumCommits)
	})

	t.Run("Search", func(t *testing.T) {
		mustRun(t, "--root", root, "create", "1", "5", "food", "--data", `1`)
		assert.Equal(t, "2\n5\n", mustRun(t, "--root", root, "search", "1", "FOO"))
		assert.Empty(t, mustRun(t, "--root", root, "search", "1", "bar"))
	})

	t.Run("Log", func(t *testing.T) {
		out := mustRun(t, "--root", root, "log", "1", "2", "foo")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasSuffix(lines[0], "add cell"), lines[0])
		assert.True(t, strings.HasSuffix(lines[1], "create foo"), lines[1])
		assert.Contains(t, lines[1], history.DefaultAuthorName)
	})
}

func TestCLI_CreateFromFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "upload.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"cells": [{"type": "code"}]}`), 0644))

	mustRun(t, "--root", root, "create", "1", "2", "upload", "--file", src)

	out := mustRun(t, "--root", root, "load", "1", "2", "upload")
	assert.Contains(t, out, `"type": "code"`)
}

func TestCLI_Errors(t *testing.T) {
	root := t.TempDir()

	t.Run("Missing Data", func(t *testing.T) {
		_, err := run(t, "--root", root, "create", "1", "2", "foo")
		assert.Error(t, err)
	})

	t.Run("Both Data And File", func(t *testing.T) {
		_, err := run(t, "--root", root, "create", "1", "2", "foo", "--data", "1", "--file", "x.json")
		assert.Error(t, err)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := run(t, "--root", root, "create", "1", "2", "foo", "--data", "{")
		assert.Error(t, err)
		assert.NoFileExists(t, blobPath(root, "1", "2", "foo"))
	})

	t.Run("Update Never Created", func(t *testing.T) {
		_, err := run(t, "--root", root, "update", "1", "2", "ghost", "--data", "1")
		assert.ErrorIs(t, err, core.ErrNoHistory)
	})

	t.Run("Invalid Key", func(t *testing.T) {
		_, err := run(t, "--root", root, "load", "1", "..", "foo")
		assert.ErrorIs(t, err, core.ErrInvalidKey)
	})

	t.Run("Wrong Arity", func(t *testing.T) {
		_, err := run(t, "--root", root, "list", "1")
		assert.Error(t, err)
	})
}

func TestCLI_ReadOnly(t *testing.T) {
	root := t.TempDir()
	mustRun(t, "--root", root, "create", "1", "2", "foo", "--data", "1")

	_, err := run(t, "--root", root, "--read-only", "update", "1", "2", "foo", "--data", "2")
	assert.ErrorIs(t, err, core.ErrReadOnly)

	out := mustRun(t, "--root", root, "--read-only", "load", "1", "2", "foo")
	assert.Equal(t, "1\n", out)
}

func TestCLI_Timeout(t *testing.T) {
	root := t.TempDir()
	mustRun(t, "--root", root, "create", "1", "2", "foo", "--data", "1")

	// Another writer holds the notebook.
	lock := filepath.Join(root, "repos", "1", "2", "foo", history.LockFile)
	require.NoError(t, os.WriteFile(lock, nil, 0666))

	_, err := run(t, "--root", root, "--timeout", "50ms", "update", "1", "2", "foo", "--data", "2")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCLI_ConfigDiscovery(t *testing.T) {
	base := t.TempDir()
	config := "root: data\nauthor:\n  name: ci\n  email: ci@example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, platform.ConfigFile), []byte(config), 0644))
	nested := filepath.Join(base, "notes", "drafts")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Chdir(nested)
	mustRun(t, "create", "1", "2", "foo", "--data", "1")

	assert.FileExists(t, blobPath(filepath.Join(base, "data"), "1", "2", "foo"))

	out := mustRun(t, "log", "1", "2", "foo")
	assert.Contains(t, out, " ci ")
}

func TestCLI_ExplicitConfigAndRoot(t *testing.T) {
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "custom.yaml")
	config := "root: from-config\nauthor:\n  name: configured\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(config), 0644))

	t.Run("Config Root", func(t *testing.T) {
		mustRun(t, "--config", cfgPath, "create", "1", "2", "foo", "--data", "1")
		assert.FileExists(t, blobPath(filepath.Join(cfgDir, "from-config"), "1", "2", "foo"))
	})

	t.Run("Root Flag Wins", func(t *testing.T) {
		root := t.TempDir()
		mustRun(t, "--config", cfgPath, "--root", root, "create", "1", "2", "bar", "--data", "1")
		assert.FileExists(t, blobPath(root, "1", "2", "bar"))

		out := mustRun(t, "--root", root, "--config", cfgPath, "log", "1", "2", "bar")
		assert.Contains(t, out, " configured ")
	})
}

func TestCLI_WorkingDirectoryFallback(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	mustRun(t, "create", "1", "2", "foo", "--data", "1")
	assert.FileExists(t, filepath.Join("repos", "1", "2", "foo", "foo.bkr"))

	// The store is now discovered through its repos directory.
	require.NoError(t, os.MkdirAll("sub", 0755))
	t.Chdir(filepath.Join(dir, "sub"))
	out := mustRun(t, "list", "1", "2")
	assert.True(t, strings.HasPrefix(out, "foo\t"), out)
}

func TestCLI_Version(t *testing.T) {
	out := mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "quire version "), out)
}
