package fs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Run("Creates Missing Directories", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "a", "b", "test.bkr")

		outcome, err := writeFile(filename, ModeCreateExclusive, []byte("hello"), 0644)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("Exclusive Create Reports Existing Target", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "test.bkr")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))

		outcome, err := writeFile(filename, ModeCreateExclusive, []byte("second"), 0644)
		require.NoError(t, err)
		assert.Equal(t, OutcomeExisted, outcome)

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "initial", string(got), "existing content must be untouched")
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "test.bkr")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))

		outcome, err := writeFile(filename, ModeOverwrite, []byte("overwritten"), 0644)
		require.NoError(t, err)
		assert.Equal(t, OutcomeOverwritten, outcome)

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Overwrite Tolerates Missing Target", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "new.bkr")

		_, err := writeFile(filename, ModeOverwrite, []byte("fresh"), 0644)
		require.NoError(t, err)
		assert.FileExists(t, filename)
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "test.bkr")

		_, err := writeFile(filename, ModeCreateExclusive, []byte("1"), 0644)
		require.NoError(t, err)
		_, err = writeFile(filename, ModeCreateExclusive, []byte("2"), 0644)
		require.NoError(t, err)
		_, err = writeFile(filename, ModeOverwrite, []byte("3"), 0644)
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover temp file %s", e.Name())
		}
		assert.Len(t, entries, 1)
	})

	t.Run("Exactly One Exclusive Winner", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "race.bkr")

		const writers = 8
		outcomes := make([]WriteOutcome, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				o, err := writeFile(filename, ModeCreateExclusive, []byte{byte('a' + i)}, 0644)
				if err != nil {
					t.Errorf("writer %d: %v", i, err)
				}
				outcomes[i] = o
			}(i)
		}
		wg.Wait()

		created := 0
		for _, o := range outcomes {
			if o == OutcomeCreated {
				created++
			}
		}
		assert.Equal(t, 1, created)
	})
}

func TestWriteOutcome_String(t *testing.T) {
	assert.Equal(t, "created", OutcomeCreated.String())
	assert.Equal(t, "existed", OutcomeExisted.String())
	assert.Equal(t, "overwritten", OutcomeOverwritten.String())
}
