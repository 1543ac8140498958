package fs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCache(t *testing.T) {
	c, err := newCountCache(2)
	require.NoError(t, err)

	now := time.Now()

	t.Run("Miss When Empty", func(t *testing.T) {
		_, ok := c.Get("a.bkr", now)
		assert.False(t, ok)
	})

	t.Run("Hit When Fresh", func(t *testing.T) {
		c.Set("a.bkr", now, 3)
		n, ok := c.Get("a.bkr", now)
		require.True(t, ok)
		assert.Equal(t, 3, n)
	})

	t.Run("Miss When Stale", func(t *testing.T) {
		_, ok := c.Get("a.bkr", now.Add(time.Second))
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Delete("a.bkr")
		_, ok := c.Get("a.bkr", now)
		assert.False(t, ok)
	})

	t.Run("Evicts Least Recently Used", func(t *testing.T) {
		c.Set("x.bkr", now, 1)
		c.Set("y.bkr", now, 1)
		c.Set("z.bkr", now, 1)
		assert.Equal(t, 2, c.Len())
		_, ok := c.Get("x.bkr", now)
		assert.False(t, ok)
	})
}

func TestCountCache_DefaultSize(t *testing.T) {
	c, err := newCountCache(0)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}
