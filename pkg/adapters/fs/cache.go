package fs

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of notebooks whose commit counts are memoized.
const DefaultCacheSize = 1024

// countEntry is the memoized commit count of one notebook blob.
type countEntry struct {
	LastModified time.Time
	NumCommits   int
}

// countCache memoizes commit counts keyed by blob path. An entry is only
// trusted while the blob's mtime is unchanged.
type countCache struct {
	entries *lru.Cache[string, countEntry]
}

func newCountCache(size int) (*countCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, countEntry](size)
	if err != nil {
		return nil, err
	}
	return &countCache{entries: entries}, nil
}

// Get returns the cached count if it is fresh for mtime.
func (c *countCache) Get(path string, mtime time.Time) (int, bool) {
	entry, ok := c.entries.Get(path)
	if !ok || !entry.LastModified.Equal(mtime) {
		return 0, false
	}
	return entry.NumCommits, true
}

// Set records the count observed for path at mtime.
func (c *countCache) Set(path string, mtime time.Time, numCommits int) {
	c.entries.Add(path, countEntry{LastModified: mtime, NumCommits: numCommits})
}

// Delete drops the entry of path; called after every commit.
func (c *countCache) Delete(path string) {
	c.entries.Remove(path)
}

// Len returns the number of entries in the cache.
func (c *countCache) Len() int {
	return c.entries.Len()
}
