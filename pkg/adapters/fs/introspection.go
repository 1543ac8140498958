package fs

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/layout"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Root            string `json:"root"`
	Extension       string `json:"extension"`
	CacheSize       int    `json:"cache_size"`
	ListConcurrency int    `json:"list_concurrency"`
	ReadOnly        bool   `json:"read_only"`
	Strict          bool   `json:"strict"`
	ActiveWatchers  int    `json:"active_watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Root:            r.Root,
		Extension:       layout.Extension,
		CacheSize:       r.cache.Len(),
		ListConcurrency: r.config.ListConcurrency,
		ReadOnly:        r.config.ReadOnly,
		Strict:          r.config.Strict,
		ActiveWatchers:  r.watchers,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
