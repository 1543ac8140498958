package platform

import (
	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

// New creates a service over the notebook store rooted at root.
//
//	svc, err := quire.New("./data", quire.WithAuthor("ci", "ci@example.com"))
func New(root string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := open(root, o)
	if err != nil {
		return nil, err
	}
	return core.NewService(repo, o.logger), nil
}

// Open returns the repository New would wrap.
func Open(root string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return open(root, o)
}

func open(root string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	useTemp := o.sandbox && !o.readOnly && IsDevRun()
	resolved := ResolveRoot(root, useTemp)
	if useTemp && o.logger != nil {
		o.logger.Warn("running in sandbox (dev run)", "original_root", root, "resolved_root", resolved)
	}

	return fs.NewRepository(fs.Config{
		Root:            resolved,
		Logger:          o.logger,
		AuthorName:      o.authorName,
		AuthorEmail:     o.authorEmail,
		ListConcurrency: o.listConcurrency,
		CacheSize:       o.cacheSize,
		Strict:          o.strict,
		ReadOnly:        o.readOnly,
	})
}
