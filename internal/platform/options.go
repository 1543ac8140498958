package platform

import (
	"log/slog"

	"github.com/aretw0/quire/pkg/core"
)

// options holds the internal configuration for the quire service.
type options struct {
	repository      core.Repository
	logger          *slog.Logger
	authorName      string
	authorEmail     string
	listConcurrency int
	cacheSize       int
	strict          bool
	readOnly        bool
	sandbox         bool
}

// Option defines a functional option for configuring quire.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service and its repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom storage adapter (e.g. a mock).
// If provided, the filesystem adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAuthor sets the identity recorded on every commit.
func WithAuthor(name, email string) Option {
	return func(o *options) {
		o.authorName = name
		o.authorEmail = email
	}
}

// WithListConcurrency bounds the parallel history lookups done by List.
// Zero means GOMAXPROCS.
func WithListConcurrency(n int) Option {
	return func(o *options) {
		o.listConcurrency = n
	}
}

// WithCacheSize sets how many commit counts are memoized between listings.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithStrict decodes JSON numbers as json.Number to keep large integers intact.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithSandbox re-roots the store into a temporary directory when the process
// runs through `go run` or `go test`. Read-only stores are never re-rooted.
func WithSandbox(enabled bool) Option {
	return func(o *options) {
		o.sandbox = enabled
	}
}
