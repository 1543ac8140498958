package quire

import (
	"log/slog"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/typed"
)

// --- Types ---

// Key is the composite identity of a notebook.
type Key = core.Key

// Document is a notebook with its derived metadata.
type Document = core.Document

// Summary is one entry of a collection listing.
type Summary = core.Summary

// Notebook is a public alias for the typed notebook model.
type Notebook[T any] = typed.Notebook[T]

// Store is a public alias for the typed store.
type Store[T any] = typed.Store[T]

// --- Configuration ---

// Option defines a functional option for configuring quire.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAuthor sets the identity recorded on every commit.
func WithAuthor(name, email string) Option {
	return platform.WithAuthor(name, email)
}

// WithListConcurrency bounds the parallel lookups done by List.
func WithListConcurrency(n int) Option {
	return platform.WithListConcurrency(n)
}

// WithCacheSize sets how many commit counts are memoized between listings.
func WithCacheSize(n int) Option {
	return platform.WithCacheSize(n)
}

// WithStrict decodes numbers as json.Number.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithSandbox re-roots the store into a temporary directory under `go run` and `go test`.
func WithSandbox(enabled bool) Option {
	return platform.WithSandbox(enabled)
}

// --- Factory ---

// New creates a new quire Service.
func New(root string, opts ...Option) (*core.Service, error) {
	return platform.New(root, opts...)
}

// Open returns the underlying repository without the service layer.
func Open(root string, opts ...Option) (core.Repository, error) {
	return platform.Open(root, opts...)
}

// NewStore creates a type-safe store over an existing service.
func NewStore[T any](svc *core.Service) *typed.Store[T] {
	return typed.NewStore[T](svc)
}

// OpenStore simplifies creating a Store from a root directory.
func OpenStore[T any](root string, opts ...Option) (*typed.Store[T], error) {
	svc, err := New(root, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewStore[T](svc), nil
}

// --- Config & Utils ---

// LoadConfig reads a quire.yaml file.
func LoadConfig(path string) (*platform.FileConfig, error) {
	return platform.LoadConfig(path)
}

// FindRoot looks upwards for a directory holding quire.yaml or a repos directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
