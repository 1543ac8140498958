package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Service handles the business logic for notebooks.
type Service struct {
	repo   Repository
	logger *slog.Logger

	mu    sync.RWMutex
	saves int
}

// NewService creates a new Service. A nil logger discards output.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// Create saves a new notebook, or updates it when it already exists.
func (s *Service) Create(ctx context.Context, doc Document) (Document, error) {
	if err := doc.Key.Validate(); err != nil {
		return Document{}, err
	}
	if doc.Data == nil && doc.SourcePath == "" {
		return Document{}, ErrInvalidFormat
	}

	out, err := s.repo.Create(ctx, doc)
	if err != nil {
		return Document{}, err
	}
	s.recordSave()
	s.logger.Debug("notebook saved", "key", doc.Key.String(), "revision", out.Revision)
	return out, nil
}

// Update commits new data on top of an existing notebook.
func (s *Service) Update(ctx context.Context, key Key, data any) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	if data == nil {
		return "", ErrInvalidFormat
	}

	rev, err := s.repo.Update(ctx, key, data)
	if err != nil {
		return "", err
	}
	s.recordSave()
	s.logger.Debug("notebook updated", "key", key.String(), "revision", rev)
	return rev, nil
}

// Save is the record-level entry point: overrides are merged into the record,
// the record is persisted with create-or-update semantics and the resulting
// head revision is written back into it.
func (s *Service) Save(ctx context.Context, rec *Record, overrides Attributes) (Document, error) {
	if rec == nil {
		return Document{}, errors.New("record is nil")
	}
	rec.Merge(overrides)

	doc := Document{
		Key:        rec.Key(),
		Data:       rec.Get(AttrData),
		SourcePath: rec.String(AttrPath),
	}

	out, err := s.Create(ctx, doc)
	if err != nil {
		return Document{}, err
	}
	rec.Set(AttrRevision, out.Revision)
	return out, nil
}

// Load retrieves a notebook.
func (s *Service) Load(ctx context.Context, key Key) (Document, error) {
	if err := key.Validate(); err != nil {
		return Document{}, err
	}
	return s.repo.Load(ctx, key)
}

// List retrieves the summaries of every notebook in a collection.
func (s *Service) List(ctx context.Context, ownerID, collectionID string) ([]Summary, error) {
	if err := ValidateToken("owner id", ownerID); err != nil {
		return nil, err
	}
	if err := ValidateToken("collection id", collectionID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ownerID, collectionID)
}

// MatchingCollectionIDs searches an owner's notebooks by name.
func (s *Service) MatchingCollectionIDs(ctx context.Context, ownerID, term string) ([]string, error) {
	if err := ValidateToken("owner id", ownerID); err != nil {
		return nil, err
	}
	return s.repo.MatchingCollectionIDs(ctx, ownerID, term)
}

// History returns the revision log of a notebook if the repository keeps one.
func (s *Service) History(ctx context.Context, key Key) ([]Revision, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	h, ok := s.repo.(Historian)
	if !ok {
		return nil, errors.New("repository does not expose history")
	}
	return h.History(ctx, key)
}

// Watch observes changes in a collection if supported.
func (s *Service) Watch(ctx context.Context, ownerID, collectionID string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	if err := ValidateToken("owner id", ownerID); err != nil {
		return nil, err
	}
	if err := ValidateToken("collection id", collectionID); err != nil {
		return nil, err
	}
	return w.Watch(ctx, ownerID, collectionID)
}

func (s *Service) recordSave() {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
}
