package typed

import (
	"context"
	"fmt"

	"github.com/aretw0/quire/pkg/core"
)

// Store wraps a core.Service to provide type-safe access to one kind of notebook.
type Store[T any] struct {
	svc *core.Service
}

// NewStore creates a typed store over an existing service.
func NewStore[T any](svc *core.Service) *Store[T] {
	return &Store[T]{svc: svc}
}

// Save persists a notebook with create-or-update semantics and records the
// resulting head revision on it.
func (s *Store[T]) Save(ctx context.Context, nb *Notebook[T]) error {
	v, err := toValue(nb.Data)
	if err != nil {
		return err
	}
	if nb.Saver == nil {
		nb.Saver = s
	}

	out, err := s.svc.Create(ctx, core.Document{Key: nb.Key, Data: v})
	if err != nil {
		return err
	}
	nb.Revision = out.Revision
	return nil
}

// Update commits new data on top of a notebook that must already exist.
func (s *Store[T]) Update(ctx context.Context, nb *Notebook[T]) error {
	v, err := toValue(nb.Data)
	if err != nil {
		return err
	}

	rev, err := s.svc.Update(ctx, nb.Key, v)
	if err != nil {
		return err
	}
	nb.Revision = rev
	return nil
}

// Load retrieves a notebook and decodes its data into T.
func (s *Store[T]) Load(ctx context.Context, key core.Key) (*Notebook[T], error) {
	doc, err := s.svc.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := fromValue[T](doc.Data)
	if err != nil {
		return nil, fmt.Errorf("notebook %s: %w", key, err)
	}
	return &Notebook[T]{Key: key, Data: data, Revision: doc.Revision, Saver: s}, nil
}

// List returns the summaries of a collection.
func (s *Store[T]) List(ctx context.Context, ownerID, collectionID string) ([]core.Summary, error) {
	return s.svc.List(ctx, ownerID, collectionID)
}
