// Package typed offers a generic view over notebook data: callers work with
// their own Go types and the store converts them to and from JSON values.
package typed

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/aretw0/quire/pkg/core"
)

// Notebook wraps a core.Document with a typed Data field.
type Notebook[T any] struct {
	Key      core.Key
	Data     T
	Revision string
	Saver    Saver[T] // active record reference
}

// Saver persists typed notebooks. It keeps Notebook decoupled from Store.
type Saver[T any] interface {
	Save(ctx context.Context, nb *Notebook[T]) error
}

// Save persists the notebook using the attached saver.
func (n *Notebook[T]) Save(ctx context.Context) error {
	if n.Saver == nil {
		return fmt.Errorf("notebook %s is detached (missing Saver)", n.Key)
	}
	return n.Saver.Save(ctx, n)
}

// toValue turns a typed value into the generic JSON shape the store writes.
func toValue[T any](data T) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to convert typed data: %w", err)
	}
	return v, nil
}

func fromValue[T any](v any) (T, error) {
	var data T
	raw, err := json.Marshal(v)
	if err != nil {
		return data, fmt.Errorf("data marshal failed: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return data, nil
}
