package core_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement core.Historian or core.Watchable.
type MockRepository struct {
	docs    map[core.Key]core.Document
	commits map[core.Key]int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		docs:    make(map[core.Key]core.Document),
		commits: make(map[core.Key]int),
	}
}

func (m *MockRepository) Create(ctx context.Context, doc core.Document) (core.Document, error) {
	if _, ok := m.docs[doc.Key]; ok {
		rev, err := m.Update(ctx, doc.Key, doc.Data)
		if err != nil {
			return core.Document{}, err
		}
		doc.Revision = rev
		return doc, nil
	}
	m.docs[doc.Key] = doc
	m.commits[doc.Key] = 1
	doc.Revision = "r1"
	doc.RevisionCount = 1
	return doc, nil
}

func (m *MockRepository) Update(ctx context.Context, key core.Key, data any) (string, error) {
	doc, ok := m.docs[key]
	if !ok {
		return "", core.ErrNoHistory
	}
	doc.Data = data
	m.docs[key] = doc
	m.commits[key]++
	return "r" + strings.Repeat("+", m.commits[key]), nil
}

func (m *MockRepository) Load(ctx context.Context, key core.Key) (core.Document, error) {
	doc, ok := m.docs[key]
	if !ok {
		return core.Document{}, core.ErrNotFound
	}
	return doc, nil
}

func (m *MockRepository) List(ctx context.Context, ownerID, collectionID string) ([]core.Summary, error) {
	var out []core.Summary
	for k := range m.docs {
		if k.OwnerID == ownerID && k.CollectionID == collectionID {
			out = append(out, core.Summary{Name: k.Name, NumCommits: m.commits[k]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) MatchingCollectionIDs(ctx context.Context, ownerID, term string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for k := range m.docs {
		if k.OwnerID == ownerID && strings.Contains(strings.ToLower(k.Name), strings.ToLower(term)) && !seen[k.CollectionID] {
			seen[k.CollectionID] = true
			out = append(out, k.CollectionID)
		}
	}
	return out, nil
}

func TestService_CreateLoad(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	ctx := context.Background()
	key := core.Key{OwnerID: "1", CollectionID: "2", Name: "foo"}

	doc, err := svc.Create(ctx, core.Document{Key: key, Data: map[string]any{"cells": []any{}}})
	require.NoError(t, err)
	assert.Equal(t, "r1", doc.Revision)

	loaded, err := svc.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"cells": []any{}}, loaded.Data)

	list, err := svc.List(ctx, "1", "2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "foo", list[0].Name)
}

func TestService_Validation(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	ctx := context.Background()

	cases := []core.Key{
		{OwnerID: "", CollectionID: "2", Name: "foo"},
		{OwnerID: "1", CollectionID: "a/b", Name: "foo"},
		{OwnerID: "1", CollectionID: "2", Name: ".."},
		{OwnerID: "1", CollectionID: "2", Name: "fo*"},
		{OwnerID: "1", CollectionID: "2", Name: `a\b`},
	}
	for _, key := range cases {
		_, err := svc.Create(ctx, core.Document{Key: key, Data: 1})
		assert.ErrorIs(t, err, core.ErrInvalidKey, "key %+v", key)
	}

	_, err := svc.List(ctx, "1", "")
	assert.ErrorIs(t, err, core.ErrInvalidKey)

	_, err = svc.Create(ctx, core.Document{Key: core.Key{OwnerID: "1", CollectionID: "2", Name: "x"}})
	assert.ErrorIs(t, err, core.ErrInvalidFormat)

	_, err = svc.Update(ctx, core.Key{OwnerID: "1", CollectionID: "2", Name: "x"}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestService_SaveRecord(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	ctx := context.Background()

	rec := core.NewRecord(core.Attributes{
		core.AttrOwnerID:      1,
		core.AttrCollectionID: 2,
		core.AttrName:         "foo",
	})

	_, err := svc.Save(ctx, rec, core.Attributes{core.AttrData: map[string]any{"cells": []any{}}})
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.Get(core.AttrRevision))

	// A second save of the same identity goes through the update path.
	_, err = svc.Save(ctx, rec, core.Attributes{core.AttrData: map[string]any{"cells": []any{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, "r++", rec.Get(core.AttrRevision))

	loaded, err := svc.Load(ctx, core.Key{OwnerID: "1", CollectionID: "2", Name: "foo"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"cells": []any{"x"}}, loaded.Data)

	state := svc.State().(core.ServiceState)
	assert.Equal(t, 2, state.Saves)
	assert.Equal(t, "repository", state.RepositoryType)
}

func TestService_UnsupportedCapabilities(t *testing.T) {
	svc := core.NewService(NewMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.History(ctx, core.Key{OwnerID: "1", CollectionID: "2", Name: "foo"})
	assert.Error(t, err)

	_, err = svc.Watch(ctx, "1", "2")
	assert.Error(t, err)
}

func TestRecord_String(t *testing.T) {
	rec := core.NewRecord(nil)
	assert.Equal(t, "", rec.String("missing"))

	rec.Set("n", 42)
	assert.Equal(t, "42", rec.String("n"))

	attrs := rec.Attributes()
	attrs["n"] = 7
	assert.Equal(t, 42, rec.Get("n"), "Attributes must return a copy")
}
