// Package quire is the composition root for quire, a versioned store for
// notebook documents.
//
// Every notebook is a JSON file kept in its own directory together with a
// private git history:
//
//	<root>/repos/<owner>/<collection>/<name>/<name>.bkr
//	<root>/repos/<owner>/<collection>/<name>/.git
//
// Creating a notebook writes the file and records a root commit. Every
// update records one more commit whose parent is the previous head, so the
// history of a notebook is always a single linear chain. Listing a
// collection reports each notebook's name, modification time and number of
// revisions.
//
// Usage:
//
//	svc, err := quire.New("./data", quire.WithLogger(logger))
//
//	key := quire.Key{OwnerID: "42", CollectionID: "7", Name: "intro"}
//	doc, err := svc.Create(ctx, quire.Document{Key: key, Data: map[string]any{"cells": []any{}}})
//	rev, err := svc.Update(ctx, key, map[string]any{"cells": []any{"x = 1"}})
//
// For type-safe access wrap the service with NewStore.
package quire
