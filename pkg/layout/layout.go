// Package layout maps notebook identities to their place on disk.
//
// Every notebook lives at
//
//	<root>/repos/<ownerId>/<collectionId>/<name>/<name>.bkr
//
// and the <name> directory is the root of that notebook's revision history.
// Nothing in this package touches the filesystem.
package layout

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/quire/pkg/core"
)

const (
	// Extension is the fixed file extension of notebook blobs.
	Extension = ".bkr"
	// ReposDir is the top-level directory under the root.
	ReposDir = "repos"
)

// Location is the resolved on-disk placement of a notebook.
type Location struct {
	Path string // full path of the blob
	Dir  string // history root, parent of Path
	File string // blob file name, relative to Dir
}

// Resolve computes the location of key under root.
func Resolve(root string, key core.Key) (Location, error) {
	if err := key.Validate(); err != nil {
		return Location{}, err
	}

	file := key.Name + Extension
	dir := filepath.Join(root, ReposDir, key.OwnerID, key.CollectionID, key.Name)
	return Location{
		Path: filepath.Join(dir, file),
		Dir:  dir,
		File: file,
	}, nil
}

// CollectionPattern matches every notebook blob of one collection.
// The pattern is slash separated and relative to root.
func CollectionPattern(ownerID, collectionID string) string {
	return path.Join(ReposDir, ownerID, collectionID, "*", "*"+Extension)
}

// OwnerPattern matches every notebook blob of an owner, across collections.
func OwnerPattern(ownerID string) string {
	return path.Join(ReposDir, ownerID, "**", "*"+Extension)
}

// Parse is the inverse of Resolve for a root-relative, slash separated path.
// Paths that do not follow the fixed layout are rejected.
func Parse(rel string) (core.Key, bool) {
	parts := strings.Split(rel, "/")
	if len(parts) != 5 || parts[0] != ReposDir {
		return core.Key{}, false
	}
	if !strings.HasSuffix(parts[4], Extension) {
		return core.Key{}, false
	}

	key := core.Key{OwnerID: parts[1], CollectionID: parts[2], Name: parts[3]}
	if key.Validate() != nil {
		return core.Key{}, false
	}
	return key, true
}

// NameOf derives the notebook name from a blob path.
func NameOf(p string) string {
	return strings.TrimSuffix(filepath.Base(p), Extension)
}
