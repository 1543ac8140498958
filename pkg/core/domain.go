// Package core holds the domain model of quire: notebook documents, their
// identities, revisions, and the ports the storage adapters implement.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Key is the composite identity of a document.
// Each component ends up as one directory (or file) name on disk.
type Key struct {
	OwnerID      string
	CollectionID string
	Name         string
}

// unsafeChars are rejected in every key component: path separators, NUL and
// glob metacharacters (listing is glob based).
const unsafeChars = "/\\\x00*?[]{}"

// Validate reports whether every component of the key is a safe token.
func (k Key) Validate() error {
	if err := ValidateToken("owner id", k.OwnerID); err != nil {
		return err
	}
	if err := ValidateToken("collection id", k.CollectionID); err != nil {
		return err
	}
	return ValidateToken("name", k.Name)
}

func (k Key) String() string {
	return k.OwnerID + "/" + k.CollectionID + "/" + k.Name
}

// ValidateToken checks a single identity component.
func ValidateToken(field, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalidKey, field)
	case value == "." || value == "..":
		return fmt.Errorf("%w: %s %q is reserved", ErrInvalidKey, field, value)
	case strings.ContainsAny(value, unsafeChars):
		return fmt.Errorf("%w: %s %q contains a path separator or glob character", ErrInvalidKey, field, value)
	}
	return nil
}

// Document is the central entity of the domain: a named JSON value owned by
// (OwnerID, CollectionID) and versioned by its own revision history.
type Document struct {
	Key

	// Data is any JSON-serializable value.
	Data any
	// SourcePath, when set, is read and decoded instead of Data on create.
	SourcePath string

	// Derived fields, filled by the store.
	LastModified  time.Time
	RevisionCount int
	Revision      string
}

// Summary is one entry of a collection listing.
type Summary struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
	NumCommits   int       `json:"numCommits"`
}

// Revision is one commit of a document's history.
type Revision struct {
	ID      string    `json:"id"`
	Parents []string  `json:"parents"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"when"`
}

// EventType represents the type of change observed in a collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
)

// Event represents a change to a document on disk.
type Event struct {
	Type      EventType
	Key       Key
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}

type contextKey string

// ChangeReasonKey is the context key for passing a commit message to Create/Update.
const ChangeReasonKey contextKey = "change_reason"
