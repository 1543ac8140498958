package core

import "context"

// Repository defines the contract for storing and retrieving notebooks.
// Adhering to this interface keeps the Service independent of the
// underlying storage and history engine.
type Repository interface {
	// Create persists a new document. If the document already exists the
	// call degrades to Update with the same key and data.
	Create(ctx context.Context, doc Document) (Document, error)

	// Update writes new data for an existing document and commits it on top
	// of the current head. It returns the new head revision id.
	Update(ctx context.Context, key Key, data any) (string, error)

	// Load retrieves a document's current data.
	Load(ctx context.Context, key Key) (Document, error)

	// List returns one summary per document of a collection.
	List(ctx context.Context, ownerID, collectionID string) ([]Summary, error)

	// MatchingCollectionIDs returns the distinct collection ids of an owner
	// holding at least one document whose name contains term (case-insensitive).
	MatchingCollectionIDs(ctx context.Context, ownerID, term string) ([]string, error)
}

// Historian is implemented by repositories that expose revision logs.
type Historian interface {
	History(ctx context.Context, key Key) ([]Revision, error)
}

// Watchable defines an interface for repositories that can report changes.
type Watchable interface {
	Watch(ctx context.Context, ownerID, collectionID string) (<-chan Event, error)
}
