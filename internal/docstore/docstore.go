// Package docstore abstracts the document database behind the minimal
// contract the rest of the backend relies on: keyed get/set/update,
// equality-and-range queries with streaming reads, and atomic write
// batches. Firestore backs it in production; MemStore backs tests and
// local development.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a missing document.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrUnavailable reports a transient store failure. Callers may
	// retry where their write paths are idempotent.
	ErrUnavailable = errors.New("docstore: store unavailable")

	// Done is returned by Iterator.Next when no documents remain.
	Done = errors.New("docstore: no more documents")
)

// Supported query operators. No joins, no OR.
const (
	OpEqual          = "=="
	OpGreaterOrEqual = ">="
	OpLessOrEqual    = "<="
)

// Snapshot is one document read from a collection.
type Snapshot struct {
	ID   string
	Data map[string]any
}

// Store is a handle to the document database.
type Store interface {
	Collection(name string) Collection

	// Batch stages writes for a single atomic commit.
	Batch() Batch
}

// Collection exposes keyed access and query building for one named
// collection of documents.
type Collection interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (map[string]any, error)

	// Set writes the document, fully replacing any existing data.
	Set(ctx context.Context, id string, data map[string]any) error

	// Update applies a partial field update atomically. ErrNotFound if
	// the document does not exist.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the document. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, id string) error

	Query() Query
}

// Query accumulates filters; Documents executes it. Implementations
// return a fresh Query from each Where/Limit call so partial queries
// can be shared safely.
type Query interface {
	Where(field, op string, value any) Query
	Limit(n int) Query
	Documents(ctx context.Context) Iterator
}

// Iterator streams query results. Next returns Done after the final
// document. Stop releases resources and is safe to call repeatedly.
type Iterator interface {
	Next() (Snapshot, error)
	Stop()
}

// Batch stages writes across collections for one atomic commit.
type Batch interface {
	Set(collection, id string, data map[string]any) Batch
	Update(collection, id string, fields map[string]any) Batch
	Delete(collection, id string) Batch
	Commit(ctx context.Context) error
}
