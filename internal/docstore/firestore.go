package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts the Firestore client to the Store contract.
// Document ids, full-replace sets, partial updates, FieldFilter-style
// queries and write batches all map one to one.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Collection(name string) Collection {
	return &fsCollection{ref: s.client.Collection(name)}
}

func (s *FirestoreStore) Batch() Batch {
	return &fsBatch{client: s.client, batch: s.client.Batch()}
}

type fsCollection struct {
	ref *firestore.CollectionRef
}

func (c *fsCollection) Get(ctx context.Context, id string) (map[string]any, error) {
	snap, err := c.ref.Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError("get", err)
	}
	return snap.Data(), nil
}

func (c *fsCollection) Set(ctx context.Context, id string, data map[string]any) error {
	if _, err := c.ref.Doc(id).Set(ctx, data); err != nil {
		return mapError("set", err)
	}
	return nil
}

func (c *fsCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := c.ref.Doc(id).Update(ctx, updates); err != nil {
		return mapError("update", err)
	}
	return nil
}

func (c *fsCollection) Delete(ctx context.Context, id string) error {
	if _, err := c.ref.Doc(id).Delete(ctx); err != nil {
		return mapError("delete", err)
	}
	return nil
}

func (c *fsCollection) Query() Query {
	return &fsQuery{q: c.ref.Query}
}

type fsQuery struct {
	q firestore.Query
}

func (q *fsQuery) Where(field, op string, value any) Query {
	return &fsQuery{q: q.q.Where(field, op, value)}
}

func (q *fsQuery) Limit(n int) Query {
	return &fsQuery{q: q.q.Limit(n)}
}

func (q *fsQuery) Documents(ctx context.Context) Iterator {
	return &fsIterator{iter: q.q.Documents(ctx)}
}

type fsIterator struct {
	iter *firestore.DocumentIterator
}

func (it *fsIterator) Next() (Snapshot, error) {
	snap, err := it.iter.Next()
	if err == iterator.Done {
		return Snapshot{}, Done
	}
	if err != nil {
		return Snapshot{}, mapError("stream", err)
	}
	return Snapshot{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (it *fsIterator) Stop() {
	it.iter.Stop()
}

type fsBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
}

func (b *fsBatch) Set(collection, id string, data map[string]any) Batch {
	b.batch.Set(b.client.Collection(collection).Doc(id), data)
	return b
}

func (b *fsBatch) Update(collection, id string, fields map[string]any) Batch {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	b.batch.Update(b.client.Collection(collection).Doc(id), updates)
	return b
}

func (b *fsBatch) Delete(collection, id string) Batch {
	b.batch.Delete(b.client.Collection(collection).Doc(id))
	return b
}

func (b *fsBatch) Commit(ctx context.Context) error {
	if _, err := b.batch.Commit(ctx); err != nil {
		return mapError("batch commit", err)
	}
	return nil
}

func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	default:
		return fmt.Errorf("firestore %s: %w", op, err)
	}
}
