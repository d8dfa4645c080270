package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is a thread-safe in-memory Store with the same filter
// semantics as the Firestore adapter. Iteration order is deterministic
// (ascending document id) so tests are stable.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> fields
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]map[string]map[string]any)}
}

func (m *MemStore) Collection(name string) Collection {
	return &memCollection{store: m, name: name}
}

func (m *MemStore) Batch() Batch {
	return &memBatch{store: m}
}

// Len reports the number of documents in a collection. Test helper.
func (m *MemStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

func (m *MemStore) set(collection, id string, data map[string]any) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	m.data[collection][id] = copyDoc(data)
}

func (m *MemStore) update(collection, id string, fields map[string]any) error {
	doc, ok := m.data[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	for k, v := range fields {
		doc[k] = copyValue(v)
	}
	return nil
}

type memCollection struct {
	store *MemStore
	name  string
}

func (c *memCollection) Get(ctx context.Context, id string) (map[string]any, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	doc, ok := c.store.data[c.name][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c.name, id)
	}
	return copyDoc(doc), nil
}

func (c *memCollection) Set(ctx context.Context, id string, data map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.set(c.name, id, data)
	return nil
}

func (c *memCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.store.update(c.name, id, fields)
}

func (c *memCollection) Delete(ctx context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	delete(c.store.data[c.name], id)
	return nil
}

func (c *memCollection) Query() Query {
	return &memQuery{coll: c, limit: -1}
}

type memFilter struct {
	field string
	op    string
	value any
}

type memQuery struct {
	coll    *memCollection
	filters []memFilter
	limit   int
}

func (q *memQuery) Where(field, op string, value any) Query {
	next := &memQuery{coll: q.coll, limit: q.limit}
	next.filters = append(append(next.filters, q.filters...), memFilter{field: field, op: op, value: value})
	return next
}

func (q *memQuery) Limit(n int) Query {
	return &memQuery{coll: q.coll, filters: q.filters, limit: n}
}

func (q *memQuery) Documents(ctx context.Context) Iterator {
	q.coll.store.mu.RLock()
	defer q.coll.store.mu.RUnlock()

	ids := make([]string, 0, len(q.coll.store.data[q.coll.name]))
	for id := range q.coll.store.data[q.coll.name] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Snapshot
	for _, id := range ids {
		doc := q.coll.store.data[q.coll.name][id]
		if !q.matches(doc) {
			continue
		}
		out = append(out, Snapshot{ID: id, Data: copyDoc(doc)})
		if q.limit >= 0 && len(out) >= q.limit {
			break
		}
	}
	return &sliceIterator{docs: out}
}

func (q *memQuery) matches(doc map[string]any) bool {
	for _, f := range q.filters {
		v, ok := doc[f.field]
		if !ok {
			return false
		}
		cmp, comparable := compareValues(v, f.value)
		if !comparable {
			return false
		}
		switch f.op {
		case OpEqual:
			if cmp != 0 {
				return false
			}
		case OpGreaterOrEqual:
			if cmp < 0 {
				return false
			}
		case OpLessOrEqual:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type sliceIterator struct {
	docs []Snapshot
	pos  int
}

func (it *sliceIterator) Next() (Snapshot, error) {
	if it.pos >= len(it.docs) {
		return Snapshot{}, Done
	}
	snap := it.docs[it.pos]
	it.pos++
	return snap, nil
}

func (it *sliceIterator) Stop() {}

type memOp struct {
	kind       string // "set", "update", "delete"
	collection string
	id         string
	data       map[string]any
}

type memBatch struct {
	store *MemStore
	ops   []memOp
}

func (b *memBatch) Set(collection, id string, data map[string]any) Batch {
	b.ops = append(b.ops, memOp{kind: "set", collection: collection, id: id, data: copyDoc(data)})
	return b
}

func (b *memBatch) Update(collection, id string, fields map[string]any) Batch {
	b.ops = append(b.ops, memOp{kind: "update", collection: collection, id: id, data: copyDoc(fields)})
	return b
}

func (b *memBatch) Delete(collection, id string) Batch {
	b.ops = append(b.ops, memOp{kind: "delete", collection: collection, id: id})
	return b
}

// Commit applies all staged writes under one lock. Update of a missing
// document fails the whole batch with nothing applied.
func (b *memBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, op := range b.ops {
		if op.kind != "update" {
			continue
		}
		if _, ok := b.store.data[op.collection][op.id]; !ok {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, op.collection, op.id)
		}
	}
	for _, op := range b.ops {
		switch op.kind {
		case "set":
			b.store.set(op.collection, op.id, op.data)
		case "update":
			_ = b.store.update(op.collection, op.id, op.data)
		case "delete":
			delete(b.store.data[op.collection], op.id)
		}
	}
	b.ops = nil
	return nil
}

// compareValues orders two field values of the same kind. Numbers are
// normalized to float64; strings and bools compare directly.
func compareValues(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		return 1, true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		return copyDoc(vv)
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = copyValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(vv))
		for i, e := range vv {
			out[i] = copyDoc(e)
		}
		return out
	default:
		return v
	}
}
