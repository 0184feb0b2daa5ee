package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps documents in process. Transactions run one at a time under the store lock,
// which makes them serializable without retries. Used for local runs and tests.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]Fields
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]Fields)}
}

func (m *Memory) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(collection, key)
}

func (m *Memory) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(collection, key, fields, opts)
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data[collection]))
	for k := range m.data[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Document, 0, len(keys))
	for _, k := range keys {
		doc, _, err := m.get(collection, k)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m, pending: make(map[docRef]Fields)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, ref := range tx.order {
		m.put(ref.collection, ref.key, tx.pending[ref])
	}
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) get(collection, key string) (Document, bool, error) {
	f, ok := m.data[collection][key]
	if !ok {
		return Document{}, false, nil
	}
	c, err := cloneFields(f)
	if err != nil {
		return Document{}, false, err
	}
	return Document{Key: key, Fields: c}, true, nil
}

func (m *Memory) set(collection, key string, fields Fields, opts SetOptions) error {
	c, err := cloneFields(fields)
	if err != nil {
		return err
	}
	if cur, ok := m.data[collection][key]; ok && opts.Merge {
		c = mergeFields(cur, c)
	}
	m.put(collection, key, c)
	return nil
}

func (m *Memory) put(collection, key string, f Fields) {
	col, ok := m.data[collection]
	if !ok {
		col = make(map[string]Fields)
		m.data[collection] = col
	}
	col[key] = f
}

type docRef struct{ collection, key string }

type memoryTx struct {
	store   *Memory
	pending map[docRef]Fields
	order   []docRef
}

func (t *memoryTx) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if f, ok := t.pending[docRef{collection, key}]; ok {
		c, err := cloneFields(f)
		if err != nil {
			return Document{}, false, err
		}
		return Document{Key: key, Fields: c}, true, nil
	}
	return t.store.get(collection, key)
}

func (t *memoryTx) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	c, err := cloneFields(fields)
	if err != nil {
		return err
	}
	ref := docRef{collection, key}
	if opts.Merge {
		cur, found, err := t.Get(ctx, collection, key)
		if err != nil {
			return err
		}
		if found {
			c = mergeFields(cur.Fields, c)
		}
	}
	if _, seen := t.pending[ref]; !seen {
		t.order = append(t.order, ref)
	}
	t.pending[ref] = c
	return nil
}
