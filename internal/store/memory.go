package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local runs.
type Memory struct {
	mu    sync.RWMutex
	users map[string]map[string]any
	docs  map[string]map[string]map[string]map[string]any

	// FailOn, when set, is consulted before every operation. Returning an
	// error makes that operation fail with it.
	FailOn func(op, collection, id string) error
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]map[string]any),
		docs:  make(map[string]map[string]map[string]map[string]any),
	}
}

func (m *Memory) fail(op, collection, id string) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op, collection, id)
}

func (m *Memory) collection(uid, collection string, create bool) map[string]map[string]any {
	byCollection, ok := m.docs[uid]
	if !ok {
		if !create {
			return nil
		}
		byCollection = make(map[string]map[string]map[string]any)
		m.docs[uid] = byCollection
	}
	docs, ok := byCollection[collection]
	if !ok && create {
		docs = make(map[string]map[string]any)
		byCollection[collection] = docs
	}
	return docs
}

func (m *Memory) List(ctx context.Context, uid, collection string) ([]Document, error) {
	if err := m.fail("list", collection, ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collection(uid, collection, false)
	out := make([]Document, 0, len(docs))
	for id, data := range docs {
		cp, err := normalize(data)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Data: cp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Query(ctx context.Context, uid, collection string, q Query) ([]Document, error) {
	if err := m.fail("query", collection, ""); err != nil {
		return nil, err
	}
	all, err := m.List(ctx, uid, collection)
	if err != nil {
		return nil, err
	}

	out := make([]Document, 0, len(all))
	for _, doc := range all {
		v, ok := doc.Data[q.Field].(string)
		if !ok {
			continue
		}
		if q.Since != "" && v < q.Since {
			continue
		}
		out = append(out, doc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Data[q.Field].(string), out[j].Data[q.Field].(string)
		if q.Desc {
			return a > b
		}
		return a < b
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, uid, collection, id string) (Document, error) {
	if err := m.fail("get", collection, id); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collection(uid, collection, false)[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	cp, err := normalize(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: cp}, nil
}

func (m *Memory) Create(ctx context.Context, uid, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := m.fail("create", collection, id); err != nil {
		return "", err
	}
	if err := m.Set(ctx, uid, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(ctx context.Context, uid, collection, id string, data map[string]any, merge bool) error {
	if err := m.fail("set", collection, id); err != nil {
		return err
	}
	cp, err := normalize(data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(uid, collection, true)
	if existing, ok := docs[id]; ok && merge {
		mergeMaps(existing, cp)
		return nil
	}
	docs[id] = cp
	return nil
}

func (m *Memory) Update(ctx context.Context, uid, collection, id string, fields map[string]any) error {
	if err := m.fail("update", collection, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(uid, collection, false)
	data, ok := docs[id]
	if !ok {
		return ErrNotFound
	}
	applyFields(data, fields)
	cp, err := normalize(data)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	docs[id] = cp
	return nil
}

func (m *Memory) Delete(ctx context.Context, uid, collection, id string) error {
	if err := m.fail("delete", collection, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collection(uid, collection, false), id)
	return nil
}

func (m *Memory) DeleteAll(ctx context.Context, uid string, collections []string) error {
	for _, c := range collections {
		if err := m.fail("deleteAll", c, ""); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range collections {
		if byCollection, ok := m.docs[uid]; ok {
			delete(byCollection, c)
		}
	}
	return nil
}

func (m *Memory) GetUser(ctx context.Context, uid string) (map[string]any, error) {
	if err := m.fail("getUser", "users", uid); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return normalize(data)
}

func (m *Memory) SetUser(ctx context.Context, uid string, data map[string]any, merge bool) error {
	if err := m.fail("setUser", "users", uid); err != nil {
		return err
	}
	cp, err := normalize(data)
	if err != nil {
		return fmt.Errorf("set user %s: %w", uid, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.users[uid]; ok && merge {
		mergeMaps(existing, cp)
		return nil
	}
	m.users[uid] = cp
	return nil
}

func (m *Memory) UpdateUser(ctx context.Context, uid string, fields map[string]any) error {
	if err := m.fail("updateUser", "users", uid); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.users[uid]
	if !ok {
		return ErrNotFound
	}
	applyFields(data, fields)
	cp, err := normalize(data)
	if err != nil {
		return fmt.Errorf("update user %s: %w", uid, err)
	}
	m.users[uid] = cp
	return nil
}

func (m *Memory) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := m.fail("listUsers", "users", ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for uid := range m.users {
		seen[uid] = true
	}
	for uid := range m.docs {
		seen[uid] = true
	}

	ids := make([]string, 0, len(seen))
	for uid := range seen {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Close() error {
	return nil
}

// mergeMaps deep-merges src into dst the way a merge write does: nested maps
// are merged, everything else is replaced.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeMaps(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}
