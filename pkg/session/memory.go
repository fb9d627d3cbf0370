package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Values are stored encoded so
// callers never share state with the store.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryItem
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) (store *MemoryStore) {
	store = &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		items: map[string]memoryItem{},
	}
	return store
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(ctx context.Context, id string) (s Session, err error) {
	m.mu.Lock()
	item, ok := m.items[id]
	if ok && !m.now().Before(item.expiresAt) {
		delete(m.items, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		err = errors.Wrapf(ErrNotFound, "session %s", id)
		return s, err
	}

	s, err = decode(item.data)
	return s, err
}

// Save stores a copy of the session and refreshes its expiry.
func (m *MemoryStore) Save(ctx context.Context, s *Session) (err error) {
	now := m.now()
	s.UpdatedAt = now

	var data []byte
	data, err = encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.items[s.ID] = memoryItem{data: data, expiresAt: now.Add(m.ttl)}
	m.mu.Unlock()

	return err
}

// Delete removes a session. Deleting a missing session is not an error.
func (m *MemoryStore) Delete(ctx context.Context, id string) (err error) {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return err
}

// Sweep drops every expired session and reports how many were removed.
func (m *MemoryStore) Sweep(ctx context.Context) (removed int, err error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, id)
			removed++
		}
	}

	return removed, err
}
