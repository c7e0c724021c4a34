package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps encoded sessions in process memory. Callers never
// share a *Session with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after their last
// save. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, profile assessment.CompanyProfile) (*Session, error) {
	s := newSession(profile, m.now().UTC())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	if err := m.put(s); err != nil {
		return nil, apperrors.NewSessionStoreError("create", err)
	}
	return m.decode(m.entries[s.ID].data)
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.live(id)
	if !ok {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	return m.decode(entry.data)
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(s.ID); !ok {
		return apperrors.NewSessionNotFoundError(s.ID)
	}
	s.UpdatedAt = m.now().UTC()
	if err := m.put(s); err != nil {
		return apperrors.NewSessionStoreError("save", err)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(id); !ok {
		return apperrors.NewSessionNotFoundError(id)
	}
	delete(m.entries, id)
	return nil
}

// Len reports the number of unexpired sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for id := range m.entries {
		if _, ok := m.live(id); ok {
			n++
		}
	}
	return n
}

// put encodes s; caller holds the write lock.
func (m *MemoryStore) put(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.entries[s.ID] = entry
	return nil
}

// sweep drops expired entries; caller holds the write lock.
func (m *MemoryStore) sweep() {
	for id := range m.entries {
		if _, ok := m.live(id); !ok {
			delete(m.entries, id)
		}
	}
}

func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryStore) decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.NewSessionStoreError("decode", err)
	}
	return &s, nil
}
