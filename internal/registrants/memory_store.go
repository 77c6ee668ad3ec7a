package registrants

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory Store, used when no database is
// configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*Registrant
	byEmail map[string]string
}

// NewMemoryStore creates a new in-memory registrant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Registrant),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, r *Registrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(r.Email)
	if _, exists := m.byEmail[email]; exists {
		return ErrEmailExists
	}
	cp := *r
	m.byID[r.ID] = &cp
	m.byEmail[email] = r.ID
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]*Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Registrant
	for _, r := range m.byID {
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
