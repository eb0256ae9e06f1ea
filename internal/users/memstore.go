package users

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used by tests across packages.
type MemStore struct {
	mu   sync.Mutex
	byID map[string]User
}

func NewMemStore() *MemStore { return &MemStore{byID: map[string]User{}} }

func (m *MemStore) GetByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(u), nil
}

func (m *MemStore) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemStore) Create(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if strings.EqualFold(x.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	u.Email = strings.ToLower(u.Email)
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *MemStore) Update(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return ErrNotFound
	}
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *MemStore) List(_ context.Context, q ListQuery) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.byID {
		if u.Role != RoleUser {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	start := min((q.Page-1)*q.Limit, total)
	end := min(start+q.Limit, total)
	return out[start:end], total, nil
}

func clone(u User) User {
	u.Addresses = append([]Address(nil), u.Addresses...)
	return u
}
