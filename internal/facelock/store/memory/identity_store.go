package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/store"
)

// IdentityStore is an in-memory roster for tests and dev environments.
type IdentityStore struct {
	mu     sync.RWMutex
	nextID int64
	users  []store.IdentityRecord
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{nextID: 1}
}

func (s *IdentityStore) Upsert(_ context.Context, name string, age int, pin string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Name == name {
			s.users[i].Age = age
			s.users[i].PIN = pin
			s.users[i].Active = true
			return nil
		}
	}

	s.users = append(s.users, store.IdentityRecord{
		ID:        s.nextID,
		Name:      name,
		Age:       age,
		PIN:       pin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	s.nextID++
	return nil
}

func (s *IdentityStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Name == name {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *IdentityStore) SetActive(_ context.Context, name string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Name == name {
			s.users[i].Active = active
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *IdentityStore) LookupByPIN(_ context.Context, pin string) (string, bool, error) {
	if strings.TrimSpace(pin) == "" {
		return "", false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Active && u.PIN == pin {
			return u.Name, true, nil
		}
	}
	return "", false, nil
}

func (s *IdentityStore) Get(_ context.Context, name string) (store.IdentityRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Name == name {
			return u, true, nil
		}
	}
	return store.IdentityRecord{}, false, nil
}

func (s *IdentityStore) List(_ context.Context) ([]store.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.IdentityRecord, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *IdentityStore) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.Active {
			n++
		}
	}
	return n, nil
}
