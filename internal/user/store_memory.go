package user

import (
	"context"
	"sync"
)

// MemStore appends users without checking for duplicate emails.
type MemStore struct {
	mu    sync.RWMutex
	users []User
}

var _ Store = (*MemStore)(nil)

func NewMemStore(seed ...User) *MemStore {
	return &MemStore{users: append([]User(nil), seed...)}
}

// SeedUsers is the demo account loaded when seeding is enabled.
func SeedUsers() []User {
	return []User{{Email: "seller@ecom.com", Password: "Password1"}}
}

func (s *MemStore) Add(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	u := User{Email: email, Password: password}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()

	return u, nil
}

func (s *MemStore) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]User(nil), s.users...), nil
}

func (s *MemStore) FindByCredentials(ctx context.Context, email, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}
