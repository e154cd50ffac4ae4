package memory

import (
	"context"
	"sync"

	domain "user-service/internal/domain/user"
)

// UserRepository keeps users in an ordered in-memory slice for the
// lifetime of the process. Lookups are linear scans in insertion order.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make([]domain.User, 0)}
}

// FindAll returns a copy of all stored users in insertion order.
func (r *UserRepository) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// FindByID returns the first stored user with the given id, or nil.
func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// Create appends the user and returns it unchanged. Duplicate ids are accepted.
func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = append(r.users, *u)
	return u, nil
}
