package user

import (
	"context"

	domain "user-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	// GetAllUsers returns every stored user in insertion order.
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	// GetUserByID returns the first user with the given id, or nil when absent.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	// CreateUser stores a new user whose id is the current time in milliseconds.
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
}
