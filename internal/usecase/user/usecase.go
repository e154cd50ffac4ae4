package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "user-service/internal/domain/user"
	"user-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (in-memory, SQL, cached) to be used interchangeably.
type Repository interface {
	FindAll(ctx context.Context) ([]domain.User, error)           // All users in insertion order
	FindByID(ctx context.Context, id int64) (*domain.User, error) // First match, nil when absent
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

// Clock returns the current time. It is the source of new user ids.
type Clock func() time.Time

// Option configures a Usecase.
type Option func(*Service)

// WithClock overrides the clock used to assign user ids.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.now = c
		}
	}
}

// Service implements the business logic for user management operations.
// It holds no state of its own beyond the repository reference.
type Service struct {
	repo Repository  // Repository for data access
	log  *zap.Logger // Logger for structured logging
	now  Clock
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{repo: r, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllUsers delegates to the repository without transformation.
func (s *Service) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// GetUserByID delegates to the repository. A nil user with a nil error
// means no stored user has that id.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if u == nil {
		logger.WithContext(ctx, s.log).Debug("user not found", zap.Int64("id", id))
	}
	return u, nil
}

// CreateUser assigns the id from the wall clock in milliseconds and stores
// the user. Two calls within the same millisecond yield the same id; the
// repository accepts both.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	l := logger.WithContext(ctx, s.log)

	// Business logic: the id is the creation timestamp
	u := &domain.User{
		ID:    s.now().UnixMilli(),
		Name:  in.Name,
		Email: in.Email,
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		l.Error("failed to create user", zap.Int64("id", u.ID), zap.Error(err))
		return nil, err
	}

	l.Info("user created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}
