package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-service/internal/adapter/cache"
	domain "user-service/internal/domain/user"
	"user-service/internal/usecase/user"
)

// UserRepository decorates a user.Repository with a cache-aside read path
// for FindByID.
//
// Created users are not written through. Ids may repeat, and only a read
// from the underlying store knows which record is the first match.
type UserRepository struct {
	next  user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository wraps next with cache c.
func NewUserRepository(next user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{next: next, cache: c, log: log}
}

// FindAll delegates to the wrapped repository.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.next.FindAll(ctx)
}

// Create delegates to the wrapped repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.next.Create(ctx, u)
}

// FindByID checks the cache first, then loads from the wrapped repository
// with concurrent misses for the same id collapsed into one load.
// Absent users are not cached.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	v, err, _ := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		if u := r.fromCache(ctx, id); u != nil {
			return u, nil
		}

		u, err := r.next.FindByID(ctx, id)
		if err != nil || u == nil {
			return u, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := v.(*domain.User)
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) fromCache(ctx context.Context, id int64) *domain.User {
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to repository", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	return u
}
