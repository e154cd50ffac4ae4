package gormdb

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

// UserRepository implements the user repository on top of any GORM dialect
// (sqlite, postgres, mysql).
type UserRepository struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepository creates a new GORM-backed user repository.
func NewUserRepository(db *gorm.DB, log *zap.Logger) *UserRepository {
	return &UserRepository{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
//
// User ids are not unique, so rows are keyed by a surrogate RowID which
// also records insertion order.
type UserSchema struct {
	RowID  int64  `gorm:"column:row_id;primaryKey;autoIncrement"`
	UserID int64  `gorm:"column:user_id;not null;index"`
	Name   string `gorm:"column:name;not null"`
	Email  string `gorm:"column:email;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func (m UserSchema) toDomain() domain.User {
	return domain.User{ID: m.UserID, Name: m.Name, Email: m.Email}
}

// FindAll returns all users ordered by insertion.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("row_id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = m.toDomain()
	}
	return users, nil
}

// FindByID returns the earliest inserted user with the given id, or nil.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("row_id").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	u := model.toDomain()
	return &u, nil
}

// Create inserts the user and returns it unchanged.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{UserID: u.ID, Name: u.Name, Email: u.Email}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.Int64("id", u.ID))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	r.log.Debug("user created in db", zap.Int64("id", u.ID), zap.Int64("row_id", model.RowID))
	return u, nil
}
