package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogapi/internal/model"
)

// publicUserColumns are the columns loaded on default user reads. The
// credential hash is selected only by FindCredentialsByEmail.
var publicUserColumns = []string{"id", "username", "email", "role", "created_at", "updated_at"}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindCredentialsByEmail loads the user including the password hash,
	// for credential verification only.
	FindCredentialsByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select(publicUserColumns).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select(publicUserColumns).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindCredentialsByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}
