package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"donationhub/internal/model"
)

var (
	// ErrUserNotFound is returned when no record exists for an email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned by Create when the email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository is the credential store contract. Create must be a
// conditional write: it succeeds only if no record exists for the email at
// write time, so concurrent signups for one email cannot both succeed.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository. The email primary key
// enforces uniqueness; db must be opened with TranslateError.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
