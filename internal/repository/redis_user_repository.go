package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"donationhub/internal/model"
)

const userKeyPrefix = "user:"

// redisUser is the stored form; model.User hides the hash from JSON.
type redisUser struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"passwordHash"`
	Role         model.Role `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type redisUserRepository struct {
	client redis.Cmdable
}

// NewRedisUserRepository stores one JSON document per email under "user:<email>".
// Create uses SETNX, so the first writer wins.
func NewRedisUserRepository(client redis.Cmdable) UserRepository {
	return &redisUserRepository{client: client}
}

func (r *redisUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	data, err := r.client.Get(ctx, userKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var stored redisUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &model.User{
		Email:        stored.Email,
		Name:         stored.Name,
		PasswordHash: stored.PasswordHash,
		Role:         stored.Role,
		CreatedAt:    stored.CreatedAt,
	}, nil
}

func (r *redisUserRepository) Create(ctx context.Context, user *model.User) error {
	payload, err := json.Marshal(redisUser{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	created, err := r.client.SetNX(ctx, userKeyPrefix+user.Email, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if !created {
		return ErrUserAlreadyExists
	}
	return nil
}
