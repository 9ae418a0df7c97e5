package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"zipfit/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users failed: %w", err)
	}
	return n, nil
}

func (r *UserRepository) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("record login failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "query user by username", "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "query user by email", "email = ?", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return r.first(ctx, "query user by id", "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, action, query string, args ...any) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s failed: %w", action, err)
	}
	return &user, nil
}
