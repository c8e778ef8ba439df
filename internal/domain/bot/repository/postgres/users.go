// Package postgres contains PostgreSQL repository implementations
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) deps.UserRepository {
	return &userRepository{db: db}
}

// UpsertUser inserts a new user or refreshes name and username of an existing one
func (r *userRepository) UpsertUser(ctx context.Context, user *entities.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("insert user: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("telegram_id = ?", user.TelegramID).
		Updates(map[string]any{
			"full_name": user.FullName,
			"username":  user.Username,
		}).Error
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return false, nil
}

// CountUsers returns the number of users
func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&n).Error
	return n, err
}

// ListUsers returns all users in join order
func (r *userRepository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListAdmins returns users with the admin flag
func (r *userRepository) ListAdmins(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).
		Where("is_admin = ?", true).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// IsAdmin returns the stored admin flag; unknown users are not admins
func (r *userRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Select("is_admin").
		Where("telegram_id = ?", telegramID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// SetAdmin sets the admin flag of an existing user
func (r *userRepository) SetAdmin(ctx context.Context, telegramID int64, admin bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_admin", admin)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
