// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound).
//   - Unique-constraint violations (duplicate user key, duplicate phone) are
//     propagated raw; the service layer maps them to stable sentinel errors.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
)

// GetUserByKey fetches a user by the opaque chat-platform key.
func GetUserByKey(ctx context.Context, db *gorm.DB, userKey string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("user_key = ?", userKey).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a fresh profile for userKey in the initial state.
// A concurrent first contact for the same key violates ux_users_key; the
// caller treats that as "already exists" and re-reads.
func CreateUser(ctx context.Context, db *gorm.DB, userKey string) (*domain.User, error) {
	u := &domain.User{
		UserKey:   userKey,
		State:     domain.StateNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserProfile sets profile columns and the conversation state in one
// statement. It returns ErrNotFound when the row vanished underneath us.
func UpdateUserProfile(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
