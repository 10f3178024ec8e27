// Package services – DirectoryService
//
// This file implements the user directory: idempotent first-contact
// registration keyed on the opaque chat identifier, and the profile-field
// mutations the conversation flow performs (name, phone). Each mutation also
// advances the persisted conversation state so the next free-text message is
// interpreted correctly.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
	"github.com/sunrinpay/mealbot/internal/repo"
)

// DirectoryService owns user profiles.
type DirectoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{DB: db}
}

// GetOrCreate returns the profile for userKey, creating it on first contact.
// Two concurrent first contacts race on the unique key; the losing insert is
// swallowed and the surviving row is returned, so the operation is
// idempotent from the caller's point of view.
func (s *DirectoryService) GetOrCreate(ctx context.Context, userKey string) (*domain.User, error) {
	u, err := repo.GetUserByKey(ctx, s.DB, userKey)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u, err = repo.CreateUser(ctx, s.DB, userKey)
	if err == nil {
		return u, nil
	}
	if isDuplicate(err) {
		// Lost the race; the other writer's row is the profile.
		return repo.GetUserByKey(ctx, s.DB, userKey)
	}
	return nil, err
}

// SetName records the display name and moves the conversation on to the
// phone prompt.
func (s *DirectoryService) SetName(ctx context.Context, user *domain.User, name string) error {
	err := repo.UpdateUserProfile(ctx, s.DB, user.ID, map[string]any{
		"name":  name,
		"state": domain.StateAwaitingPhone,
	})
	if err != nil {
		return err
	}
	user.Name = name
	user.State = domain.StateAwaitingPhone
	return nil
}

// SetPhone records the phone number and moves the conversation on to the
// price prompt. A phone already registered to another profile yields
// ErrPhoneTaken; the state is left unchanged so the user is re-prompted.
func (s *DirectoryService) SetPhone(ctx context.Context, user *domain.User, phone string) error {
	err := repo.UpdateUserProfile(ctx, s.DB, user.ID, map[string]any{
		"phone": phone,
		"state": domain.StateAwaitingPrice,
	})
	if err != nil {
		if isDuplicate(err) {
			return ErrPhoneTaken
		}
		return err
	}
	user.Phone = phone
	user.State = domain.StateAwaitingPrice
	return nil
}

// MarkReady flips a profile-complete user to the resting state after the
// sell flow finishes.
func (s *DirectoryService) MarkReady(ctx context.Context, user *domain.User) error {
	if user.State == domain.StateReady {
		return nil
	}
	if err := repo.UpdateUserProfile(ctx, s.DB, user.ID, map[string]any{
		"state": domain.StateReady,
	}); err != nil {
		return err
	}
	user.State = domain.StateReady
	return nil
}
