// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the MenuEntry
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunrinpay/mealbot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetMenu fetches the menu entry for a calendar day (domain.DateLayout key).
// Missing entries surface as ErrNotFound.
func GetMenu(ctx context.Context, db *gorm.DB, date string) (*domain.MenuEntry, error) {
	var m domain.MenuEntry
	if err := db.WithContext(ctx).Where("date = ?", date).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMenus writes a batch of menu entries, replacing the text of any day
// that already has one. Callers run it inside a transaction so a month's
// backfill commits atomically.
func UpsertMenus(ctx context.Context, db *gorm.DB, entries []domain.MenuEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
		}).
		Create(&entries).Error
}
