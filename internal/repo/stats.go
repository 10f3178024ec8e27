// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
)

// ListingsStats returns aggregate metadata for a day's listings: the total
// number of rows and the greatest UpdatedAt among them. Settling a listing
// touches UpdatedAt, so (count, maxUpdatedAt) changes whenever the day's
// marketplace changes. When the day has no listings, count is 0 and
// maxUpdatedAt is nil.
func ListingsStats(ctx context.Context, db *gorm.DB, date string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Listing{}).Where("date = ?", date)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
