// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Listing
// model.
//
// Ordering is deterministic everywhere (price ASC, id ASC) so buyers always
// see the cheapest dinner first and claim resolution is stable across calls.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
)

// ActiveListing returns the single unsold listing for (userID, date), or
// ErrNotFound when the user has none that day.
func ActiveListing(ctx context.Context, db *gorm.DB, userID uint, date string) (*domain.Listing, error) {
	var l domain.Listing
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND sold = ?", userID, date, false).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateListing inserts a new unsold listing row. The partial unique index
// ux_listings_owner_date_unsold rejects a second unsold row for the same
// owner and day; the raw constraint error is propagated for the service
// layer to map.
func CreateListing(ctx context.Context, db *gorm.DB, userID uint, price int, date string) (*domain.Listing, error) {
	l := &domain.Listing{
		UserID:    userID,
		Price:     price,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// MarkListingSold flips the one-way sold flag on a listing. ErrNotFound is
// returned when the listing does not exist or was already sold.
func MarkListingSold(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND sold = ?", id, false).
		Update("sold", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAvailable returns all unsold listings for a day, cheapest first, with
// owners preloaded for display names. An empty slice is a valid result.
func ListAvailable(ctx context.Context, db *gorm.DB, date string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := db.WithContext(ctx).
		Preload("Owner").
		Where("date = ? AND sold = ?", date, false).
		Order("price ASC, id ASC").
		Find(&out).Error
	return out, err
}

// FindClaim resolves a buyer's parsed claim to the first matching unsold
// listing: owner name equal to name, or price equal to price (inclusive-or).
// Order is price ASC, id ASC so repeated claims resolve identically.
// ErrNotFound means no listing matched.
func FindClaim(ctx context.Context, db *gorm.DB, name string, price int) (*domain.Listing, error) {
	var l domain.Listing
	err := db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN users ON users.id = listings.user_id").
		Where("listings.sold = ? AND (users.name = ? OR listings.price = ?)", false, name, price).
		Order("listings.price ASC, listings.id ASC").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CountListings returns the number of listings for a day (sold included).
func CountListings(ctx context.Context, db *gorm.DB, date string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("date = ?", date).
		Count(&total).Error
	return total, err
}

// ListListingsPage returns a paginated slice of a day's listings (sold
// included), newest last, for the ops endpoint.
func ListListingsPage(ctx context.Context, db *gorm.DB, date string, offset, limit int) ([]domain.Listing, error) {
	var out []domain.Listing
	err := db.WithContext(ctx).
		Preload("Owner").
		Where("date = ?", date).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
