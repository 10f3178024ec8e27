// Package services – MenuService
//
// This file implements the menu cache: calendar date in, menu text out. A
// cache miss triggers one fetch of the whole month from the institutional
// website, and the parsed days are committed in a single transaction so a
// partially stored month can never mask a future re-fetch.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sunrinpay/mealbot/internal/domain"
	"github.com/sunrinpay/mealbot/internal/menu"
	"github.com/sunrinpay/mealbot/internal/repo"
)

// NoMealText is stored for days the calendar lists without any menu, so the
// miss does not repeat on the next request.
const NoMealText = "오늘은 급식이 없습니다."

// MenuSource fetches one month of cafeteria menus. Implemented by
// menu.Fetcher; tests substitute a canned source.
type MenuSource interface {
	FetchMonth(ctx context.Context, year int, month time.Month) ([]menu.DayMenu, error)
}

// MenuService resolves a calendar day to its menu text, backfilling the
// store from the external source on a miss.
type MenuService struct {
	DB     *gorm.DB
	Source MenuSource
}

// DailyMenu returns the menu text for day. On a cache miss the whole month
// is fetched, parsed, and upserted atomically before the day is re-read.
// Fetch or parse failures surface as ErrMenuUnavailable with the cause
// wrapped; the store is left untouched in that case.
func (s *MenuService) DailyMenu(ctx context.Context, day time.Time) (string, error) {
	tr := otel.Tracer("services/MenuService")
	ctx, span := tr.Start(ctx, "DailyMenu",
		trace.WithAttributes(attribute.String("menu.date", domain.DateOf(day))),
	)
	defer span.End()

	key := domain.DateOf(day)
	if entry, err := repo.GetMenu(ctx, s.DB, key); err == nil {
		return entry.Text, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	pairs, err := s.Source.FetchMonth(ctx, day.Year(), day.Month())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	entries := monthEntries(day, pairs)
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.UpsertMenus(ctx, tx, entries)
	}); err != nil {
		return "", err
	}

	entry, err := repo.GetMenu(ctx, s.DB, key)
	if err != nil {
		return "", err
	}
	return entry.Text, nil
}

// monthEntries turns parsed (day, text) pairs into dated rows for the month
// of ref. Days that do not exist in that month (a 31 reported for a 30-day
// month) are skipped instead of failing the batch; empty cells and the
// requested day itself fall back to the no-meal placeholder so absence is a
// stored value, not a repeating miss.
func monthEntries(ref time.Time, pairs []menu.DayMenu) []domain.MenuEntry {
	year, month := ref.Year(), ref.Month()
	entries := make([]domain.MenuEntry, 0, len(pairs)+1)
	seen := make(map[string]struct{}, len(pairs)+1)

	for _, p := range pairs {
		d := time.Date(year, month, p.Day, 0, 0, 0, 0, ref.Location())
		if d.Month() != month || d.Day() != p.Day {
			continue
		}
		text := p.Text
		if text == "" {
			text = NoMealText
		}
		key := domain.DateOf(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, domain.MenuEntry{Date: key, Text: text})
	}

	// A day missing from the calendar entirely (some months omit weekend
	// cells) still gets the placeholder for the date that was asked for.
	if key := domain.DateOf(ref); !contains(seen, key) {
		entries = append(entries, domain.MenuEntry{Date: key, Text: NoMealText})
	}
	return entries
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
