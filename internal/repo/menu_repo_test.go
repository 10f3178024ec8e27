package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/sunrinpay/mealbot/internal/domain"
)

func TestGetMenu_NotFound(t *testing.T) {
	db := newRepoDB(t)

	m, err := GetMenu(context.Background(), db, "2026-08-30")
	if m != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got m=%v err=%v", m, err)
	}
}

func TestUpsertMenus_InsertAndRead(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	entries := []domain.MenuEntry{
		{Date: "2026-08-30", Text: "제육볶음\n미역국"},
		{Date: "2026-08-31", Text: "오늘은 급식이 없습니다."},
	}
	if err := UpsertMenus(ctx, db, entries); err != nil {
		t.Fatalf("UpsertMenus: %v", err)
	}

	got, err := GetMenu(ctx, db, "2026-08-30")
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if got.Text != "제육볶음\n미역국" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestUpsertMenus_ReplacesExistingDay(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if err := UpsertMenus(ctx, db, []domain.MenuEntry{{Date: "2026-08-30", Text: "old"}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := UpsertMenus(ctx, db, []domain.MenuEntry{{Date: "2026-08-30", Text: "new"}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := GetMenu(ctx, db, "2026-08-30")
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if got.Text != "new" {
		t.Fatalf("expected replacement, got %q", got.Text)
	}

	var count int64
	if err := db.Model(&domain.MenuEntry{}).Where("date = ?", "2026-08-30").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row per day, got %d", count)
	}
}

func TestUpsertMenus_EmptyBatchIsNoop(t *testing.T) {
	db := newRepoDB(t)
	if err := UpsertMenus(context.Background(), db, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestUpsertMenus_ErrorWithoutTable(t *testing.T) {
	db, err := gormOpenBare(t)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	upErr := UpsertMenus(context.Background(), db, []domain.MenuEntry{{Date: "2026-08-30", Text: "x"}})
	if upErr == nil {
		t.Fatal("expected error inserting without schema")
	}
}

// gormOpenBare opens a database without running migrations.
func gormOpenBare(t *testing.T) (*gorm.DB, error) {
	t.Helper()
	db, err := OpenSQLite(t.TempDir() + "/bare.db")
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db, nil
}
