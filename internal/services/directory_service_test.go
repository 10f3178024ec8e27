package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sunrinpay/mealbot/internal/domain"
)

func TestGetOrCreate_FirstContact(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()

	u, err := svc.GetOrCreate(ctx, "k1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if u.UserKey != "k1" || u.State != domain.StateNew {
		t.Fatalf("unexpected new user: %+v", u)
	}

	again, err := svc.GetOrCreate(ctx, "k1")
	if err != nil {
		t.Fatalf("GetOrCreate (second): %v", err)
	}
	if again.ID != u.ID {
		t.Fatalf("expected same profile, got ids %d and %d", u.ID, again.ID)
	}
}

func TestSetName_AdvancesState(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()

	u, err := svc.GetOrCreate(ctx, "k1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := svc.SetName(ctx, u, "홍길동"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if u.Name != "홍길동" || u.State != domain.StateAwaitingPhone {
		t.Fatalf("in-memory user not advanced: %+v", u)
	}

	persisted, err := svc.GetOrCreate(ctx, "k1")
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if persisted.Name != "홍길동" || persisted.State != domain.StateAwaitingPhone {
		t.Fatalf("persisted user not advanced: %+v", persisted)
	}
}

func TestSetPhone_AdvancesState(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()

	u, _ := svc.GetOrCreate(ctx, "k1")
	if err := svc.SetName(ctx, u, "홍길동"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if err := svc.SetPhone(ctx, u, "01012345678"); err != nil {
		t.Fatalf("SetPhone: %v", err)
	}
	if u.Phone != "01012345678" || u.State != domain.StateAwaitingPrice {
		t.Fatalf("user not advanced: %+v", u)
	}
}

func TestSetPhone_Taken(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()

	a, _ := svc.GetOrCreate(ctx, "k1")
	_ = svc.SetName(ctx, a, "김철수")
	if err := svc.SetPhone(ctx, a, "01012345678"); err != nil {
		t.Fatalf("first phone: %v", err)
	}

	b, _ := svc.GetOrCreate(ctx, "k2")
	_ = svc.SetName(ctx, b, "이영희")
	err := svc.SetPhone(ctx, b, "01012345678")
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
	// State must not advance so the user is re-prompted.
	if b.State != domain.StateAwaitingPhone {
		t.Fatalf("state advanced despite rejection: %+v", b)
	}

	if err := svc.SetPhone(ctx, b, "01087654321"); err != nil {
		t.Fatalf("distinct phone: %v", err)
	}
}

func TestMarkReady_IdempotentFlip(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()

	u, _ := svc.GetOrCreate(ctx, "k1")
	_ = svc.SetName(ctx, u, "홍길동")
	_ = svc.SetPhone(ctx, u, "01012345678")

	if err := svc.MarkReady(ctx, u); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	if u.State != domain.StateReady {
		t.Fatalf("expected StateReady, got %q", u.State)
	}
	// A second flip is a no-op.
	if err := svc.MarkReady(ctx, u); err != nil {
		t.Fatalf("MarkReady (second): %v", err)
	}
}

func TestProfileComplete(t *testing.T) {
	cases := []struct {
		state domain.State
		want  bool
	}{
		{domain.StateNew, false},
		{domain.StateAwaitingPhone, false},
		{domain.StateAwaitingPrice, true},
		{domain.StateReady, true},
	}
	for _, tc := range cases {
		if got := tc.state.ProfileComplete(); got != tc.want {
			t.Fatalf("ProfileComplete(%q) = %v, want %v", tc.state, got, tc.want)
		}
	}
}
