// Package services defines the business logic for the menu cache, the user
// directory, and the listing ledger. This file centralizes the service-level
// error values so they can be consistently returned by service methods and
// checked by callers.
//
// These errors are expected domain conditions, not failures: the conversation
// router translates each of them into a specific chat reply. Anything the
// services return outside this set is a real storage or source failure.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrMenuUnavailable indicates the external menu source could not be
	// fetched or parsed. Transient; the user is told to retry later.
	ErrMenuUnavailable = errors.New("menu unavailable")

	// ErrDuplicateListing is returned when a user who already has an unsold
	// listing today tries to create another one.
	ErrDuplicateListing = errors.New("listing already exists for today")

	// ErrNoActiveListing is returned when settle is called without an unsold
	// listing for today.
	ErrNoActiveListing = errors.New("no active listing")

	// ErrInvalidPrice is returned when the price text contains no digits or
	// parses to a non-positive amount.
	ErrInvalidPrice = errors.New("price must be a positive number")

	// ErrPhoneTaken is returned when the supplied phone number is already
	// recorded on another profile.
	ErrPhoneTaken = errors.New("phone number already registered")
)

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
