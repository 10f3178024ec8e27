// Package services – ListingService
//
// This file implements the marketplace ledger. The one-unsold-listing-per-
// user-per-day invariant is enforced twice: creation for a given user is
// serialized through a per-user lock, and the store carries a partial unique
// index on (owner, date, unsold) so even a lost race cannot produce a second
// row.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/width"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sunrinpay/mealbot/internal/domain"
	"github.com/sunrinpay/mealbot/internal/repo"
	"github.com/sunrinpay/mealbot/internal/utils"
)

// claimSuffix is the literal last token of a buyer claim message ("won").
const claimSuffix = "원"

// ListingService owns the listing lifecycle: create, settle, list, resolve.
type ListingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Now returns the current time; overridable in tests. time.Now when nil.
	Now func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewListingService constructs a ListingService.
func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{DB: db, locks: make(map[uint]*sync.Mutex)}
}

func (s *ListingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// userLock returns the creation lock for a user, making it on first use.
func (s *ListingService) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[uint]*sync.Mutex)
	}
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Active returns today's unsold listing for the user, or nil when there is
// none. Absence is not an error.
func (s *ListingService) Active(ctx context.Context, user *domain.User) (*domain.Listing, error) {
	l, err := repo.ActiveListing(ctx, s.DB, user.ID, domain.DateOf(s.now()))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create parses rawPrice and lists a dinner for today. Full-width digits are
// narrowed and non-digit characters stripped before parsing; anything that
// does not leave a positive integer is ErrInvalidPrice. A second unsold
// listing for the same user and day is ErrDuplicateListing.
func (s *ListingService) Create(ctx context.Context, user *domain.User, rawPrice string) (*domain.Listing, error) {
	tr := otel.Tracer("services/ListingService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int("user.id", int(user.ID))),
	)
	defer span.End()

	price, err := ParsePrice(rawPrice)
	if err != nil {
		return nil, err
	}

	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	date := domain.DateOf(s.now())
	if _, err := repo.ActiveListing(ctx, s.DB, user.ID, date); err == nil {
		return nil, ErrDuplicateListing
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	l, err := repo.CreateListing(ctx, s.DB, user.ID, price, date)
	if err != nil {
		if isDuplicate(err) {
			// The partial index caught a race the check missed.
			return nil, ErrDuplicateListing
		}
		return nil, err
	}
	return l, nil
}

// Settle marks today's unsold listing sold. ErrNoActiveListing when the user
// has nothing to settle; ledger state is unchanged in that case.
func (s *ListingService) Settle(ctx context.Context, user *domain.User) error {
	active, err := s.Active(ctx, user)
	if err != nil {
		return err
	}
	if active == nil {
		return ErrNoActiveListing
	}
	if err := repo.MarkListingSold(ctx, s.DB, active.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Settled concurrently; the outcome the caller asked for holds.
			return nil
		}
		return err
	}
	return nil
}

// Available returns today's unsold listings, cheapest first. An empty slice
// is a valid outcome distinct from an error.
func (s *ListingService) Available(ctx context.Context) ([]domain.Listing, error) {
	return repo.ListAvailable(ctx, s.DB, domain.DateOf(s.now()))
}

// ResolveClaim interprets free text of the exact shape "<name> <price> 원"
// as a buyer claim and resolves it to the first unsold listing whose owner
// name or price matches (inclusive-or). A shape mismatch or no match returns
// (nil, nil): the text simply is not a claim, and other interpretations get
// their turn.
func (s *ListingService) ResolveClaim(ctx context.Context, text string) (*domain.Listing, error) {
	tokens := strings.Fields(text)
	if len(tokens) != 3 || tokens[2] != claimSuffix {
		return nil, nil
	}

	// Only the price token is narrowed. Names are stored as typed, so
	// narrowing the whole text would break matching for full-width names.
	name := tokens[0]
	price := -1 // never matches when the middle token is not a number
	if p, err := strconv.Atoi(width.Narrow.String(tokens[1])); err == nil {
		price = p
	}

	l, err := repo.FindClaim(ctx, s.DB, name, price)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ParsePrice normalizes price text the way the upstream chat UX expects:
// full-width characters are narrowed, every non-digit is stripped ("5,000원"
// → 5000), and the remainder must be a positive integer.
func ParsePrice(raw string) (int, error) {
	digits := utils.DigitsOnly(width.Narrow.String(raw))
	if digits == "" {
		return 0, ErrInvalidPrice
	}
	price, err := strconv.Atoi(digits)
	if err != nil || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}
