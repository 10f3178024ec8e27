// Package domain defines the persistence models for the meal bot: cached
// cafeteria menus, chat users, and dinner resale listings. These types are
// mapped with GORM and form the core data layer of the application.
package domain

import (
	"strconv"
	"time"
)

// DateLayout is the canonical storage format for calendar days. Dates are
// stored as plain strings so day-level uniqueness does not depend on
// timezones or sub-day precision.
const DateLayout = "2006-01-02"

// DateOf returns the calendar-day key for t in storage format.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

// State is the conversation state of a user. It drives how free text in an
// incoming message is interpreted: as a display name, a phone number, or a
// listing price.
type State string

const (
	// StateNew means the user has made first contact but has no name yet.
	// Free text is treated as the display name.
	StateNew State = "new"
	// StateAwaitingPhone means the name is set but no phone is recorded.
	// Free text is treated as the phone number.
	StateAwaitingPhone State = "awaiting_phone"
	// StateAwaitingPrice means the profile is complete and the user was just
	// prompted for a price.
	StateAwaitingPrice State = "awaiting_price"
	// StateReady means the profile is complete. Free text is treated as a
	// price for a new listing, same as StateAwaitingPrice.
	StateReady State = "ready"
)

// ProfileComplete reports whether the state allows creating listings.
func (s State) ProfileComplete() bool {
	return s == StateAwaitingPrice || s == StateReady
}

// MenuEntry is one calendar day's cafeteria menu text, keyed uniquely by
// date. Entries are written by the menu cache on scrape and are only ever
// overwritten by an idempotent re-scrape of the same month.
type MenuEntry struct {
	ID        uint      `json:"id"   gorm:"primaryKey"`
	Date      string    `json:"date" gorm:"type:char(10);not null;uniqueIndex:ux_menu_date"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for MenuEntry.
func (MenuEntry) TableName() string { return "menu_entries" }

// User is a chat profile keyed by the opaque identifier the chat platform
// sends with every webhook call. Name and phone stay empty until the user
// supplies them through the sell flow; a set phone is unique across users
// (partial index, see repo.AutoMigrate).
type User struct {
	ID        uint      `json:"id"       gorm:"primaryKey"`
	UserKey   string    `json:"user_key" gorm:"type:varchar(200);not null;uniqueIndex:ux_users_key"`
	Name      string    `json:"name"     gorm:"type:varchar(200);not null;default:''"`
	Phone     string    `json:"phone"    gorm:"type:varchar(200);not null;default:''"`
	State     State     `json:"state"    gorm:"type:varchar(16);not null;default:'new'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Listings are owned by the user and removed with it.
	Listings []Listing `json:"-" gorm:"foreignKey:UserID"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Listing is a single day's resale offer of one dinner meal. Its date is
// fixed at creation; the only mutation ever applied is the one-way sold flip
// performed by the settle operation. Rows are never deleted so past days stay
// queryable.
type Listing struct {
	ID        uint      `json:"id"    gorm:"primaryKey"`
	UserID    uint      `json:"-"     gorm:"not null;index:idx_listings_owner_date,priority:1"`
	Price     int       `json:"price" gorm:"not null"`
	Date      string    `json:"date"  gorm:"type:char(10);not null;index:idx_listings_owner_date,priority:2"`
	Sold      bool      `json:"sold"  gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Owner is the selling user. Listings are cascade-deleted with their owner.
	Owner User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// Label renders the listing the way buyers see it on the purchase keyboard,
// which is also the exact shape a claim message parses back:
// "<name> <price> 원".
func (l Listing) Label() string {
	return l.Owner.Name + " " + strconv.Itoa(l.Price) + " 원"
}
