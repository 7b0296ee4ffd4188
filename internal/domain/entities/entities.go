package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/dayslot/core/internal/domain/schedule"
)

// Priority is an ordinal: 1 sorts first, so "most important" tasks rise to the
// top of a plain ascending sort within a start-time tie.
type Priority int

const (
	PriorityMostImportant Priority = 1
	PriorityImportant     Priority = 2
	PriorityNormal        Priority = 3
)

// PriorityFromSlug maps the add/edit form's priority values onto the ordinal.
// Anything unrecognised is normal; the mapping is total.
func PriorityFromSlug(slug string) Priority {
	switch slug {
	case "most_important":
		return PriorityMostImportant
	case "important":
		return PriorityImportant
	default:
		return PriorityNormal
	}
}

// Slug is the inverse of PriorityFromSlug for valid ordinals.
func (p Priority) Slug() string {
	switch {
	case p <= PriorityMostImportant:
		return "most_important"
	case p == PriorityImportant:
		return "important"
	default:
		return "normal"
	}
}

// Label is the display name shown on a task chip.
func (p Priority) Label() string {
	switch {
	case p <= PriorityMostImportant:
		return "Most important"
	case p == PriorityImportant:
		return "Important"
	default:
		return "Normal"
	}
}

func (p Priority) IsValid() bool {
	return p >= PriorityMostImportant && p <= PriorityNormal
}

// Task is a date/time-scheduled to-do owned by a single user.
//
// Locked is derived, never stored: it is evaluated against the wall clock on
// every read. A locked task is permanently read-only through this API.
type Task struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	OwnerID   uuid.UUID          `json:"owner_id" db:"owner_id"`
	Title     string             `json:"title" db:"title"`
	Notes     *string            `json:"notes" db:"notes"`
	Date      schedule.Date      `json:"date_ymd" db:"date_ymd"`
	StartTime schedule.ClockTime `json:"start_time" db:"start_time"`
	EndTime   schedule.ClockTime `json:"end_time" db:"end_time"`
	Priority  Priority           `json:"priority" db:"priority"`
	IsAllDay  bool               `json:"is_all_day" db:"is_all_day"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time         `json:"deleted_at,omitempty" db:"deleted_at"`

	Locked bool `json:"locked" db:"-"`
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// LockedAt evaluates the lock rule against the given reference instant.
func (t *Task) LockedAt(now time.Time) bool {
	return schedule.IsLocked(t.Date, t.StartTime, schedule.DateOf(now), schedule.ClockTimeOf(now))
}

// User represents an account in the system.
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	EmailConfirmed bool       `json:"email_confirmed" db:"email_confirmed"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

// LoginCodePurpose distinguishes one-time email codes.
type LoginCodePurpose string

const (
	LoginCodeMagicLink    LoginCodePurpose = "magic_link"
	LoginCodeConfirmation LoginCodePurpose = "confirmation"
)

// LoginCode is a one-time emailed code, stored hashed.
type LoginCode struct {
	ID         int              `json:"id" db:"id"`
	Email      string           `json:"email" db:"email"`
	CodeHash   string           `json:"-" db:"code_hash"`
	Purpose    LoginCodePurpose `json:"purpose" db:"purpose"`
	ExpiresAt  time.Time        `json:"expires_at" db:"expires_at"`
	ConsumedAt *time.Time       `json:"consumed_at" db:"consumed_at"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// IsUsable reports whether the code can still be redeemed at the given time.
func (lc *LoginCode) IsUsable(now time.Time) bool {
	return lc.ConsumedAt == nil && now.Before(lc.ExpiresAt)
}
