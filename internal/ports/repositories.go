package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
)

// TaskRepository is the store-facing contract for task rows. Every query is
// scoped to the owning user; the repository never removes a row physically.
type TaskRepository interface {
	// ListByDate returns the owner's non-deleted tasks for the given day,
	// ordered by start time ascending then priority ascending.
	ListByDate(ctx context.Context, ownerID uuid.UUID, date schedule.Date) ([]*entities.Task, error)

	// GetByID returns a task by id and owner, soft-deleted rows included
	// (the deletion timestamp is part of the audit trail).
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entities.Task, error)

	// Create inserts the task with the owner stamped and fills in the
	// store-assigned id and timestamps.
	Create(ctx context.Context, task *entities.Task) error

	// Update rewrites the mutable fields of a row by id and owner.
	Update(ctx context.Context, task *entities.Task) error

	// SoftDelete sets the deletion timestamp by id and owner.
	SoftDelete(ctx context.Context, id, ownerID uuid.UUID, at time.Time) error
}

// UserRepository defines the interface for user account rows.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AuthRepository defines the interface for session and one-time-code state.
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error

	CreateLoginCode(ctx context.Context, code *entities.LoginCode) error
	GetLoginCode(ctx context.Context, email, codeHash string, purpose entities.LoginCodePurpose) (*entities.LoginCode, error)
	ConsumeLoginCode(ctx context.Context, id int, at time.Time) error
	CleanupExpired(ctx context.Context) error
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        int        `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// Mailer delivers one-time codes and confirmation messages.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
