package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
)

// TaskService is the presentation boundary of the task lifecycle: list,
// create, update, soft delete, begin edit, plus read access to the editing
// session.
type TaskService interface {
	List(ctx context.Context, ownerID uuid.UUID, date schedule.Date) ([]*entities.Task, error)
	Create(ctx context.Context, ownerID uuid.UUID, req SaveTaskRequest) (*entities.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, req SaveTaskRequest) (*entities.Task, error)
	SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, req DeleteTaskRequest) error
	BeginEdit(ctx context.Context, ownerID, taskID uuid.UUID) (*entities.Task, error)
	Session(ownerID uuid.UUID) (EditSession, bool)
	ResetSession(ownerID uuid.UUID)
}

// AuthService covers the account flows: password
// sign-in, sign-up, emailed one-time codes, confirmation, sign-out.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	SendLoginCode(ctx context.Context, email string) error
	VerifyLoginCode(ctx context.Context, email, code string) (*AuthResponse, error)
	ResendConfirmation(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, email, code string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// EditSession is the snapshot taken when editing begins. The original date and
// start time are kept so the lock rule can be re-checked against the pre-edit
// schedule: the user may try to reschedule a task whose slot has since passed.
type EditSession struct {
	TaskID    uuid.UUID          `json:"task_id"`
	Date      schedule.Date      `json:"date_ymd"`
	StartTime schedule.ClockTime `json:"start_time"`
}

// SaveTaskRequest carries the fields of the add/edit form. Date and start time
// arrive as strings and are canonicalized by the service before any
// comparison.
type SaveTaskRequest struct {
	Title     string  `json:"title" validate:"required"`
	Notes     *string `json:"notes"`
	Date      string  `json:"date_ymd" validate:"required"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time"`
	Priority  string  `json:"priority"`
}

// DeleteTaskRequest carries the confirmation signal and, for the list-row
// quick-delete path, the row's own schedule snapshot.
type DeleteTaskRequest struct {
	Confirmed bool    `json:"confirmed"`
	Date      *string `json:"date_ymd"`
	StartTime *string `json:"start_time"`
}

// Auth request/response types.

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	TokenType    string         `json:"token_type,omitempty"`
	ExpiresIn    int64          `json:"expires_in,omitempty"`
	User         *entities.User `json:"user,omitempty"`

	// ConfirmationPending is set when sign-up succeeded but the account
	// cannot sign in until the emailed confirmation code is redeemed.
	ConfirmationPending bool `json:"confirmation_pending,omitempty"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
