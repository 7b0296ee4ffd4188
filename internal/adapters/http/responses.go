package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dayslot/core/internal/domain/entities"
)

// MessageResponse is a simple confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}

// RefreshTokenRequest carries a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// domainError maps the typed domain failures onto HTTP status codes. Every
// failure is local to the attempted operation; nothing here is fatal.
func domainError(err error) error {
	var (
		ve *entities.ValidationError
		sc *entities.SchedulingConflict
		se *entities.StateError
		ar *entities.AuthRequiredError
		st *entities.StoreError
	)

	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.As(err, &sc):
		return echo.NewHTTPError(http.StatusConflict, sc.Error())
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusConflict, se.Error())
	case errors.As(err, &ar):
		return echo.NewHTTPError(http.StatusUnauthorized, ar.Error())
	case errors.As(err, &st):
		return echo.NewHTTPError(http.StatusBadGateway, "storage unavailable")
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, entities.ErrEmailNotConfirmed),
		errors.Is(err, entities.ErrAccountInactive):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// getUserIDFromContext extracts the authenticated user id set by the auth
// middleware. uuid.Nil means no authenticated owner.
func getUserIDFromContext(c echo.Context) uuid.UUID {
	userIDStr, ok := c.Get("user").(string)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil
	}

	return userID
}
