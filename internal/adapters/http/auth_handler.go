package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dayslot/core/internal/application/services"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// EmailRequest carries a bare email address
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CodeRequest carries an email address and a one-time code
type CodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles password sign-in
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warn("Login failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// SendLoginCode emails a one-time sign-in code (magic-link flow)
func (h *AuthHandler) SendLoginCode(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.SendLoginCode(c.Request().Context(), req.Email); err != nil {
		h.logger.Error("Sending login code failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Sign-in code sent. Check your inbox."})
}

// VerifyLoginCode redeems a one-time sign-in code
func (h *AuthHandler) VerifyLoginCode(c echo.Context) error {
	var req CodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.VerifyLoginCode(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		h.logger.Warn("Login code verification failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// ResendConfirmation emails a fresh confirmation code
func (h *AuthHandler) ResendConfirmation(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		h.logger.Error("Confirmation resend failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Confirmation email sent. Check your inbox."})
}

// ConfirmEmail redeems an emailed confirmation code
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req CodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ConfirmEmail(c.Request().Context(), req.Email, req.Code); err != nil {
		h.logger.Warn("Email confirmation failed", "error", err, "email", req.Email)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Email confirmed. You can sign in now."})
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		h.logger.Warn("Token refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout revokes the user's sessions
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		h.logger.Error("Logout failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Signed out"})
}

// Me returns the current user
func (h *AuthHandler) Me(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, user)
}
