package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/infrastructure/config"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations: password sign-in, sign-up
// with optional email confirmation, emailed one-time sign-in codes, and
// session management.
type AuthService struct {
	userRepo  ports.UserRepository
	authRepo  ports.AuthRepository
	mailer    ports.Mailer
	jwtConfig config.JWTConfig
	authCfg   config.AuthConfig
	logger    *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, mailer ports.Mailer, jwtConfig config.JWTConfig, authCfg config.AuthConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		authRepo:  authRepo,
		mailer:    mailer,
		jwtConfig: jwtConfig,
		authCfg:   authCfg,
		logger:    logger,
	}
}

// Register creates a new account. When email confirmation is disabled the
// user is signed in immediately; otherwise a confirmation code is emailed and
// the response reports the pending state.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, entities.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   string(hashedPassword),
		EmailConfirmed: !s.authCfg.RequireEmailConfirmation,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)

	if s.authCfg.RequireEmailConfirmation {
		if err := s.sendCode(ctx, email, entities.LoginCodeConfirmation); err != nil {
			s.logger.Warn("Failed to send confirmation email", "error", err, "email", email)
		}
		user.PasswordHash = ""
		return &ports.AuthResponse{User: user, ConfirmationPending: true}, nil
	}

	// Confirmations are off: sign the new account in immediately.
	return s.issueTokens(ctx, user)
}

// Login authenticates a user with email and password and returns tokens.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Login attempt with unknown email", "email", req.Email)
		return nil, entities.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt on inactive account", "user_id", user.ID)
		return nil, entities.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login attempt with invalid password", "user_id", user.ID)
		return nil, entities.ErrInvalidCredentials
	}

	if s.authCfg.RequireEmailConfirmation && !user.EmailConfirmed {
		return nil, entities.ErrEmailNotConfirmed
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to update last login time", "error", err, "user_id", user.ID)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return s.issueTokens(ctx, user)
}

// SendLoginCode emails a one-time sign-in code (the magic-link flow). An
// unknown address still receives a code; the account is created when the code
// is verified.
func (s *AuthService) SendLoginCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return &entities.ValidationError{Field: "email"}
	}

	if err := s.sendCode(ctx, email, entities.LoginCodeMagicLink); err != nil {
		return fmt.Errorf("failed to send login code: %w", err)
	}

	s.logger.Info("Login code sent", "email", email)
	return nil
}

// VerifyLoginCode redeems a one-time code. A valid code signs the user in,
// creating and confirming the account if it does not exist yet.
func (s *AuthService) VerifyLoginCode(ctx context.Context, email, code string) (*ports.AuthResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	stored, err := s.authRepo.GetLoginCode(ctx, email, hashToken(code), entities.LoginCodeMagicLink)
	if err != nil {
		return nil, entities.ErrInvalidCredentials
	}
	if !stored.IsUsable(time.Now()) {
		return nil, entities.ErrInvalidCredentials
	}

	if err := s.authRepo.ConsumeLoginCode(ctx, stored.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to consume login code: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Possession of the emailed code proves the address.
		user = &entities.User{
			ID:             uuid.New(),
			Email:          email,
			EmailConfirmed: true,
			IsActive:       true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("User created via login code", "user_id", user.ID)
	}

	if !user.IsActive {
		return nil, entities.ErrAccountInactive
	}

	if !user.EmailConfirmed {
		if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
			s.logger.Warn("Failed to mark email confirmed", "error", err, "user_id", user.ID)
		}
		user.EmailConfirmed = true
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to update last login time", "error", err, "user_id", user.ID)
	}

	s.logger.Info("User logged in via code", "user_id", user.ID)

	return s.issueTokens(ctx, user)
}

// ResendConfirmation emails a fresh confirmation code.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address exists.
		s.logger.Warn("Confirmation resend for unknown email", "email", email)
		return nil
	}
	if user.EmailConfirmed {
		return nil
	}

	if err := s.sendCode(ctx, email, entities.LoginCodeConfirmation); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}

	s.logger.Info("Confirmation resent", "user_id", user.ID)
	return nil
}

// ConfirmEmail redeems a confirmation code and marks the account confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	stored, err := s.authRepo.GetLoginCode(ctx, email, hashToken(code), entities.LoginCodeConfirmation)
	if err != nil {
		return entities.ErrInvalidCredentials
	}
	if !stored.IsUsable(time.Now()) {
		return entities.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return entities.ErrUserNotFound
	}

	if err := s.authRepo.ConsumeLoginCode(ctx, stored.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to consume confirmation code: %w", err)
	}

	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}

	s.logger.Info("Email confirmed", "user_id", user.ID)
	return nil
}

// RefreshToken generates a new access token using a refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*ports.AuthResponse, error) {
	tokenHash := hashToken(refreshToken)

	storedToken, err := s.authRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	if storedToken.IsExpired() || storedToken.IsRevoked() {
		return nil, fmt.Errorf("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, entities.ErrUserNotFound
	}

	if !user.IsActive {
		return nil, entities.ErrAccountInactive
	}

	if err := s.authRepo.RevokeRefreshToken(ctx, tokenHash); err != nil {
		s.logger.Warn("Failed to revoke old refresh token", "error", err, "user_id", user.ID)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes all refresh tokens for a user.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.authRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	s.logger.Info("User logged out", "user_id", userID)
	return nil
}

// CurrentUser returns the signed-in user's account.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	if userID == uuid.Nil {
		return nil, &entities.AuthRequiredError{}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, entities.ErrUserNotFound
	}

	user.PasswordHash = ""
	return user, nil
}

// ValidateToken validates a JWT token and returns claims.
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &ports.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entities.User) (*ports.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.PasswordHash = ""

	return &ports.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtConfig.ExpiresIn.Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) generateAccessToken(user *entities.User) (string, error) {
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *AuthService) generateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)

	expiresAt := time.Now().Add(s.jwtConfig.RefreshExpiresIn)
	if err := s.authRepo.CreateRefreshToken(ctx, userID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return token, nil
}

// sendCode generates a numeric one-time code, stores its hash with a TTL and
// emails the plaintext.
func (s *AuthService) sendCode(ctx context.Context, email string, purpose entities.LoginCodePurpose) error {
	code, err := numericCode(s.authCfg.LoginCodeLength)
	if err != nil {
		return err
	}

	lc := &entities.LoginCode{
		Email:     email,
		CodeHash:  hashToken(code),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.authCfg.LoginCodeTTL),
	}
	if err := s.authRepo.CreateLoginCode(ctx, lc); err != nil {
		return err
	}

	subject := "Your DaySlot sign-in code"
	body := fmt.Sprintf("Your one-time sign-in code is %s. It expires in %s.", code, s.authCfg.LoginCodeTTL)
	if purpose == entities.LoginCodeConfirmation {
		subject = "Confirm your DaySlot account"
		body = fmt.Sprintf("Your confirmation code is %s. It expires in %s.", code, s.authCfg.LoginCodeTTL)
	}

	return s.mailer.Send(ctx, email, subject, body)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func numericCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
