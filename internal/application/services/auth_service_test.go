package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/infrastructure/config"
	"github.com/dayslot/core/internal/ports"
)

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*entities.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *memUserRepo) ConfirmEmail(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.EmailConfirmed = true
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// memAuthRepo is an in-memory AuthRepository for tests.
type memAuthRepo struct {
	mu     sync.Mutex
	tokens map[string]*ports.RefreshToken
	codes  []*entities.LoginCode
	nextID int
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{tokens: map[string]*ports.RefreshToken{}}
}

func (r *memAuthRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.tokens[tokenHash] = &ports.RefreshToken{
		ID:        r.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *memAuthRepo) GetRefreshToken(_ context.Context, tokenHash string) (*ports.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, errors.New("refresh token not found")
	}
	cp := *t
	return &cp, nil
}

func (r *memAuthRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *memAuthRepo) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *memAuthRepo) CreateLoginCode(_ context.Context, code *entities.LoginCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	code.ID = r.nextID
	code.CreatedAt = time.Now()
	cp := *code
	r.codes = append(r.codes, &cp)
	return nil
}

func (r *memAuthRepo) GetLoginCode(_ context.Context, email, codeHash string, purpose entities.LoginCodePurpose) (*entities.LoginCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if strings.EqualFold(c.Email, email) && c.CodeHash == codeHash && c.Purpose == purpose {
			cp := *c
			return &cp, nil
		}
	}
	return nil, entities.ErrLoginCodeNotFound
}

func (r *memAuthRepo) ConsumeLoginCode(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == id && c.ConsumedAt == nil {
			c.ConsumedAt = &at
			return nil
		}
	}
	return entities.ErrLoginCodeNotFound
}

func (r *memAuthRepo) CleanupExpired(_ context.Context) error { return nil }

// captureMailer records outbound mail so tests can read the emailed codes.
type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one mail")
	code := codePattern.FindString(m.sent[len(m.sent)-1])
	require.NotEmpty(t, code, "expected a code in the mail body")
	return code
}

func newAuthTestService(t *testing.T, requireConfirmation bool) (*AuthService, *memUserRepo, *memAuthRepo, *captureMailer) {
	t.Helper()
	users := newMemUserRepo()
	auth := newMemAuthRepo()
	mail := &captureMailer{}
	svc := NewAuthService(users, auth, mail,
		config.JWTConfig{
			Secret:           "test-secret",
			ExpiresIn:        time.Hour,
			RefreshExpiresIn: 24 * time.Hour,
			Issuer:           "test",
		},
		config.AuthConfig{
			RequireEmailConfirmation: requireConfirmation,
			LoginCodeTTL:             15 * time.Minute,
			LoginCodeLength:          6,
		},
		testLogger(t),
	)
	return svc, users, auth, mail
}

func TestRegister_AutoLoginWhenConfirmationOff(t *testing.T) {
	svc, _, _, mail := newAuthTestService(t, false)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "New@Example.com", Password: "password123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.False(t, resp.ConfirmationPending)
	require.NotNil(t, resp.User)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.True(t, resp.User.EmailConfirmed)
	assert.Empty(t, mail.sent, "no confirmation mail when confirmations are off")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterRequest{Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, ports.RegisterRequest{Email: "Dup@example.com", Password: "password456"})
	assert.ErrorIs(t, err, entities.ErrEmailTaken)
}

func TestRegister_ConfirmationFlow(t *testing.T) {
	svc, _, _, mail := newAuthTestService(t, true)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "pending@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, resp.ConfirmationPending)
	assert.Empty(t, resp.AccessToken)

	// Sign-in is blocked until the emailed code is redeemed.
	_, err = svc.Login(ctx, ports.LoginRequest{Email: "pending@example.com", Password: "password123"})
	assert.ErrorIs(t, err, entities.ErrEmailNotConfirmed)

	code := mail.lastCode(t)
	require.NoError(t, svc.ConfirmEmail(ctx, "pending@example.com", code))

	signed, err := svc.Login(ctx, ports.LoginRequest{Email: "pending@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, signed.AccessToken)
}

func TestLogin_InvalidPassword(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterRequest{Email: "who@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "who@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestLoginCode_CreatesAccountOnVerify(t *testing.T) {
	svc, users, _, mail := newAuthTestService(t, true)
	ctx := context.Background()

	require.NoError(t, svc.SendLoginCode(ctx, "fresh@example.com"))
	code := mail.lastCode(t)

	resp, err := svc.VerifyLoginCode(ctx, "fresh@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.EmailConfirmed, "possession of the code proves the address")

	stored, err := users.GetByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)

	// Codes are single use.
	_, err = svc.VerifyLoginCode(ctx, "fresh@example.com", code)
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestLoginCode_WrongCodeRejected(t *testing.T) {
	svc, _, _, mail := newAuthTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.SendLoginCode(ctx, "guess@example.com"))
	_ = mail.lastCode(t)

	_, err := svc.VerifyLoginCode(ctx, "guess@example.com", "000000")
	// A six-digit guess could collide with the real code, but the odds make
	// this deterministic enough for a unit test.
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestLoginCode_ExpiredRejected(t *testing.T) {
	svc, _, auth, mail := newAuthTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.SendLoginCode(ctx, "late@example.com"))
	code := mail.lastCode(t)

	auth.mu.Lock()
	for _, c := range auth.codes {
		c.ExpiresAt = time.Now().Add(-time.Minute)
	}
	auth.mu.Unlock()

	_, err := svc.VerifyLoginCode(ctx, "late@example.com", code)
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestRefreshToken_RotatesAndRevokes(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t, false)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "rotate@example.com", Password: "password123"})
	require.NoError(t, err)

	renewed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, renewed.RefreshToken)

	// The spent token cannot be replayed.
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.Error(t, err)
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t, false)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "bye@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.User.ID))

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.Error(t, err)
}

func TestCurrentUser_RequiresSignIn(t *testing.T) {
	svc, _, _, _ := newAuthTestService(t, false)
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx, uuid.Nil)
	var ar *entities.AuthRequiredError
	assert.ErrorAs(t, err, &ar)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Email: "me@example.com", Password: "password123"})
	require.NoError(t, err)

	me, err := svc.CurrentUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)
	assert.Empty(t, me.PasswordHash)
}
