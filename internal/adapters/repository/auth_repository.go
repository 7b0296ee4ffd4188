package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/ports"
)

// AuthRepositoryImpl implements the AuthRepository interface
type AuthRepositoryImpl struct {
	db *sqlx.DB
}

// NewAuthRepository creates a new auth repository
func NewAuthRepository(db *sqlx.DB) ports.AuthRepository {
	return &AuthRepositoryImpl{db: db}
}

func (r *AuthRepositoryImpl) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var token ports.RefreshToken
	err := r.db.GetContext(ctx, &token, query, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("refresh token not found")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &token, nil
}

func (r *AuthRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP
		WHERE token_hash = $1 AND revoked_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND revoked_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) CreateLoginCode(ctx context.Context, code *entities.LoginCode) error {
	query := `
		INSERT INTO login_codes (email, code_hash, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		code.Email, code.CodeHash, code.Purpose, code.ExpiresAt,
	).Scan(&code.ID, &code.CreatedAt)

	if err != nil {
		return fmt.Errorf("create login code: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) GetLoginCode(ctx context.Context, email, codeHash string, purpose entities.LoginCodePurpose) (*entities.LoginCode, error) {
	query := `
		SELECT id, email, code_hash, purpose, expires_at, consumed_at, created_at
		FROM login_codes
		WHERE lower(email) = lower($1) AND code_hash = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1`

	var code entities.LoginCode
	err := r.db.GetContext(ctx, &code, query, email, codeHash, purpose)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrLoginCodeNotFound
		}
		return nil, fmt.Errorf("get login code: %w", err)
	}

	return &code, nil
}

func (r *AuthRepositoryImpl) ConsumeLoginCode(ctx context.Context, id int, at time.Time) error {
	query := `
		UPDATE login_codes SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("consume login code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrLoginCodeNotFound
	}

	return nil
}

func (r *AuthRepositoryImpl) CleanupExpired(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP`); err != nil {
		return fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM login_codes WHERE expires_at < CURRENT_TIMESTAMP`); err != nil {
		return fmt.Errorf("cleanup login codes: %w", err)
	}
	return nil
}
