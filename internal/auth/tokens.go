package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

// TokenStore persists refresh tokens for rotation and revocation checks.
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore creates a token store.
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Save stores a freshly issued refresh token.
func (s *TokenStore) Save(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (account_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, accountID, token, expiresAt)
	return err
}

// Redeem validates a refresh token and revokes it in one step, returning the
// account it belongs to. Rotation: every refresh consumes the old token.
func (s *TokenStore) Redeem(ctx context.Context, token string, now time.Time) (string, error) {
	var accountID string
	err := s.db.QueryRowContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE token = $1 AND NOT revoked AND expires_at > $2
		RETURNING account_id
	`, token, now).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// Revoke marks a token revoked (logout).
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
