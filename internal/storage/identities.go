package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

// CreateIdentity inserts an authentication identity. The password hash is
// computed by the caller; storage never sees plaintext.
func (s *SQLiteStorage) CreateIdentity(ctx context.Context, email, passwordHash string, confirmed bool) (*model.Identity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}
	if err := validateString(passwordHash, "passwordHash"); err != nil {
		return nil, err
	}

	identity := &model.Identity{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Confirmed:    confirmed,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, confirmed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		identity.ID, identity.Email, identity.PasswordHash, identity.Confirmed, identity.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("%w: email already registered", common.ErrValidation)
		}
		return nil, fmt.Errorf("%w: create identity: %v", common.ErrStorage, err)
	}

	return identity, nil
}

// GetIdentityByEmail loads an identity by email, case-insensitively.
func (s *SQLiteStorage) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	var identity model.Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, confirmed, created_at
		FROM identities WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.Confirmed, &identity.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get identity: %v", common.ErrStorage, err)
	}

	return &identity, nil
}

// ConfirmIdentity marks a pending identity as confirmed.
func (s *SQLiteStorage) ConfirmIdentity(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE identities SET confirmed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: confirm identity: %v", common.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// CreateSession mints an opaque session token for an identity.
func (s *SQLiteStorage) CreateSession(ctx context.Context, identityID string, ttl time.Duration) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(identityID, "identityID"); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	now := time.Now().UTC()
	session := &model.Session{
		Token:      uuid.NewString(),
		IdentityID: identityID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, identity_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		session.Token, session.IdentityID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", common.ErrStorage, err)
	}

	return session, nil
}

// GetSession resolves a token to a live session. Expired sessions are
// deleted on read and reported as not found.
func (s *SQLiteStorage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(token, "token"); err != nil {
		return nil, err
	}

	var session model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, identity_id, expires_at, created_at
		FROM sessions WHERE token = ?`,
		token,
	).Scan(&session.Token, &session.IdentityID, &session.ExpiresAt, &session.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", common.ErrStorage, err)
	}

	if session.Expired(time.Now().UTC()) {
		_ = s.DeleteSession(ctx, token)
		return nil, common.ErrNotFound
	}

	return &session, nil
}

// DeleteSession terminates a session. Deleting an unknown token is not an
// error.
func (s *SQLiteStorage) DeleteSession(ctx context.Context, token string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token, "token"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("%w: delete session: %v", common.ErrStorage, err)
	}
	return nil
}
