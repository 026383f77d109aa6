package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
)

// CreateAccount inserts an account row. Primary accounts carry their
// identity's ID; member accounts carry a fresh ID and a parent reference.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	var parent any
	if account.ParentID != "" {
		parent = account.ParentID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, parent_id, data_context_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Email, parent, account.DataContextID, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create account: %v", common.ErrStorage, err)
	}

	return nil
}

// GetAccount loads an account row with its members, subject to the access
// policy: the account itself or its parent.
func (s *SQLiteStorage) GetAccount(ctx context.Context, callerID, accountID string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if err := s.authorizeAccount(ctx, callerID, accountID); err != nil {
		return nil, err
	}

	account, err := s.scanAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	members, err := s.GetMembers(ctx, callerID, accountID)
	if err != nil {
		return nil, err
	}
	account.Members = members

	return account, nil
}

func (s *SQLiteStorage) scanAccount(ctx context.Context, accountID string) (*model.Account, error) {
	var (
		account model.Account
		parent  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, parent_id, data_context_id, created_at
		FROM accounts WHERE id = ?`,
		accountID,
	).Scan(&account.ID, &account.Name, &account.Email, &parent, &account.DataContextID, &account.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get account: %v", common.ErrStorage, err)
	}

	account.ParentID = parent.String
	return &account, nil
}

// GetMembers lists the member accounts whose parent reference equals
// parentID. The list is reconstructed on every load; it is never stored.
func (s *SQLiteStorage) GetMembers(ctx context.Context, callerID, parentID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(callerID, "callerID"); err != nil {
		return nil, err
	}
	if err := validateString(parentID, "parentID"); err != nil {
		return nil, err
	}
	if err := s.authorizeAccount(ctx, callerID, parentID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, parent_id, data_context_id, created_at
		FROM accounts WHERE parent_id = ?
		ORDER BY created_at`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query members: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var members []model.Account
	for rows.Next() {
		var (
			member model.Account
			parent sql.NullString
		)
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &parent, &member.DataContextID, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan member: %v", common.ErrStorage, err)
		}
		member.ParentID = parent.String
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate members: %v", common.ErrStorage, err)
	}

	return members, nil
}
