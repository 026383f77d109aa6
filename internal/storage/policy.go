package storage

import (
	"context"
	"fmt"

	"github.com/meucofre/cofre/internal/common"
)

// The access policy lives here and nowhere else. It mirrors the row-level
// rules the data is partitioned by:
//
//   - an accounts row is visible to the account itself and to its parent;
//   - a data context is visible to the account whose ID equals the context
//     ID and to the parent of an account whose ID equals the context ID.
//
// Denials surface as ErrNotFound so a probing caller cannot distinguish
// "does not exist" from "not yours".

// authorizeAccount checks that callerID may read or write the given
// accounts row.
func (s *SQLiteStorage) authorizeAccount(ctx context.Context, callerID, accountID string) error {
	if callerID == accountID {
		return nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE id = ? AND parent_id = ?`,
		accountID, callerID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: policy check: %v", common.ErrStorage, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// authorizeContext checks that callerID may read or write rows scoped to
// the given data context.
func (s *SQLiteStorage) authorizeContext(ctx context.Context, callerID, contextID string) error {
	if callerID == contextID {
		return nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE id = ? AND parent_id = ?`,
		contextID, callerID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: policy check: %v", common.ErrStorage, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
