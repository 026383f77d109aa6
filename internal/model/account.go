package model

import "time"

// Account represents a person able to log in or be managed by an owner.
//
// A primary account authenticates on its own; its ID equals the identity ID
// assigned at registration and its DataContextID equals its own ID. A member
// account is a managed profile created by a primary account: ParentID points
// at the owner and DataContextID either equals the owner's context (shared
// books) or is a freshly generated ID (isolated books).
type Account struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ParentID      string    `json:"parent_id,omitempty"` // empty for primary accounts
	DataContextID string    `json:"data_context_id"`
	Members       []Account `json:"members,omitempty"` // reconstructed on load, never persisted inline
}

// IsMember reports whether the account is a managed member profile.
func (a *Account) IsMember() bool {
	return a.ParentID != ""
}

// SharesDataWith reports whether the account operates on the given
// account's data context.
func (a *Account) SharesDataWith(other *Account) bool {
	return other != nil && a.DataContextID == other.DataContextID
}

// Identity is an authentication record for a primary account. Members do
// not have identities; they are reachable only through context switching.
type Identity struct {
	CreatedAt    time.Time
	ID           string
	Email        string
	PasswordHash string
	Confirmed    bool
}

// Session is a server-side login session resolved from an opaque token.
type Session struct {
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Token      string
	IdentityID string
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
