// Package session implements the account hierarchy and authentication
// flow: registration, login with self-healing profile creation, managed
// member accounts, and context switching.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/service"
)

// Cache is the client-local session cache. It is display-only; every
// storage call re-checks entitlement regardless of what is cached here.
type Cache interface {
	SaveSession(account *model.Account, token string) error
	SaveAccount(account *model.Account) error
	ClearSession() error
}

// Config tunes the authentication flow.
type Config struct {
	// RequireConfirmation defers profile creation to the first successful
	// login, mirroring email-confirmation signup flows.
	RequireConfirmation bool
	SessionTTL          time.Duration
	MaxLoginAttempts    int
	AttemptWindow       time.Duration
}

// DefaultConfig returns the standard auth configuration.
func DefaultConfig() Config {
	return Config{
		SessionTTL:       30 * 24 * time.Hour,
		MaxLoginAttempts: 5,
		AttemptWindow:    15 * time.Minute,
	}
}

// Service orchestrates identities, sessions and the account hierarchy.
type Service struct {
	store    service.Storage
	cache    Cache
	cfg      Config
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewService creates a session service. The cache may be nil for
// server-side use where no local cache exists.
func NewService(store service.Storage, cache Cache, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = DefaultConfig().MaxLoginAttempts
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = DefaultConfig().AttemptWindow
	}
	return &Service{
		store:    store,
		cache:    cache,
		cfg:      cfg,
		attempts: make(map[string][]time.Time),
	}
}

// Login is the result of a successful authentication.
type Login struct {
	Account *model.Account
	Token   string
}

// Register creates an authentication identity and, unless confirmation is
// required, the primary account row whose ID and data context both equal
// the identity ID. With confirmation required, the account row is deferred
// to the first successful login and ErrConfirmationRequired is returned.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", common.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", common.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := s.store.CreateIdentity(ctx, email, string(hash), !s.cfg.RequireConfirmation)
	if err != nil {
		return nil, err
	}

	if s.cfg.RequireConfirmation {
		slog.Info("registration pending confirmation", "email", email)
		return nil, common.ErrConfirmationRequired
	}

	account := &model.Account{
		ID:            identity.ID,
		Name:          name,
		Email:         email,
		DataContextID: identity.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrProfileCreation, err)
	}

	return account, nil
}

// Confirm marks a pending registration as confirmed so the identity can
// log in. There is no mail delivery here; confirmation is an operator
// action taken on the host. Confirming twice is harmless.
func (s *Service) Confirm(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrInvalidInput)
	}

	identity, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}
	if identity.Confirmed {
		return nil
	}

	if err := s.store.ConfirmIdentity(ctx, identity.ID); err != nil {
		return err
	}

	slog.Info("registration confirmed", "email", email)
	return nil
}

// Login authenticates and resolves the caller's account, creating the row
// on the fly with defaults derived from the identity when it is missing
// (the confirmation-flow edge case). On profile-creation failure the fresh
// session is rolled back and an auth error returned.
func (s *Service) Login(ctx context.Context, email, password string) (*Login, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, common.ErrInvalidCredentials
	}

	if s.throttled(email) {
		return nil, common.ErrRateLimited
	}

	identity, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.recordAttempt(email)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		s.recordAttempt(email)
		return nil, common.ErrInvalidCredentials
	}
	if !identity.Confirmed {
		return nil, common.ErrConfirmationRequired
	}

	session, err := s.store.CreateSession(ctx, identity.ID, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, identity.ID, identity.ID)
	if errors.Is(err, common.ErrNotFound) {
		account, err = s.healProfile(ctx, identity)
	}
	if err != nil {
		_ = s.store.DeleteSession(ctx, session.Token)
		return nil, fmt.Errorf("%w: %v", common.ErrProfileCreation, err)
	}

	s.clearAttempts(email)
	if s.cache != nil {
		if err := s.cache.SaveSession(account, session.Token); err != nil {
			slog.Warn("failed to cache session", "error", err)
		}
	}

	return &Login{Account: account, Token: session.Token}, nil
}

// healProfile creates the missing account row with best-effort defaults
// derived from the authenticated identity.
func (s *Service) healProfile(ctx context.Context, identity *model.Identity) (*model.Account, error) {
	name := identity.Email
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}

	account := &model.Account{
		ID:            identity.ID,
		Name:          name,
		Email:         identity.Email,
		DataContextID: identity.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	slog.Info("created missing profile on login", "account_id", account.ID)
	return account, nil
}

// Resolve maps a session token back to the authenticated primary account.
func (s *Service) Resolve(ctx context.Context, token string) (*model.Account, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.store.GetAccount(ctx, session.IdentityID, session.IdentityID)
}

// AddMember creates a managed member profile under the owner. The member
// shares the owner's data context when shareData is true, otherwise it
// receives a freshly generated isolated context. Members have no identity
// of their own; they are reachable only via context switching. The owner
// is returned reloaded with its member list.
func (s *Service) AddMember(ctx context.Context, callerID string, owner *model.Account, name, email string, shareData bool) (*model.Account, error) {
	if owner == nil {
		return nil, fmt.Errorf("%w: owner is required", common.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is required", common.ErrInvalidInput)
	}
	if owner.IsMember() {
		return nil, fmt.Errorf("%w: members cannot have members of their own", common.ErrInvalidInput)
	}

	memberID := uuid.NewString()
	contextID := memberID
	if shareData {
		contextID = owner.DataContextID
	}

	member := &model.Account{
		ID:            memberID,
		Name:          name,
		Email:         strings.ToLower(strings.TrimSpace(email)),
		ParentID:      owner.ID,
		DataContextID: contextID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, member); err != nil {
		return nil, fmt.Errorf("%w: member creation rejected: %v", common.ErrValidation, err)
	}

	return s.store.GetAccount(ctx, callerID, owner.ID)
}

// SwitchAccount loads the target account and its members without
// re-authenticating. It serves both descending from owner to member and
// returning from member to owner; the storage policy rejects targets the
// caller does not own.
func (s *Service) SwitchAccount(ctx context.Context, callerID, targetID string) (*model.Account, error) {
	account, err := s.store.GetAccount(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SaveAccount(account); err != nil {
			slog.Warn("failed to cache switched account", "error", err)
		}
	}

	return account, nil
}

// Logout terminates the session and clears the local cache.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.cache != nil {
		if err := s.cache.ClearSession(); err != nil {
			slog.Warn("failed to clear cached session", "error", err)
		}
	}
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

func (s *Service) throttled(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.cfg.AttemptWindow)
	recent := s.attempts[email][:0]
	for _, t := range s.attempts[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.attempts[email] = recent

	return len(recent) >= s.cfg.MaxLoginAttempts
}

func (s *Service) recordAttempt(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[email] = append(s.attempts[email], time.Now())
}

func (s *Service) clearAttempts(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
}
