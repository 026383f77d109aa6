package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/config"
	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/prefs"
	"github.com/meucofre/cofre/internal/service"
	"github.com/meucofre/cofre/internal/session"
	"github.com/meucofre/cofre/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion
// and runs pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "cofre.db")
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initPrefs opens the local preference store next to the database.
func initPrefs() (*prefs.Store, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate data directory: %w", err)
	}
	return prefs.NewStore(dir)
}

func sessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.RequireConfirmation = viper.GetBool("auth.require_confirmation")
	if ttl := viper.GetDuration("auth.session_ttl"); ttl > 0 {
		cfg.SessionTTL = ttl
	}
	return cfg
}

// app bundles the services a CLI command needs.
type app struct {
	store    service.Storage
	cache    *prefs.Store
	sessions *session.Service
	books    *ledger.Service
}

func newApp(ctx context.Context) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	cache, err := initPrefs()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		store:    store,
		cache:    cache,
		sessions: session.NewService(store, cache, sessionConfig()),
		books:    ledger.NewService(store),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		common.LogError(err, "failed to close storage", nil)
	}
}

// login is the resolved CLI session: the authenticated primary account
// plus the active account selected by the last context switch.
type login struct {
	Caller *model.Account
	Active *model.Account
	Token  string
}

// currentLogin resolves the cached session token against storage. The
// cache is display-only; the token must still map to a live session, and
// the cached active account is re-authorized through the access policy.
func (a *app) currentLogin(ctx context.Context) (*login, error) {
	cached, err := a.cache.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("not logged in: run 'cofre login' first")
	}

	caller, err := a.sessions.Resolve(ctx, cached.Token)
	if err != nil {
		_ = a.cache.ClearSession()
		return nil, fmt.Errorf("session expired: run 'cofre login' again")
	}

	active := caller
	if cached.Account.ID != "" && cached.Account.ID != caller.ID {
		switched, err := a.store.GetAccount(ctx, caller.ID, cached.Account.ID)
		if err != nil {
			return nil, fmt.Errorf("cached account no longer accessible: %w", err)
		}
		active = switched
	}

	return &login{Caller: caller, Active: active, Token: cached.Token}, nil
}

// monthWindow parses --year/--month flags, defaulting to the current month.
func monthWindow(yearFlag, monthFlag string) (int, time.Month, error) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if yearFlag != "" {
		y, err := strconv.Atoi(yearFlag)
		if err != nil || y < 1 {
			return 0, 0, fmt.Errorf("invalid year %q", yearFlag)
		}
		year = y
	}

	if monthFlag != "" {
		m, err := strconv.Atoi(monthFlag)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", monthFlag)
		}
		month = time.Month(m)
	}

	return year, month, nil
}
