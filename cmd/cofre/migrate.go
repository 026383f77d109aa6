package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/meucofre/cofre/internal/config"
	"github.com/meucofre/cofre/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Initialize or update the database schema to the latest version.`,
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dir, err := config.DataDir()
		if err != nil {
			return fmt.Errorf("failed to locate data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "cofre.db")
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Database: %s\nCurrent version: %d\nLatest version:  %d\n",
			dbPath, current, storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("running database migrations", "database", dbPath)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed")
	return nil
}
