package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meucofre/cofre/internal/ai"
	"github.com/meucofre/cofre/internal/api"
	"github.com/meucofre/cofre/internal/config"
	"github.com/meucofre/cofre/internal/ledger"
	"github.com/meucofre/cofre/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  `Serve the JSON API used by web and mobile clients, including Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			clients, err := ai.NewClients(ctx, config.LoadAIConfig())
			if err != nil {
				return err
			}

			// no local cache server-side; clients hold their own tokens
			sessions := session.NewService(store, nil, sessionConfig())
			books := ledger.NewService(store)
			server := api.NewServer(sessions, books, clients.Analyzer, clients.Extractor)

			if addr == "" {
				addr = viper.GetString("server.addr")
			}
			if addr == "" {
				addr = ":8787"
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("serving HTTP API", "addr", addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown failed: %w", err)
				}
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8787)")

	return cmd
}
