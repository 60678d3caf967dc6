// ABOUTME: CLI command that runs the REST API server.
// ABOUTME: Serves the chi router with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/habits/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Run the HTTP API server.

Clients scope requests with the X-Owner-ID header; requests without one use
the "default" owner.

ENDPOINTS:

  /habits        CRUD, check-ins, history
  /goals         CRUD, progress, stats
  /analytics     trends, heatmap, per-habit, month
  /achievements  badge progress
  /dashboard     summary, weekly, leaderboard

Set HABITS_ENV=production for JSON logs.

EXAMPLES:

  habits serve                  # Listen on :8080
  habits serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := api.NewLogger(os.Getenv("HABITS_ENV"))
		defer func() { _ = log.Sync() }()

		server, err := api.NewServer(repo, clk, log)
		if err != nil {
			return fmt.Errorf("failed to build server: %w", err)
		}

		srv := &http.Server{
			Addr:         serveAddr,
			Handler:      server.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("server listening", zap.String("addr", serveAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
