/*
Copyright © 2026 The seoforge authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/history"
	"github.com/seoforge/seoforge/internal/server"
	"github.com/seoforge/seoforge/internal/session"
	"github.com/seoforge/seoforge/internal/validator"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the generation API over HTTP.

Endpoints:
  POST /api/generate                 Start a refinement session
  POST /api/sessions/{id}/continue   Spend extra iterations on a session
  GET  /api/sessions/{id}            Inspect a pending session
  GET  /health                       Liveness check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		if err := godotenv.Load(); err != nil {
			logger.Info("No .env file found, using environment variables")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		p, err := buildProvider(cfg)
		if err != nil {
			return err
		}
		cat, err := buildCatalog(cfg)
		if err != nil {
			return err
		}

		var archive *history.Store
		if cfg.History.Path != "" {
			if archive, err = history.New(cfg.History.Path); err != nil {
				return err
			}
			defer archive.Close()
		}

		runner := session.NewRunner(p, cat, validator.New(), logger)
		handler := server.NewHandler(runner, session.NewStore(), archive, logger)

		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 6 * time.Minute,
			IdleTimeout:  120 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			logger.Info("Server listening", "addr", srv.Addr, "provider", p.Name())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server failed", "error", err)
				os.Exit(1)
			}
		}()

		<-ctx.Done()
		stop()

		logger.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}
