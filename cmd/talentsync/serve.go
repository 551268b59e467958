package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talentsync/internal/db"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/jonathan/talentsync/internal/server"
	"github.com/jonathan/talentsync/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: "Start an HTTP server exposing LaTeX and PDF generation. Document history is " +
		"recorded when a database URL is configured (TALENTSYNC_DATABASE_URL or DATABASE_URL).",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	generator, err := newGenerator("")
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	stack, err := newCompileStack(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer stack.Close()

	if !stack.engine.Available() {
		logger.Warn("LaTeX engine not found on PATH, PDF requests will return the LaTeX fallback", "engine", cfg.Compiler.Engine)
	}

	opts := server.Options{
		Config:    cfg.Server,
		Generator: generator,
		Compiler:  stack.compiler,
		RateLimit: ratelimit.LoadConfig(),
		Metrics:   metrics,
		Logger:    logger,
	}

	if cfg.Database.URL != "" {
		database, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		opts.Store = database
	} else if cfg.Server.DocumentHistory {
		logger.Warn("document history enabled without a database, its routes will return 503")
	}

	return server.New(opts).Start(ctx)
}

func openDatabase(ctx context.Context, url string) (*db.DB, error) {
	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	return database, nil
}
