package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/meridian-crm/rulekit/internal/core/api"
	"github.com/meridian-crm/rulekit/internal/core/config"
	"github.com/meridian-crm/rulekit/internal/core/db"
	"github.com/meridian-crm/rulekit/internal/core/server"
	"github.com/meridian-crm/rulekit/internal/core/store"
	"github.com/meridian-crm/rulekit/internal/engine"
	"github.com/meridian-crm/rulekit/internal/logger"
)

const Version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rule administration and event API service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "HTTP server host")
	serveCmd.Flags().Int("port", 0, "HTTP server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	// Refuse to serve against an unmigrated database
	applied, err := db.MigrationApplied(database, "001_business_rules.sql")
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if !applied {
		return fmt.Errorf("migration 001_business_rules not applied - run 'rulekit migrate' first")
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}
	ruleStore := store.New(queries)

	token, err := config.APIToken()
	if err != nil {
		return err
	}
	if token == "" {
		slog.Warn("RULEKIT_API_TOKEN not set, API authentication disabled")
	}

	eng := engine.New(&engine.LogDispatcher{Logger: slog.Default()}, engine.WithStats(ruleStore))

	service, err := api.NewService(database, ruleStore, eng, cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service.Router(token))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("starting rulekit API", "version", Version, "addr", httpServer.Addr())
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		slog.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}

// loadServerConfig merges file/env config with command-line overrides.
// Flags win over everything else.
func loadServerConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	return cfg, nil
}

func openDatabase(cfg *config.ServerConfig) (*sqlx.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required (--db-url flag or RULEKIT_SERVER_DATABASE_URL)")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
