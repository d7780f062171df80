package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/auth"
	"github.com/rpggio/stepwise/internal/config"
	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/events"
	"github.com/rpggio/stepwise/internal/mcp"
	"github.com/rpggio/stepwise/internal/metrics"
	"github.com/rpggio/stepwise/internal/scheduler"
	"github.com/rpggio/stepwise/internal/sqlite"
	"github.com/rpggio/stepwise/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	verifier, err := account.VerifierForMode(cfg.Auth.PasswordMode)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("publishing lifecycle events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	catalogSvc := catalog.NewService(sqlite.NewCatalogRepository(db), logger)
	accountSvc := account.NewService(sqlite.NewUserRepository(db), verifier, logger)
	journalSvc := journal.NewService(sqlite.NewJournalRepository(db), logger)
	progressSvc := progress.NewService(
		sqlite.NewUserActivityRepository(db),
		catalogSvc,
		accountSvc,
		logger,
		progress.WithJournal(journalSvc),
		progress.WithPublisher(publisher),
	)

	if cfg.Catalog.SeedOnStart {
		reqs, err := catalog.StarterCatalog()
		if err != nil {
			return err
		}
		n, err := catalogSvc.Seed(ctx, reqs)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info("catalog seeded", "added", n)
	}

	if cfg.Cleanup.Enabled {
		jobs := scheduler.New(logger)
		if err := jobs.AddOrphanCleanup(cfg.Cleanup.Schedule, progressSvc); err != nil {
			return err
		}
		jobs.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			jobs.Stop(stopCtx)
		}()
	}

	mcpConfig := mcp.Config{
		Services:      mcp.Services{Catalog: catalogSvc, Progress: progressSvc},
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	}

	if cfg.Transport.Mode == "stdio" {
		user, err := accountSvc.GetByUsername(ctx, cfg.Auth.StdioUser)
		if err != nil {
			return fmt.Errorf("resolve stdio user %q: %w", cfg.Auth.StdioUser, err)
		}
		mcpConfig.StdioSession = auth.SessionFor(user)
		return runStdioMode(logger, mcp.NewServer(mcpConfig), user.Username)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	mcpConfig.Tokens = tokens

	routerCfg := transport.Config{
		Accounts: accountSvc,
		Catalog:  catalogSvc,
		Progress: progressSvc,
		Journal:  journalSvc,
		Tokens:   tokens,
		DB:       db,
		MCP:      mcp.NewHTTPHandler(mcp.NewServer(mcpConfig)),
		Logger:   logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = metrics.Handler()
	}
	return runHTTPMode(logger, transport.NewServer(routerCfg), cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server, username string) error {
	logger.Info("starting stdio transport", "user", username)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
