package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arllen133/blogcms/internal/config"
	"github.com/arllen133/blogcms/internal/orm"
	"github.com/arllen133/blogcms/internal/sanitize"
	"github.com/arllen133/blogcms/internal/service"
	"github.com/arllen133/blogcms/internal/store"
	"github.com/arllen133/blogcms/internal/telemetry"
	transport "github.com/arllen133/blogcms/internal/transport/http"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply the schema and exit")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment")
	flag.Parse()

	if err := run(*envFile, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "blogd: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string, migrateOnly bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	dialect, err := orm.DialectFor(cfg.DBDriver)
	if err != nil {
		return err
	}
	session, err := orm.Open(ctx, dialect, cfg.DBDSN,
		orm.WithLogger(logger),
		orm.WithDefaultTracer(),
		orm.WithDefaultMeter(),
		orm.WithSlowQueryThreshold(cfg.SlowQueryThreshold),
		orm.WithQueryLogging(cfg.LogQueries),
	)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer session.Close()
	session.DB().SetMaxOpenConns(cfg.MaxOpenConns)

	if err := store.Migrate(ctx, session); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("schema ready", "dialect", dialect.Name())
	if migrateOnly {
		return nil
	}

	content := service.NewContentService(store.New(session), service.WithLogger(logger))
	reader := service.NewReader(content, sanitize.New(), cfg.ExcerptLength)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      transport.NewRouter(content, reader, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
