package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quizmaster/internal/config"
	"quizmaster/internal/httpapi"
	"quizmaster/internal/logger"
	"quizmaster/internal/opentdb"
	"quizmaster/internal/seed"
	"quizmaster/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("quiz-service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	seedOpts := seed.Options{
		AdminEmail:    cfg.Server.AdminEmail,
		AdminPassword: cfg.Server.AdminPassword,
		Logger:        log.Named("seed"),
	}
	if err := seed.EnsureAdmin(ctx, store, seedOpts); err != nil {
		return err
	}
	if cfg.Server.SeedDemo {
		if err := seed.Demo(ctx, store, seedOpts); err != nil {
			return err
		}
	}
	if cfg.Server.OpenTDBAmount > 0 {
		trivia := opentdb.NewClient(&http.Client{Timeout: 15 * time.Second})
		if err := seed.ImportTrivia(ctx, store, trivia, cfg.Server.OpenTDBAmount, seedOpts); err != nil {
			log.Warn("trivia import skipped", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(store, log.Named("http"), httpapi.Options{
			PassThreshold:      cfg.Server.PassThreshold,
			SessionTTL:         cfg.Server.SessionTTL,
			JWTSecret:          cfg.Server.JWTSecret,
			LoginRatePerMinute: cfg.Server.LoginRatePerMinute,
			SecureCookies:      cfg.Server.SecureCookies,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("quiz-service listening", zap.String("addr", cfg.Server.Addr), zap.String("db", cfg.Server.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
