package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"quizmaster/internal/cli"
	"quizmaster/internal/config"
	"quizmaster/internal/logger"
	"quizmaster/internal/opentdb"
	"quizmaster/internal/seed"
	"quizmaster/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to a YAML config file")
	dbPath := flag.String("db", "", "database path (overrides server.db_path)")
	flag.Parse()

	if err := run(*configPath, *dbPath, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(configPath, dbPath string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Server.DBPath = dbPath
	}

	log := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		File:         cfg.Log.File,
		ConsoleLevel: "warn",
	})
	defer func() { _ = log.Sync() }()

	store, err := sqlite.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	return cli.Run(context.Background(), args, os.Stdout, cli.Env{
		Store:  store,
		Trivia: opentdb.NewClient(&http.Client{Timeout: 15 * time.Second}),
		Seed: seed.Options{
			AdminEmail:    cfg.Server.AdminEmail,
			AdminPassword: cfg.Server.AdminPassword,
		},
		Logger: log,
	})
}
