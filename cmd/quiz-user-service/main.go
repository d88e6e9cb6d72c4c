package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"quizmaster/internal/config"
	"quizmaster/internal/logger"
	"quizmaster/internal/userclient"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to a YAML config file")
	server := flag.String("server", "", "quiz service base URL (overrides client.server_url)")
	timeout := flag.Duration("timeout", 0, "HTTP timeout (overrides client.http_timeout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Client.ServerURL = *server
	}
	if *timeout > 0 {
		cfg.Client.HTTPTimeout = *timeout
	}

	log := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		File:         cfg.Log.File,
		MaxSizeMB:    cfg.Log.MaxSizeMB,
		MaxBackups:   cfg.Log.MaxBackups,
		MaxAgeDays:   cfg.Log.MaxAgeDays,
		ConsoleLevel: "warn",
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = userclient.Run(ctx, os.Stdin, os.Stdout, userclient.Config{
		ServerURL:          cfg.Client.ServerURL,
		HTTPTimeout:        cfg.Client.HTTPTimeout,
		LoginRedirectDelay: cfg.Client.LoginRedirectDelay,
		UsersPerPage:       cfg.Client.UsersPerPage,
		Logger:             log,
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
