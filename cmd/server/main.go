// Package main is the entry point of the school management API server. Run
// without flags it serves HTTP; with -migrate it applies or inspects the
// database schema and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, reset) and exit")
	flag.Parse()

	if err := run(*migrate); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run(migrate string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"smtp_configured", cfg.Mail.SMTPHost != "",
		"redis_configured", cfg.Redis.Addr != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	if migrate != "" {
		defer db.Close()
		return postgres.Migrate(ctx, db, migrate, l)
	}

	app, err := newApplication(cfg, l, db, prometheus.NewRegistry())
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		return err
	}
	return nil
}
