// Command baydesk-devapi serves the back-office REST contract from a local
// sqlite catalog for development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jask/baydesk/internal/config"
	"github.com/jask/baydesk/internal/database"
	"github.com/jask/baydesk/internal/database/repository"
	"github.com/jask/baydesk/internal/devapi"
	blog "github.com/jask/baydesk/internal/log"
	"github.com/jask/baydesk/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("devapi: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	addr := flag.String("addr", cfg.DevAPI.Addr, "listen address")
	dbPath := flag.String("db", cfg.Database.Path, "sqlite database path")
	flag.Parse()

	logger, closer, err := blog.New(blog.FromEnv(blog.Options{
		Level:   cfg.Log.Level,
		Format:  "text",
		Console: true,
	}))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(*dbPath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := database.SeedDefaults(ctx, db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	svc := &service.CatalogService{Models: repository.NewModelRepo(db), SKUs: repository.NewSKURepo(db)}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           devapi.NewRouter(svc, cfg.DevAPI.Token, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("devapi listening", slog.String("addr", *addr), slog.String("db", *dbPath), slog.Bool("auth", cfg.DevAPI.Token != ""))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
