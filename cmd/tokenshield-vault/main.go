package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jask/tokenshield/internal/config"
	"github.com/jask/tokenshield/internal/database"
	"github.com/jask/tokenshield/internal/database/repository"
	"github.com/jask/tokenshield/internal/logging"
	"github.com/jask/tokenshield/internal/testdata"
	"github.com/jask/tokenshield/internal/vault"
)

func main() {
	seed := flag.Int("seed", 0, "insert this many sample customers before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	db, err := database.Open(cfg.Vault.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := repository.NewCustomerRepo(db)
	if *seed > 0 {
		if _, err := testdata.Seed(context.Background(), db, *seed, time.Now().UnixNano()); err != nil {
			logger.Error("failed to seed customers", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("seeded sample customers", slog.Int("count", *seed))
	}
	if n, err := repo.Count(context.Background()); err == nil {
		logger.Info("vault ready", slog.String("db", cfg.Vault.DBPath), slog.Int("customers", n))
	}
	if cfg.Vault.Token == "" {
		logger.Warn("vault.token is empty, authentication disabled")
	}

	srv := vault.NewServer(vault.NewService(repo, logger), cfg.Vault.Token, logger)
	server := &http.Server{
		Addr:         cfg.Vault.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("vault listening", slog.String("addr", cfg.Vault.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("vault stopped")
	}
}
