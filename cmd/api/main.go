package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ledgerbook/backend/internal/auth"
	"github.com/ledgerbook/backend/internal/config"
	"github.com/ledgerbook/backend/internal/db"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/http/handlers"
	"github.com/ledgerbook/backend/internal/observability"
	"github.com/ledgerbook/backend/internal/server"
	filestore "github.com/ledgerbook/backend/internal/storage/file"
	pgstore "github.com/ledgerbook/backend/internal/storage/postgres"
	"github.com/ledgerbook/backend/internal/ws"
)

type ledgerStore interface {
	ledger.BorrowerStore
	ledger.LoanStore
	Ping(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store ledgerStore
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect postgres", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := pgstore.NewStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate schema", "err", err)
			os.Exit(1)
		}
		store = pg
	default:
		fs, err := filestore.NewStore(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open data dir", "err", err, "dir", cfg.DataDir)
			os.Exit(1)
		}
		store = fs
	}

	hub := ws.NewHub()
	ledgerService := ledger.NewService(store, store, ws.NewBroadcaster(hub))

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(cfg.AuthUsername, cfg.AuthPassword, cfg.AuthPasswordHash, jwtManager, cfg.SessionTTL)
	cookieCfg := auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:          store,
		AuthHandler:     handlers.NewAuthHandler(authService, cookieCfg),
		BorrowerHandler: handlers.NewBorrowerHandler(ledgerService),
		LoanHandler:     handlers.NewLoanHandler(ledgerService),
		SummaryHandler:  handlers.NewSummaryHandler(ledgerService),
		WSHandler:       ws.NewHandler(hub),
		JWTManager:      jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "storage", cfg.StorageDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
