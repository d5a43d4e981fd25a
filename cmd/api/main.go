package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alaraguvercin/kolay-hatirla/internal/adapters/auth/identitykit"
	pg "github.com/alaraguvercin/kolay-hatirla/internal/adapters/storage/postgres"
	"github.com/alaraguvercin/kolay-hatirla/internal/config"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
	"github.com/alaraguvercin/kolay-hatirla/internal/router"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{
		Log:                  log,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
	}

	if cfg.DatabaseURL != "" {
		db, err := pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.Migrate(ctx, db); err != nil {
			cancel()
			log.Error("postgres migrate failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		cancel()

		opts.DB = db
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store", nil)
	}

	if cfg.IdentityBaseURL != "" {
		client, err := identitykit.NewClient(identitykit.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
		})
		if err != nil {
			log.Error("identity client init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		opts.Provider = client
		opts.AuthVerifier = identitykit.NewVerifier(client)
	} else {
		log.Warn("IDENTITY_BASE_URL not set, running in dev auth mode", nil)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
