package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/laraxichu/goteo/internal/adapters/auth/remote"
	"github.com/laraxichu/goteo/internal/adapters/notify/lognotify"
	"github.com/laraxichu/goteo/internal/adapters/notify/pushover"
	mem "github.com/laraxichu/goteo/internal/adapters/storage/memory"
	pg "github.com/laraxichu/goteo/internal/adapters/storage/postgres"
	rdb "github.com/laraxichu/goteo/internal/adapters/storage/redis"
	"github.com/laraxichu/goteo/internal/config"
	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/session"
	"github.com/laraxichu/goteo/internal/platform/logger"
	"github.com/laraxichu/goteo/internal/ports/auth"
	"github.com/laraxichu/goteo/internal/ports/notify"
	"github.com/laraxichu/goteo/internal/router"
)

// @title Goteo API
// @version 1.0
// @description Calculadora de infusiones IV con historial y recordatorios.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "goteo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closer, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn("history store close failed", map[string]any{"error": err})
		}
	}()

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	sessions := session.NewManager(session.ManagerOptions{
		Notifier: notifier,
		Logger:   log,
		IdleTTL:  cfg.Session.IdleTTL,
	})
	defer sessions.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: router.NewRouter(router.Options{
			AuthVerifier:           verifier,
			AllowAnonymous:         cfg.Auth.AllowAnonymous,
			History:                repo,
			Sessions:               sessions,
			Logger:                 log,
			DefaultReminderMinutes: cfg.Reminder.DefaultMinutesBefore,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    cfg.Server.Addr,
			"storage": cfg.Storage.Driver,
			"notify":  cfg.Notify.Driver,
		})
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
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server exited", nil)
	return nil
}

func openHistory(ctx context.Context, cfg *config.Config) (history.Repository, io.Closer, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := pg.Open(ctx, cfg.Storage.PostgresDSN, pg.PoolOptions{})
		if err != nil {
			return nil, nil, err
		}
		repo := pg.NewHistoryRepo(db, cfg.App.ID)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db, nil

	case "redis":
		c := rdb.NewClient(rdb.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		if err := rdb.Ping(ctx, c); err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return rdb.NewHistoryRepo(c, cfg.App.ID), c, nil
	}

	return mem.NewHistoryRepo(), closerFunc(func() error { return nil }), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newNotifier(cfg *config.Config, log logger.Logger) (notify.Notifier, error) {
	switch cfg.Notify.Driver {
	case "pushover":
		n, err := pushover.New(pushover.Config{
			Token: cfg.Notify.PushoverToken,
			User:  cfg.Notify.PushoverUser,
			URL:   cfg.Notify.PushoverURL,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	case "none":
		// sin canal: el permiso queda en "unsupported"
		return nil, nil
	}
	return lognotify.New(log), nil
}

func newVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	if cfg.Auth.VerifyURL == "" {
		// sin verificador => X-Debug-User-ID, solo en dev
		if !cfg.IsDev() {
			return nil, errors.New("auth.verify_url is required outside dev")
		}
		return nil, nil
	}
	v, err := remote.NewVerifier(remote.Config{
		VerifyURL: cfg.Auth.VerifyURL,
		APIKey:    cfg.Auth.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
