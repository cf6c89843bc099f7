// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the blog platform API server.
// It loads configuration, connects to PostgreSQL and Valkey, starts the
// counter reconciler and serves HTTP until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vue-rookie/blog-platform/internal/cache"
	"github.com/vue-rookie/blog-platform/internal/config"
	"github.com/vue-rookie/blog-platform/internal/database"
	"github.com/vue-rookie/blog-platform/internal/handlers"
	"github.com/vue-rookie/blog-platform/internal/middleware"
	"github.com/vue-rookie/blog-platform/internal/reconcile"
	"github.com/vue-rookie/blog-platform/internal/router"
	"github.com/vue-rookie/blog-platform/internal/session"
	"github.com/vue-rookie/blog-platform/internal/store"
	"github.com/vue-rookie/blog-platform/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// No-op when data already exists.
	if cfg.IsDev() {
		if err := database.Seed(context.Background(), db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessions := session.NewStore(valkeyClient, cfg.SessionTTL, secureCookies)
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	responses := cache.NewResponseCache(valkeyClient, cfg.CacheTTL)

	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	auditLog := store.NewAuditLogStore(db)
	reconciler := store.NewReconciler(db)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
	defer authLimiter.Stop()
	commentLimiter := middleware.NewRateLimiter(cfg.RateLimitComments, time.Minute)
	defer commentLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:       sessions,
		Tokens:         tokens,
		Users:          userStore,
		Posts:          handlers.NewPosts(postStore, categoryStore, responses, auditLog),
		Categories:     handlers.NewCategories(categoryStore, responses, auditLog),
		Comments:       handlers.NewComments(commentStore, auditLog),
		Accounts:       handlers.NewUsers(userStore, auditLog),
		Auth:           handlers.NewAuth(userStore, sessions, tokens),
		Maintenance:    handlers.NewMaintenance(reconciler, auditLog, responses),
		AuthLimiter:    authLimiter,
		CommentLimiter: commentLimiter,
		SecureCookies:  secureCookies,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := reconcile.NewRunner(reconciler, responses, cfg.RecountInterval)
	if runner.Enabled() {
		go runner.Run(ctx)
	} else {
		slog.Warn("counter reconciler disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger outputs text in development and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
