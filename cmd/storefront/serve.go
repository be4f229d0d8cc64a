// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/router"
	"storefront/internal/store"
	"storefront/internal/watcher"
)

// Admin endpoints allow this many calls per client each minute.
const adminCallsPerMinute = 30

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the storefront HTTP server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	slog.Info("configuration loaded",
		"env", cfg.Server.Env,
		"addr", cfg.Addr(),
		"theme", cfg.Theme.Dir,
		"cache", cfg.Cache.Backend,
	)

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	var (
		cacheLog handlers.InvalidationLog
		history  handlers.InvalidationHistory
		watchLog watcher.InvalidationLog
	)
	if db != nil {
		defer db.Close()
		logStore := store.NewCacheLogStore(db)
		cacheLog, history, watchLog = logStore, logStore, logStore
	}

	rec := metrics.NewRecorder(nil)
	eng := a.newEngine(db, false, rec)

	output, closeOutput, err := a.outputCache(ctx)
	if err != nil {
		return err
	}
	defer closeOutput()
	if output != nil {
		eng.SetOutputCache(output)
	}

	if cfg.Theme.Watch {
		w, err := watcher.New(cfg.Theme.Dir, eng, watchLog, watcher.DefaultDebounce)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Error("theme watcher stopped", "error", err)
			}
		}()
		slog.Info("watching theme for changes", "dir", cfg.Theme.Dir)
	}
	if cfg.Admin.Token == "" {
		slog.Warn("admin token not set, admin endpoints disabled")
	}

	r := router.New(router.Config{
		ThemeDir:     cfg.Theme.Dir,
		AssetBaseURL: cfg.Theme.AssetBaseURL,
		AdminToken:   cfg.Admin.Token,
		AdminLimiter: middleware.NewRateLimiter(adminCallsPerMinute, time.Minute, nil),
		Metrics:      rec.Handler(),
	}, handlers.NewStorefront(eng), handlers.NewAdmin(eng, cacheLog, history))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
