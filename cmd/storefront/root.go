// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/engine"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Render and serve a Maropost-style storefront theme",
		Long: `storefront renders store pages from a theme directory of wrappers,
partials and page templates, filling them with catalog data from PostgreSQL.

Configuration comes from built-in defaults, an optional YAML file (--config)
and STOREFRONT_ environment variables, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// init loads configuration and installs the default logger. Logs go to
// stderr so render output on stdout stays clean.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.cfg = cfg
	return nil
}

// openDB connects and migrates the database, seeding it in development.
// It returns nil when no database is configured.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	dsn := a.cfg.DSN()
	if dsn == "" {
		slog.Warn("no database configured, rendering from an empty catalog")
		return nil, nil
	}
	db, err := database.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if a.cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// newEngine builds the theme engine over db, which may be nil.
func (a *app) newEngine(db *sql.DB, debug bool, rec *metrics.Recorder) *engine.Engine {
	var catalog engine.Catalog
	if db != nil {
		catalog = store.NewCatalogStore(db)
	}
	t := a.cfg.Theme
	eng := engine.New(catalog, engine.Options{
		ThemeDir:           t.Dir,
		AssetBaseURL:       t.AssetBaseURL,
		TemplateCacheSize:  t.CacheSize,
		MaxIncludeDepth:    t.MaxIncludeDepth,
		Debug:              t.Debug || debug,
		DiagnosticComments: t.DiagnosticComments,
	})
	eng.SetMetrics(rec)
	return eng
}

// outputCache builds the configured rendered-page cache. The returned
// close function releases any connection and is never nil.
func (a *app) outputCache(ctx context.Context) (engine.OutputCache, func(), error) {
	noop := func() {}
	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(a.cfg.CacheTTL(), a.cfg.Cache.Size, nil), noop, nil
	case config.CacheValkey:
		client, err := cache.ConnectValkey(ctx, a.cfg.ValkeyAddr(), a.cfg.Valkey.Password, a.cfg.Valkey.DB)
		if err != nil {
			return nil, noop, err
		}
		return cache.NewPageCache(client, a.cfg.Cache.Namespace, a.cfg.CacheTTL()), func() { client.Close() }, nil
	case config.CacheNone:
		return nil, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
}
