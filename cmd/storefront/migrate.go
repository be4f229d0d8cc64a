// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"storefront/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn := a.cfg.DSN()
			if dsn == "" {
				return errors.New("migrate: no database configured (set db.host)")
			}
			ctx := cmd.Context()
			db, err := database.Connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			if seed {
				if err := database.Seed(ctx, db); err != nil {
					return err
				}
			}
			slog.Info("migrations applied", "seeded", seed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo catalog data into an empty database")
	return cmd
}
