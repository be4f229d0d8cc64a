// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		params  []string
		debug   bool
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render one page to stdout",
		Long: `Render the page for <url> and print the HTML to stdout. With --debug the
render record (page type, templates, includes, cache hits and timing) is
printed to stderr.`,
		Example: `  storefront render /product/abc123
  storefront render /search --param q=mug --debug
  storefront render / --offline -c theme.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageParams, err := parseParams(params)
			if err != nil {
				return err
			}

			var db *sql.DB
			if !offline {
				db, err = a.openDB(cmd.Context())
				if err != nil {
					return err
				}
				if db != nil {
					defer db.Close()
				}
			}

			eng := a.newEngine(db, debug, nil)
			html, dbg, err := eng.RenderPage(cmd.Context(), args[0], pageParams, nil, nil)
			if dbg != nil {
				writeHeaders(cmd.ErrOrStderr(), dbg.Headers())
			}
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "page parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&debug, "debug", false, "print the render debug record to stderr")
	cmd.Flags().BoolVar(&offline, "offline", false, "render without connecting to the database")
	return cmd
}

func parseParams(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

func writeHeaders(w io.Writer, headers map[string]string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, headers[k])
	}
}
