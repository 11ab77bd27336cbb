package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/champions-academy/clubgate/internal/db"
)

func newMigrateCommand(g *globalOptions) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			// Open applies every pending migration.
			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath, Env: cfg.Env})
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.Applied(cmd.Context(), conn)
			if err != nil {
				return err
			}
			log.Info("database up to date", "path", cfg.DBPath, "migrations", len(applied))

			if status {
				out := cmd.OutOrStdout()
				for _, m := range applied {
					fmt.Fprintf(out, "%04d  %-32s  %s\n", m.Version, m.Name, m.AppliedAt.Format(time.RFC3339))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "List applied migrations")
	return cmd
}
