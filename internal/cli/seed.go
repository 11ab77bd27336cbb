package cli

import (
	"github.com/spf13/cobra"

	"github.com/champions-academy/clubgate/internal/db"
)

func newSeedCommand(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo members (dev only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			if cfg.Env != "dev" && !force {
				log.Warn("refusing to seed outside dev; pass --force to override", "env", cfg.Env)
				return nil
			}

			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath, Env: cfg.Env})
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.SeedDev(cmd.Context(), conn, seedOptions(cfg)); err != nil {
				return err
			}
			log.Info("dev seed loaded", "path", cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Seed even when CLUBGATE_ENV is not dev")
	return cmd
}
