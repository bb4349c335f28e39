package main

import (
	"github.com/spf13/cobra"

	"github.com/Spok95/poletreat/migrations"
)

func migrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if status {
				return migrations.Status(cfg.Postgres.DSN)
			}
			return migrations.Up(cfg.Postgres.DSN, log)
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")
	return cmd
}
