package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axisir/axisir-stack/respond/migrations"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := migrations.ParseDirection(args[0])
			if err != nil {
				return err
			}
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if err := migrations.Run(cfg.Database.Postgres.ConnString(), direction); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "migrations applied", "direction", string(direction))
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", direction)
			return nil
		},
	}
}
