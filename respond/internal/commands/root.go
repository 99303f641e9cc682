// Package commands implements the respond command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the respond command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "respond",
		Short: "AxisIR incident response backend",
		Long: `respond serves the AxisIR case-management API: companies, assets and
asset groups, incidents, indicators of compromise, tasks, reports and users.

Configuration is read from --config, ./config.yaml or /etc/axisir/respond,
then overridden by RESPOND_* environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newConfigCommand(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newLogger(cfg *config.Config) *logging.Logger {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).
		With(logging.Service("respond"))
	logging.SetDefault(logger)
	return logger
}
