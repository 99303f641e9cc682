package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/axisir/axisir-stack/respond/internal/seeder"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	opts := seeder.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo companies, assets, incidents and indicators",
		Long: `Generates fake data through the service layer. The owner account is
created on first use and becomes ADMIN of every generated company.

Examples:
  respond seed
  respond seed --companies 5 --incidents 20 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := seeder.New(a.svc, logger).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(sum)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Companies, "companies", opts.Companies, "companies to create")
	f.IntVar(&opts.GroupsPerCompany, "groups", opts.GroupsPerCompany, "asset groups per company")
	f.IntVar(&opts.AssetsPerCompany, "assets", opts.AssetsPerCompany, "assets per company")
	f.IntVar(&opts.IncidentsPerCompany, "incidents", opts.IncidentsPerCompany, "incidents per company")
	f.IntVar(&opts.IndicatorsPerIncident, "indicators", opts.IndicatorsPerIncident, "indicators per incident")
	f.IntVar(&opts.TasksPerIncident, "tasks", opts.TasksPerIncident, "tasks per incident")
	f.StringVar(&opts.OwnerUsername, "owner", opts.OwnerUsername, "owner username")
	f.StringVar(&opts.OwnerEmail, "owner-email", opts.OwnerEmail, "owner email")
	f.StringVar(&opts.OwnerPassword, "owner-password", opts.OwnerPassword, "owner password")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed (0 = random)")
	return cmd
}
