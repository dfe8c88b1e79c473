package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/pkg/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

type rootOptions struct {
	verbose bool
	envFile string
	log     *zap.Logger
}

// NewRootCmd builds the aquaperf command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "aquaperf",
		Short: "Aquaculture performance scoring and predictive alerts",
		Long: `aquaperf scores production units (tanks, ponds) from their feeding, water,
health, cost and sales records, ranks them against each other and raises
predictive alerts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			log, err := logger.New(level)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file to load before reading the environment")

	cmd.AddCommand(newScoreCmd(opts), newRunCmd(opts))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
