package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/config"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/logger"
)

type globalOptions struct {
	verbose bool
	envFile string
	spec    string
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "spine-import",
		Short:         "Map tabular data into a normalized entity dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnv(opts.envFile); err != nil {
				return err
			}

			opts.log = logger.NewWithWriter(cmd.ErrOrStderr(), opts.verbose || config.Verbose())

			return nil
		},
	}

	bindGlobalFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(newTablesCmd(opts), newCheckCmd(opts), newImportCmd(opts))

	return cmd
}

func bindGlobalFlags(fs *pflag.FlagSet, opts *globalOptions) {
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging (also "+config.VerboseEnv+")")
	fs.StringVar(&opts.envFile, "env-file", ".env", "File of KEY=value pairs loaded into the environment if present")
	fs.StringVarP(&opts.spec, "spec", "s", "spine-import.yaml", "Import specification file")
}

func (o *globalOptions) loadSpec() (*config.Spec, error) {
	return config.LoadFile(o.spec)
}
