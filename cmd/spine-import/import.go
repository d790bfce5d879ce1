package main

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/config"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/importer"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/metrics"
)

var (
	errRunFailed    = errors.New("import failed: errors occurred and cancel-on-error is set")
	errRunCancelled = errors.New("import cancelled")
)

type importOptions struct {
	output        string
	errorLog      string
	metricsFile   string
	maxRows       int
	cancelOnError bool
	dump          bool
	raw           bool
}

func bindImportFlags(fs *pflag.FlagSet, opts *importOptions) {
	fs.StringVarP(&opts.output, "output", "o", "", "Write the dataset to this .yaml or .json file (overrides the import file)")
	fs.StringVar(&opts.errorLog, "error-log", "", "Write the error log to this file (overrides the import file)")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.IntVar(&opts.maxRows, "max-rows", -1, "Read at most this many data rows per table; negative is unbounded (overrides the import file)")
	fs.BoolVar(&opts.cancelOnError, "cancel-on-error", false, "Discard the dataset if any error occurs (overrides the import file)")
	fs.BoolVar(&opts.dump, "dump", false, "Dump the dataset to stdout")
	fs.BoolVar(&opts.raw, "raw", false, "Write indexed parameter values without folding them into composite values")
}

// applyOverrides replaces spec settings with the flags set on the command
// line.
func (o *importOptions) applyOverrides(fs *pflag.FlagSet, spec *config.Spec) {
	if fs.Changed("output") {
		spec.Output = o.output
	}

	if fs.Changed("error-log") {
		spec.ErrorLog = o.errorLog
	}

	if fs.Changed("max-rows") {
		spec.MaxRows = &o.maxRows
	}

	if fs.Changed("cancel-on-error") {
		spec.CancelOnError = o.cancelOnError
	}
}

func newImportCmd(global *globalOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run the import specification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, global, opts)
		},
	}

	bindImportFlags(cmd.Flags(), opts)

	return cmd
}

func runImport(cmd *cobra.Command, global *globalOptions, opts *importOptions) error {
	ctx := cmd.Context()
	log := global.log

	spec, err := global.loadSpec()
	if err != nil {
		return err
	}

	opts.applyOverrides(cmd.Flags(), spec)

	sources, err := spec.BuildSources()
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	m := metrics.New()

	coord := &importer.Coordinator{
		Sources: sources,
		Logger:  log,
		Clock:   clock,
		Metrics: m,
	}

	var out *importer.Outcome
	select {
	case out = <-coord.Start(ctx, spec.Request()):
	case <-ctx.Done():
		// The worker stops at the next table boundary; its outcome is not
		// usable.
		return errRunCancelled
	}

	if out.Data != nil && spec.Output != "" {
		sink := dataset.NewFileSink(spec.Output)
		sink.Raw = opts.raw

		if _, err := coord.Import(ctx, sink, out); err != nil {
			return err
		}
	}

	if opts.dump && out.Data != nil {
		spew.Fdump(cmd.OutOrStdout(), out.Data)
	}

	if spec.ErrorLog != "" && len(out.Errors) > 0 {
		if err := dataset.WriteErrorLogFile(spec.ErrorLog, clock, out.RunID, out.Errors); err != nil {
			return err
		}

		log.Info("error log written", "path", spec.ErrorLog, "errors", len(out.Errors))
	}

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	summarize(cmd, out)

	switch {
	case out.Cancelled:
		return errRunCancelled
	case out.Failed:
		return errRunFailed
	}

	return nil
}

func summarize(cmd *cobra.Command, out *importer.Outcome) {
	w := cmd.OutOrStdout()

	for _, t := range out.Tables {
		fmt.Fprintf(w, "%s/%s: %s, %d rows, %d records, %d errors\n", t.Source, t.Table, t.Status, t.Rows, t.Records, t.Errors)
	}

	fmt.Fprintf(w, "run %s: %d records, %d errors\n", out.RunID, out.Data.Len(), len(out.Errors))
}
