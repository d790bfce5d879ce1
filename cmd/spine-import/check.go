package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/diagnostic"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

var errInvalidMappings = errors.New("mappings have errors")

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var mappingFiles []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate mappings without reading any data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type target struct {
				name string
				root mapping.Root
			}

			var targets []target

			if len(mappingFiles) > 0 {
				for _, path := range mappingFiles {
					root, err := mapping.LoadFile(path)
					if err != nil {
						return err
					}

					targets = append(targets, target{name: path, root: root})
				}
			} else {
				spec, err := opts.loadSpec()
				if err != nil {
					return err
				}

				for _, t := range spec.Tables {
					if t.Mapping == nil || !t.IsSelected() {
						continue
					}

					targets = append(targets, target{name: t.Source + "/" + t.Table, root: t.Mapping.Root})
				}
			}

			out := cmd.OutOrStdout()
			all := &diagnostic.Diagnostics{}

			for _, t := range targets {
				res := mapping.Validate(t.root)
				all.Merge(*res)

				status := "ok"
				if res.HasErrors() {
					status = "invalid"
				}

				fmt.Fprintf(out, "%s: %s\n", t.name, status)

				for _, d := range res.Errors {
					fmt.Fprintf(out, "  error: %s\n", d.String())
				}

				for _, d := range res.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", d.String())
				}
			}

			opts.log.Debug("mappings checked", "mappings", len(targets), "errors", len(all.Errors), "warnings", len(all.Warnings))

			if all.HasErrors() {
				return errInvalidMappings
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&mappingFiles, "mapping", "m", nil, "Check standalone mapping files instead of the import specification")

	return cmd
}
