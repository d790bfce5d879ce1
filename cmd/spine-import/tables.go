package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

func newTablesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of every configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := opts.loadSpec()
			if err != nil {
				return err
			}

			sources, err := spec.BuildSources()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			connected := map[string]source.Source{}
			failed := map[string]error{}

			defer func() {
				for _, src := range connected {
					_ = src.Close()
				}
			}()

			for id, src := range sources {
				if err := src.Connect(ctx); err != nil {
					failed[id] = err
					continue
				}

				connected[id] = src
			}

			listings, err := source.Discover(ctx, connected)
			if err != nil {
				return err
			}

			for id, err := range failed {
				listings[id] = source.Listing{Source: id, Err: err}
			}

			ids := make([]string, 0, len(listings))
			for id := range listings {
				ids = append(ids, id)
			}

			slices.Sort(ids)

			out := cmd.OutOrStdout()

			for _, id := range ids {
				l := listings[id]
				if l.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", id, l.Err)
					continue
				}

				fmt.Fprintf(out, "%s:\n", id)

				names := make([]string, 0, len(l.Tables))
				for name := range l.Tables {
					names = append(names, name)
				}

				slices.Sort(names)

				for _, name := range names {
					if hint := l.Tables[name]; hint != nil {
						fmt.Fprintf(out, "  %s (%s)\n", name, hint.Kind())
						continue
					}

					fmt.Fprintf(out, "  %s\n", name)
				}
			}

			return nil
		},
	}
}
