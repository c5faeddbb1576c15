package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage cached category mapping rules",
	}

	var version string
	flush := &cobra.Command{
		Use:   "flush",
		Short: "Drop the cached rule set so the next import reloads it from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Rules == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "rule cache disabled (REDIS_URL not set)")
				return nil
			}
			if version == "" {
				version = a.Config.Import.MappingVersion
			}
			if err := a.Rules.Invalidate(ctx, version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flushed cached rules for %s\n", version)
			return nil
		},
	}
	flush.Flags().StringVar(&version, "mapping-version", "", "rule set to flush (default IMPORT_MAPPING_VERSION)")

	cmd.AddCommand(flush)
	return cmd
}
