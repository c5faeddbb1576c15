package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPurgeCmd(root *rootOptions) *cobra.Command {
	var (
		days      int
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete raw staging rows older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--older-than must be positive, got %d", days)
			}

			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cutoff := time.Now().AddDate(0, 0, -days)
			purged, err := a.Service.PurgeStaging(ctx, cutoff, batchSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d raw rows processed before %s\n", purged, cutoff.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "older-than", 90, "retention window in days")
	cmd.Flags().IntVar(&batchSize, "batch-size", 5000, "rows deleted per statement")
	return cmd
}
