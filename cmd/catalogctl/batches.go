package main

import (
	"context"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Inspect recorded import batches",
	}
	cmd.AddCommand(newBatchesListCmd(root), newBatchesShowCmd(root))
	return cmd
}

func newBatchesListCmd(root *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List import batches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.Service.ListBatches(ctx, limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", core.DefaultPageSize, "batches per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "batches to skip")
	return cmd
}

// batchDetail is the output of batches show.
type batchDetail struct {
	Batch  *core.ImportBatch `json:"batch"`
	Issues []core.RowIssue   `json:"issues"`
}

func newBatchesShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show one batch with its row issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := loadBatchDetail(ctx, a.Service, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), detail)
		},
	}
}

// historyReader is the part of the service batches show needs.
type historyReader interface {
	GetBatch(ctx context.Context, id string) (*core.ImportBatch, error)
	BatchIssues(ctx context.Context, id string) ([]core.RowIssue, error)
}

// loadBatchDetail fetches the batch and its issues concurrently.
func loadBatchDetail(ctx context.Context, h historyReader, id string) (*batchDetail, error) {
	detail := &batchDetail{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := h.GetBatch(ctx, id)
		detail.Batch = b
		return err
	})
	g.Go(func() error {
		issues, err := h.BatchIssues(ctx, id)
		detail.Issues = issues
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if detail.Issues == nil {
		detail.Issues = []core.RowIssue{}
	}
	return detail, nil
}
