package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	var (
		xlsx   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty product import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			} else if xlsx {
				return fmt.Errorf("--xlsx requires --output")
			}

			if xlsx {
				return core.WriteXLSXTemplate(w)
			}
			return core.WriteCSVTemplate(w)
		},
	}
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "write an Excel workbook instead of CSV")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout, CSV only)")
	return cmd
}
