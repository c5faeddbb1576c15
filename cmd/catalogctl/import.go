package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/spf13/cobra"
)

type importFlags struct {
	updateExisting bool
	mappingVersion string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.updateExisting, "update-existing", false, "update products whose SKU already exists instead of skipping them")
	cmd.Flags().StringVar(&f.mappingVersion, "mapping-version", "", "category mapping rule set (default IMPORT_MAPPING_VERSION)")
}

// request reads path and builds an import request honoring the size limit.
func (f *importFlags) request(cmd *cobra.Command, svc *core.Service, path string) (core.ImportRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return core.ImportRequest{}, err
	}
	defer file.Close()

	data, err := core.LoadSource(file, svc.Options().Read.MaxFileSize)
	if err != nil {
		return core.ImportRequest{}, fmt.Errorf("%s: %w", path, err)
	}

	req := core.ImportRequest{
		FileName:       filepath.Base(path),
		Data:           data,
		MappingVersion: f.mappingVersion,
	}
	if cmd.Flags().Changed("update-existing") {
		req.UpdateExisting = &f.updateExisting
	}
	return req, nil
}

func newImportCmd(root *rootOptions) *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX file and print the batch summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := flags.request(cmd, a.Service, args[0])
			if err != nil {
				return err
			}

			summary, err := a.Service.Import(ctx, req)
			if summary != nil {
				if perr := printJSON(cmd.OutOrStdout(), summary); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newPreviewCmd(root *rootOptions) *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Validate a file and print what an import would do, without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := flags.request(cmd, a.Service, args[0])
			if err != nil {
				return err
			}

			result, err := a.Service.Preview(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd)
	return cmd
}
