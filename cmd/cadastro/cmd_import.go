package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/export"
	importservice "github.com/FACorreiaa/cadastro-militares/internal/domain/import/service"
)

func newImportCmd(a *app) *cobra.Command {
	var opts importservice.Options

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a personnel spreadsheet (.xlsx, .xlsm or .csv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.deps.ImportService.ImportFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Reconcile and report without writing")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the registry to a workbook or a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Storage order, so an export can be diffed against the
			// spreadsheet it was imported from.
			records, err := a.deps.Repo.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch personnel: %w", err)
			}

			return writeFile(out, func(f *os.File) error {
				if strings.EqualFold(filepath.Ext(out), ".csv") {
					return export.WriteCSV(f, records)
				}
				return export.WriteWorkbook(f, records)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "militares.xlsx", "Output file; .csv writes CSV, anything else a workbook")
	return cmd
}

func newRosterCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Write the personnel roster workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.deps.PersonnelService.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeFile(out, func(f *os.File) error {
				return export.WriteRoster(f, records)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "relacao_pessoal.xlsx", "Output workbook")
	return cmd
}

// writeFile creates path and hands it to write, removing the file when
// writing fails.
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
