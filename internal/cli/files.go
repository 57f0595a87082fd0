package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/models"
	"github.com/sibintb/submanager/internal/report"
)

// Export formats.
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatPDF  = "pdf"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		qf     queryFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert the filtered view to CSV, XLSX or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			list, _, err := opts.records(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return exportAs(w, format, dashboard.FilterAndSort(list, q))
			})
		},
	}
	qf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatCSV, "output format: csv, xlsx or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default standard output)")
	return cmd
}

func exportAs(w io.Writer, format string, list []models.Subscription) error {
	switch format {
	case formatCSV:
		_, err := io.WriteString(w, csvio.Export(list))
		return err
	case formatXLSX:
		return report.WriteXLSX(w, list)
	case formatPDF:
		return report.WritePDF(w, list)
	default:
		return fmt.Errorf("unsupported format %q, expected csv, xlsx or pdf", format)
	}
}

func newTemplateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd, output, func(w io.Writer) error {
				_, err := io.WriteString(w, csvio.Template())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default standard output)")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file can be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.Empty() {
				color.New(color.FgYellow).Fprintln(w, "No valid data found.")
				return nil
			}
			color.New(color.FgGreen).Fprintf(w, "Found %d valid subscriptions.\n", res.Valid)
			return nil
		},
	}
}

// writeOutput runs write against the named file, or standard output when
// path is empty. A partially written file is removed on failure.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
