// Package cli implements subctl, the offline companion of the dashboard. It
// runs the derived views and the import/export engine over CSV files without
// a server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/models"
)

// stdinPath reads the file from standard input.
const stdinPath = "-"

type options struct {
	today   string
	maxSize int64
	now     dates.Clock
}

// NewRootCmd builds the subctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:   "subctl",
		Short: "Inspect subscription CSV files",
		Long: `subctl reads files in the dashboard interchange format and prints the
statistics, the upcoming payments and the filtered table, or converts them to
spreadsheets and PDF reports. Use "-" as file name to read standard input.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.today, "today", "", "reference date as YYYY-MM-DD (default current date)")
	root.PersistentFlags().Int64Var(&opts.maxSize, "max-size", csvio.DefaultMaxSize, "largest accepted file in bytes")

	root.AddCommand(
		newStatsCmd(opts),
		newNotifyCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newTemplateCmd(),
		newValidateCmd(opts),
	)
	return root
}

// Execute runs subctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) todayTime() (time.Time, error) {
	if o.today == "" {
		return o.now(), nil
	}
	t, err := dates.Parse(o.today)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today %q, expected YYYY-MM-DD", o.today)
	}
	return t, nil
}

// load reads and parses path. Format errors carry the message the dashboard
// shows for the same file.
func (o *options) load(cmd *cobra.Command, path string) (csvio.Result, time.Time, error) {
	today, err := o.todayTime()
	if err != nil {
		return csvio.Result{}, time.Time{}, err
	}

	importer := csvio.NewImporter(o.maxSize)
	data, err := readLimited(cmd, path, importer.MaxSize+1)
	if err != nil {
		return csvio.Result{}, time.Time{}, err
	}

	res, err := importer.Import(data, today)
	if err != nil {
		if msg := csvio.Describe(err, importer.MaxSize); msg != "" {
			return csvio.Result{}, time.Time{}, errors.New(msg)
		}
		return csvio.Result{}, time.Time{}, err
	}
	return res, today, nil
}

func (o *options) records(cmd *cobra.Command, path string) ([]models.Subscription, time.Time, error) {
	res, today, err := o.load(cmd, path)
	if err != nil {
		return nil, time.Time{}, err
	}
	for i := range res.Records {
		res.Records[i].ID = fmt.Sprintf("%d", i+1)
	}
	return res.Records, today, nil
}

func readLimited(cmd *cobra.Command, path string, limit int64) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(io.LimitReader(cmd.InOrStdin(), limit))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
