package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Print the dashboard statistics and the category breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, today, err := opts.records(cmd, args[0])
			if err != nil {
				return err
			}
			d := dashboard.Build(list, today)
			renderStats(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func renderStats(w io.Writer, d dashboard.Dashboard) {
	lines := []string{
		titleStyle.Render("Subscriptions"),
		fmt.Sprintf("%-15s $%s", "Total Monthly", csvio.FormatPrice(d.Stats.TotalMonthly)),
		fmt.Sprintf("%-15s %d", "Active", d.Stats.ActiveCount),
		fmt.Sprintf("%-15s %d", "Expiring Soon", d.Stats.ExpiringCount),
	}
	if len(d.Categories) > 0 {
		lines = append(lines, "", titleStyle.Render("By category"))
		for _, c := range d.Categories {
			lines = append(lines, fmt.Sprintf("%-15s $%s", c.Label, csvio.FormatPrice(c.Value)))
		}
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func newNotifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <file>",
		Short: "List the payments due within the next week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, today, err := opts.records(cmd, args[0])
			if err != nil {
				return err
			}
			renderNotifications(cmd.OutOrStdout(), dashboard.Notifications(list, today))
			return nil
		},
	}
}

func renderNotifications(w io.Writer, notes []dashboard.Notification) {
	if len(notes) == 0 {
		color.New(color.FgGreen).Fprintln(w, "No upcoming payments.")
		return
	}
	for _, n := range notes {
		c := color.New(color.FgYellow)
		if n.DaysLeft == 0 {
			c = color.New(color.FgRed, color.Bold)
		}
		c.Fprintf(w, "%s renews %s", n.Name, dashboard.DueIn(n.DaysLeft))
		fmt.Fprintf(w, " (%s %s, %s)\n", csvio.FormatPrice(n.Price), n.CurrencyOrDefault(), n.NextPayment)
	}
}

type queryFlags struct {
	search   string
	category string
	sort     string
	dir      string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	def := dashboard.DefaultQuery()
	cmd.Flags().StringVar(&f.search, "search", "", "keep names containing this text")
	cmd.Flags().StringVar(&f.category, "category", def.Category, "keep one category")
	cmd.Flags().StringVar(&f.sort, "sort", def.SortKey, "sort key")
	cmd.Flags().StringVar(&f.dir, "dir", def.SortDirection, "sort direction, asc or desc")
}

func (f *queryFlags) query() (dashboard.Query, error) {
	if f.dir != dashboard.Asc && f.dir != dashboard.Desc {
		return dashboard.Query{}, fmt.Errorf("invalid --dir %q, expected asc or desc", f.dir)
	}
	return dashboard.Query{Search: f.search, Category: f.category, SortKey: f.sort, SortDirection: f.dir}, nil
}

func newListCmd(opts *options) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "Print the filtered and sorted subscription table",
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
			rows := report.Rows(dashboard.FilterAndSort(list, q))
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions match.")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers(report.TableHeader...).
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return headStyle
					}
					return cellStyle
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	qf.bind(cmd)
	return cmd
}
