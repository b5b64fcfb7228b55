package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dealhound/dealhound/config"
	"github.com/dealhound/dealhound/history"
	"github.com/dealhound/dealhound/models"
)

var (
	historyTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	historyTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions

	DB    string
	Limit int
	Item  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the history database",
		Long: `List runs recorded with hunt --history-db, newest first.

With --item, show how the best price for one food item moved across runs.

Examples:
  dealhound history --db dealhound.db
  dealhound history --db dealhound.db --item "margherita pizza" --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite history database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum rows to show")
	cmd.Flags().StringVar(&opts.Item, "item", "", "show the price trend for this item")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	path := opts.DB
	if path == "" {
		if value, ok := config.EnvString("DEALHOUND_HISTORY_DB"); ok {
			path = value
		}
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no history database, pass --db or set DEALHOUND_HISTORY_DB")
	}

	store, err := history.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if opts.Item != "" {
		runs, err := store.ItemTrend(cmd.Context(), opts.Item, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "reading history", err)
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "no recorded runs with a priced best deal for %q\n", opts.Item)
			return nil
		}
		fmt.Fprintln(out, historyTitleStyle.Render(fmt.Sprintf("Price trend for %q", opts.Item)))
		for _, run := range runs {
			fmt.Fprintln(out, trendLine(run))
		}
		return nil
	}

	runs, err := store.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading history", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs yet, hunt with --history-db to start tracking")
		return nil
	}
	fmt.Fprintln(out, historyTitleStyle.Render("Recent Runs"))
	for _, run := range runs {
		fmt.Fprintln(out, runLine(run))
	}
	return nil
}

func runLine(run history.Run) string {
	when := historyTimeStyle.Render(run.RanAt.UTC().Format("2006-01-02 15:04"))

	best := "no offers"
	if run.BestItem != "" {
		best = fmt.Sprintf("best %s %s on %s", run.BestItem, priceTag(run.BestPrice), run.BestPlatform)
	}

	state := "not committed"
	switch {
	case run.Committed:
		state = fmt.Sprintf("committed (%s)", attemptsTag(run.CommitAttempts))
	case run.CommitAttempts > 0:
		state = fmt.Sprintf("commit failed (%s)", attemptsTag(run.CommitAttempts))
	}

	return fmt.Sprintf("  %s  %-24s  %d options, %s, %s",
		when, strings.Join(run.Items, ", "), run.TotalOptions, best, state)
}

func trendLine(run history.Run) string {
	when := historyTimeStyle.Render(run.RanAt.UTC().Format("2006-01-02 15:04"))

	line := fmt.Sprintf("  %s  %s on %s", when, priceTag(run.BestPrice), run.BestPlatform)
	if run.DiscountPct != nil && *run.DiscountPct > 0 {
		line += fmt.Sprintf(", %.1f%% off", *run.DiscountPct)
	}
	if run.Committed {
		line += ", committed"
	}
	return line
}

func priceTag(price *float64) string {
	if price == nil {
		return "unpriced"
	}
	return "₹" + models.FormatPrice(*price)
}

func attemptsTag(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return fmt.Sprintf("%d attempts", n)
}
