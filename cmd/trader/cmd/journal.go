package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade intent journal",
	Long: `Query intents and risk rejections recorded in the SQLite journal.

Subcommands:
  intents     - List recent intents, newest first
  rejections  - List recent risk rejections, newest first
  show        - Show one intent by ID as an Org-mode block
  stats       - Count approved and rejected intents

Examples:
  trader journal intents --symbol BTCUSDT --limit 20
  trader journal rejections
  trader journal show 01J9Z8...`,
}

var journalIntentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "List recent trade intents",
	Args:  cobra.NoArgs,
	RunE:  runJournalIntents,
}

var journalRejectionsCmd = &cobra.Command{
	Use:   "rejections",
	Short: "List recent risk rejections",
	Args:  cobra.NoArgs,
	RunE:  runJournalRejections,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <intent-id>",
	Short: "Show one intent",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count approved and rejected intents",
	Args:  cobra.NoArgs,
	RunE:  runJournalStats,
}

var (
	journalDBPath string
	journalSymbol string
	journalLimit  int
	journalOrg    bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalIntentsCmd)
	journalCmd.AddCommand(journalRejectionsCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalStatsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./trader.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().IntVarP(&journalLimit, "limit", "n", 50, "maximum rows (-1 for all)")
	journalIntentsCmd.Flags().StringVarP(&journalSymbol, "symbol", "s", "", "only this symbol")
	journalIntentsCmd.Flags().BoolVar(&journalOrg, "org", false, "print Org-mode blocks instead of a table")
}

func runJournalIntents(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	intents, err := j.ListIntents(cmd.Context(), journalSymbol, journalLimit)
	if err != nil {
		return fmt.Errorf("query intents: %w", err)
	}
	if journalOrg {
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatIntentsOrg(intents))
		return nil
	}
	return writeIntents(cmd.OutOrStdout(), intents)
}

func runJournalRejections(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	events, err := j.ListRejections(cmd.Context(), journalLimit)
	if err != nil {
		return fmt.Errorf("query rejections: %w", err)
	}
	return writeRejections(cmd.OutOrStdout(), events)
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	in, err := j.GetIntent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get intent: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatIntentOrg(in))
	return nil
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	approved, rejected, err := j.CountIntents(cmd.Context())
	if err != nil {
		return fmt.Errorf("count intents: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "approved: %d\nrejected: %d\n", approved, rejected)
	return nil
}

func writeIntents(w io.Writer, intents []engine.TradeIntent) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tSYMBOL\tSIDE\tSIGNAL\tPRICE\tNOTIONAL\tAPPROVED")
	for _, in := range intents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.8g\t%.2f\t%t\n",
			in.Time.UTC().Format(time.RFC3339), in.ID, in.Symbol, in.Side, in.Signal, in.Price, in.Notional, in.Approved)
	}
	return tw.Flush()
}

func writeRejections(w io.Writer, events []engine.RiskEvent) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSYMBOL\tKIND\tCURRENT\tLIMIT\tREASON")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f%%\t%.2f%%\t%s\n",
			ev.Intent.Time.UTC().Format(time.RFC3339), ev.Intent.Symbol, ev.Kind,
			ev.Current*100, ev.Limit*100, ev.Intent.RejectionReason)
	}
	return tw.Flush()
}
