package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/stakesim/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite fill journal",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  fills  - List fills, optionally for one symbol
  fill   - Show one fill as an Org-mode entry
  cash   - List cash balance changes

Examples:
  stakesim journal fills --symbol AAPL
  stakesim journal fill 01HV3K9Z8Q4W7XJ2N6M5R1T0AB`,
}

var journalFillsCmd = &cobra.Command{
	Use:   "fills",
	Short: "List fills",
	Args:  cobra.NoArgs,
	RunE:  runJournalFills,
}

var journalFillCmd = &cobra.Command{
	Use:   "fill <fill-id>",
	Short: "Show one fill",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalFill,
}

var journalCashCmd = &cobra.Command{
	Use:   "cash",
	Short: "List cash balance changes",
	Args:  cobra.NoArgs,
	RunE:  runJournalCash,
}

var (
	journalDBPath string
	journalSymbol string
	journalOrg    bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalFillsCmd)
	journalCmd.AddCommand(journalFillCmd)
	journalCmd.AddCommand(journalCashCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (defaults to journal.db_path)")
	journalFillsCmd.Flags().StringVarP(&journalSymbol, "symbol", "s", "", "only fills for this symbol")
	journalFillsCmd.Flags().BoolVar(&journalOrg, "org", false, "print as Org-mode entries")
}

func runJournalFills(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	fills, err := j.ListFills(journalSymbol)
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}

	out := cmd.OutOrStdout()
	if journalOrg {
		fmt.Fprintln(out, journal.FormatFillsOrg(fills))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSIDE\tSYMBOL\tQTY\tPRICE\tCASH AFTER")
	for _, f := range fills {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%.2f\t%.2f\n",
			f.Time.Local().Format(time.DateTime), f.Side, f.Symbol, f.Quantity, f.Price, f.CashAfter)
	}
	return w.Flush()
}

func runJournalFill(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	f, err := j.GetFill(args[0])
	if err != nil {
		return fmt.Errorf("get fill: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatFillOrg(f))
	return nil
}

func runJournalCash(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	changes, err := j.ListCash()
	if err != nil {
		return fmt.Errorf("query cash: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPREVIOUS\tBALANCE\tREASON")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\n", c.Time.Local().Format(time.DateTime), c.Previous, c.Balance, c.Reason)
	}
	return w.Flush()
}

// openJournalDB opens --db, or the journal.db_path of the loaded config.
func openJournalDB() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if path = cfg.Journal.DBPath; path == "" {
			return nil, fmt.Errorf("no journal database: set journal.db_path or pass --db")
		}
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}
