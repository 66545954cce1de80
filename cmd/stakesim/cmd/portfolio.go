package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/stakesim/portfolio"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show holdings, gains and allocation",
	Long: `Value the starting positions against the current prices.

Use --org to also write the snapshot as an Org-mode note.

Example:
  stakesim portfolio --org portfolio.org`,
	Args: cobra.NoArgs,
	RunE: runPortfolio,
}

var (
	portfolioOrg   string
	portfolioDonut float64
)

func init() {
	rootCmd.AddCommand(portfolioCmd)

	portfolioCmd.Flags().StringVar(&portfolioOrg, "org", "", "write an Org-mode report to this file")
	portfolioCmd.Flags().Float64Var(&portfolioDonut, "donut", 0, "print allocation arcs for a ring of this circumference")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	s, cfg, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cur := cfg.Display.Currency
	sum := s.Summary()
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SYMBOL\tQTY\tAVG COST\tPRICE\tVALUE\tGAIN\tALLOC\t")
	for _, m := range sum.Metrics {
		fmt.Fprintf(w, "%s\t%g\t%s\t%s\t%s\t%s\t%.1f%%\t\n",
			m.Symbol, m.Quantity,
			formatMoney(m.AvgBuyPrice, cur),
			formatMoney(m.CurrentPrice, cur),
			formatMoney(m.TotalValue, cur),
			formatPercent(m.PercentDiff),
			m.Percent)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total value: %s\n", formatMoney(sum.TotalValue, cur))
	fmt.Fprintf(out, "Total gain:  %s (%s)\n", formatMoney(sum.Gain(), cur), formatPercent(sum.GainPercent()))
	fmt.Fprintf(out, "Cash:        %s\n", formatMoney(sum.Cash, cur))
	fmt.Fprintf(out, "Net worth:   %s\n", formatMoney(sum.NetWorth(), cur))

	if portfolioDonut > 0 {
		fmt.Fprintln(out)
		for _, seg := range portfolio.Donut(portfolioDonut, sum.Metrics) {
			fmt.Fprintf(out, "%-6s %s length=%.2f offset=%.2f\n",
				seg.Symbol, strings.Repeat("█", int(seg.Percent/5)), seg.Length, seg.Offset)
		}
	}

	if portfolioOrg != "" {
		f, err := os.Create(portfolioOrg)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		if err := (portfolio.Report{Summary: sum, Created: time.Now()}).WriteOrg(f); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n✓ Wrote report: %s\n", portfolioOrg)
	}
	return nil
}
