package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List tradable instruments and their prices",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var catalogCategory string

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "only list this category (Stocks, ETFs, Crypto)")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, cfg, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	products, err := s.Catalog(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tCATEGORY\tPRICE\tCHANGE")
	for _, p := range products {
		if catalogCategory != "" && p.Category != catalogCategory {
			continue
		}
		price, change, dir := p.Price, 0.0, 0
		if t, ok := s.GetPrice(p.Symbol); ok {
			price, change, dir = t.Price, t.ChangePercent(), t.Direction()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\n",
			p.Symbol, p.Name, p.Category, formatMoney(price, cfg.Display.Currency), arrow(dir), formatPercent(change))
	}
	return w.Flush()
}
