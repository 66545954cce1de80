package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/stakesim/ledger"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Buy or sell at the current price",
	Long: `Place a mock order against the ledger at the current simulated price.

Only the cash balance is kept between runs; holdings start from the
bundled portfolio every time.

Examples:
  stakesim trade buy AAPL 3
  stakesim trade sell VOO 1.5`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <symbol> <quantity>",
	Short: "Buy a quantity of an instrument",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrade(true),
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <symbol> <quantity>",
	Short: "Sell a quantity of a held instrument",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrade(false),
}

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Add cash to the balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeposit,
}

var cashCmd = &cobra.Command{
	Use:   "cash [amount]",
	Short: "Show the cash balance, or overwrite it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCash,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(cashCmd)
}

func runTrade(buy bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		symbol := args[0]
		qty, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}

		ctx := cmd.Context()
		s, cfg, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var (
			price float64
			verb  string
		)
		if buy {
			verb = "Bought"
			price, err = s.Buy(ctx, symbol, qty)
		} else {
			verb = "Sold"
			price, err = s.Sell(ctx, symbol, qty)
		}
		switch {
		case errors.Is(err, ledger.ErrInsufficientHoldings):
			return fmt.Errorf("cannot sell %g %s: %w", qty, symbol, err)
		case err != nil:
			return err
		}

		cur := cfg.Display.Currency
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %s %g %s @ %s\n", verb, qty, symbol, formatMoney(price, cur))
		if p, ok := s.Ledger().Position(symbol); ok {
			fmt.Fprintf(out, "  Position: %g @ avg %s\n", p.Quantity, formatMoney(p.AvgBuyPrice, cur))
		} else {
			fmt.Fprintf(out, "  Position: closed\n")
		}
		fmt.Fprintf(out, "  Cash: %s\n", formatMoney(s.Cash(), cur))
		return nil
	}
}

func runDeposit(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	s, cfg, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	bal, err := s.Deposit(amount)
	if err != nil {
		return fmt.Errorf("deposit %g: %w", amount, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deposited %s, cash %s\n",
		formatMoney(amount, cfg.Display.Currency), formatMoney(bal, cfg.Display.Currency))
	return nil
}

func runCash(cmd *cobra.Command, args []string) error {
	s, cfg, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 1 {
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if err := s.SetCash(amount); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cash: %s\n", formatMoney(s.Cash(), cfg.Display.Currency))
	return nil
}
