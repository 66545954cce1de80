package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream simulated prices and the live portfolio value",
	Long: `Start the price timer and print the portfolio after every tick.

Runs until interrupted, or for --duration when set.

Example:
  stakesim run --duration 10s`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runDuration time.Duration
	runPaused   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	runCmd.Flags().BoolVar(&runPaused, "paused", false, "start with price updates disabled")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if runDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runDuration)
		defer cancel()
	}

	s, cfg, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if runPaused {
		s.SetPriceUpdatesEnabled(false)
	}

	out := cmd.OutOrStdout()
	cur := cfg.Display.Currency
	fmt.Fprintf(out, "Tracking %d instruments, %d positions, cash %s\n\n",
		len(s.GetAllPrices()), len(s.Positions()), formatMoney(s.Cash(), cur))

	sub := s.SubscribeSummary()
	defer sub.Close()

	started := time.Now()
	defer func() { log.Info().Dur("ran", time.Since(started)).Msg("run stopped") }()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	for {
		select {
		case sum, ok := <-sub.C():
			if !ok {
				return <-done
			}
			fmt.Fprintf(out, "%s  value %s  gain %s (%s)  cash %s\n",
				time.Now().Format("15:04:05"),
				formatMoney(sum.TotalValue, cur),
				formatMoney(sum.Gain(), cur),
				formatPercent(sum.GainPercent()),
				formatMoney(sum.Cash, cur))
		case err := <-done:
			return err
		}
	}
}
