package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/stakesim/config"
	"github.com/rustyeddy/stakesim/pkg/logger"
	"github.com/rustyeddy/stakesim/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stakesim",
	Short: "A mock investment tracker with simulated prices",
	Long: `Stakesim tracks a mock investment portfolio against simulated prices.

It provides tools for:
  - Streaming random-walk prices for stocks, ETFs and crypto
  - Buying and selling at the live price with average-cost accounting
  - Valuing holdings, gains and allocation
  - Keeping the cash balance across runs
  - Journaling every fill to CSV or SQLite`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	assetsDir string
	envFile   string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets", "", "directory holding pricing.json, instrument-list.json and portfolio.json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with STAKESIM_* overrides")
}

// loadConfig resolves the config file, the environment and the flags, in
// that order of increasing precedence.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if assetsDir != "" {
		cfg.Assets = config.AssetsConfig{Dir: assetsDir}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command's logger and installs it as the global one.
func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	l := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(l)
	return l
}

// openSession loads the config and opens a session whose reference data is
// known to be loaded.
func openSession(ctx context.Context, cmd *cobra.Command) (*session.Session, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := session.Open(ctx, cfg, session.WithLogger(newLogger(cmd, cfg)))
	if err != nil {
		return nil, nil, fmt.Errorf("open session: %w", err)
	}
	if err := s.Load(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, cfg, nil
}
