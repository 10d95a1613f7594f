package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Backtest rule-based daily-bar trading strategies",
	Long: `Backtester replays historical daily bars through a simulated broker
and reports risk and performance statistics.

It provides:
  - Moving-average strategies (EMA/SMA cross, golden cross, monthly MA)
  - Same-bar or next-bar market order fills
  - Trade and equity journals (memory, CSV, SQLite)
  - Returns, Sharpe ratio, drawdown and trade statistics`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
