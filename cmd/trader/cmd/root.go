package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Signal, risk and order book core for a crypto trading bot",
	Long: `Trader turns market data into risk-checked trade intents.

It provides tools for:
  - Maintaining per-symbol order books from depth updates
  - Generating moving-average crossover signals from trade ticks
  - Gating every signal through daily-loss and exposure limits
  - Journaling intents and rejections to SQLite or CSV
  - Replaying recorded market data through the pipeline`,
	SilenceUsage: true,
}

var rootLogLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "override general.log_level (debug, info, warn, error)")
}
