package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "pricelens/internal/config"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "pricelens",
	Short: "PriceLens: price-intelligence widget with an AI chat assistant",
	Long: `PriceLens loads a columnar price dataset (CSV, XLSX, or SQLite), aggregates
average prices by location, unit, and item, and serves them through a budget
widget and a chat endpoint backed by an LLM API.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pricelens.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = &cfgpkg.Global{}
		return
	}
	cfg = c
}
