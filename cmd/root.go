package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ecoform/internal/config"
)

var (
	cfgFile     string
	verbose     bool
	sessionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ecoform",
	Short: "Parameter form for the ecological simulation backend",
	Long: `ecoform keeps the simulation parameter form in sync with a persistent
per-session store, fills it with random or reset values, validates it and
submits it to the drawing backend. The same form is available from the
command line, over HTTP with a live page, and to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "session id (overrides config)")
}
