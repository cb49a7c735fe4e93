package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ecoform/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ecoform configuration with an interactive wizard",
	Long:  `Runs an interactive wizard for the backend address, session and HTTP settings and writes a .ecoform.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (backend %s, session %q)\n", config.FileName, cfg.BackendURL, cfg.Session)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
