package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/ecoform/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tools that load, fill, edit and submit the session's form.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.form.Hydrate(ctx); err != nil {
				return err
			}

			// Set version from the cmd package variable.
			mcpserver.Version = Version

			fmt.Fprintf(os.Stderr, "ecoform MCP server started on stdio (session=%s, backend=%s)\n", a.cfg.Session, a.cfg.BackendURL)

			srv := mcpserver.NewServer(a.form, a.fields, a.reload)
			return srv.Serve()
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
