package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/ecoform/internal/compute"
	"github.com/ziadkadry99/ecoform/internal/db"
	"github.com/ziadkadry99/ecoform/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server with the form API and live page",
	Long:  `Starts the ecoform HTTP server: JSON form API, live reload websocket, result images and the HTML parameter page. Each browser gets its own session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:          port,
			AllowAll:      cfg.Server.AllowAllOrigins,
			ImagesDir:     cfg.Images.Dir,
			ImagesBaseURL: cfg.Images.BaseURL,
			ReloadDelay:   cfg.ReloadDelay(),
			MaxDraws:      cfg.MaxDraws,
			SessionIdle:   cfg.SessionIdle(),
		}, database, compute.NewClient(cfg.BackendURL, cfg.ComputeTimeout()), logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "ecoform server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", cfg.BackendURL)
		if cfg.Images.Dir != "" {
			fmt.Fprintf(os.Stderr, "  Images: %s\n", cfg.Images.Dir)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
				return err
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
