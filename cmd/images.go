package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ecoform/internal/images"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List the result images for the session's last run",
	Long: `Prints the graphic, disturbances and diagram pages the way the site
shows them: the cache-busted image URLs after a completed run, or the
"not available" message otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			status, err := a.form.Status(ctx)
			if err != nil {
				return err
			}
			checker := images.NewChecker(a.cfg.Images.Dir, a.cfg.Images.BaseURL)
			reports, err := checker.Check(status)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range reports {
				fmt.Fprintf(out, "# %s\n", r.Page)
				if !r.Available {
					fmt.Fprintf(out, "  %s\n  %s\n", r.Message, images.Hint)
					continue
				}
				for _, img := range r.Images {
					if img.Missing {
						fmt.Fprintf(out, "  %s  (%s)\n", img.URL, img.Message)
						continue
					}
					fmt.Fprintf(out, "  %s\n", img.URL)
				}
			}

			if all, _ := cmd.Flags().GetBool("all"); all {
				files, err := checker.Discover()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%d rendered files in %s\n", len(files), a.cfg.Images.Dir)
				for _, f := range files {
					fmt.Fprintf(out, "  %s\n", f)
				}
			}
			return nil
		})
	},
}

var clearImagesCmd = &cobra.Command{
	Use:   "clear-images",
	Short: "Ask the backend to delete its rendered images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			msg, err := a.client.ClearImages(ctx)
			if err != nil {
				return fmt.Errorf("clearing images at %s: %w", a.client.BaseURL(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		})
	},
}

func init() {
	imagesCmd.Flags().Bool("all", false, "also list every rendered file found in images.dir")
	rootCmd.AddCommand(imagesCmd, clearImagesCmd)
}
