package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/progress"
	"github.com/ziadkadry99/ecoform/internal/schema"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Open the form as the page does on load",
	Long: `Restores the stored values when the last run completed; otherwise fills
the form with fresh random values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if _, err := a.form.Load(ctx); err != nil {
				return err
			}
			a.printForm(cmd.OutOrStdout())
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored form values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.form.Hydrate(ctx); err != nil {
				return err
			}
			if asRequest, _ := cmd.Flags().GetBool("request"); asRequest {
				return writeRequest(cmd, a.form.Collect().Request())
			}
			a.printForm(cmd.OutOrStdout())
			return nil
		})
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the form with random values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if _, err := a.form.FillRandom(ctx); err != nil {
				return err
			}
			a.printForm(cmd.OutOrStdout())
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the form to the documented default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if _, err := a.form.Reset(ctx); err != nil {
				return err
			}
			a.printForm(cmd.OutOrStdout())
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one field and store it",
	Example: `  ecoform set time-value 0.75
  ecoform set init-eq-2 0.3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.form.Edit(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate the form and send it to the backend",
	Long: `Collects the stored values, applies any --set overrides, validates the
initial values against their limits and posts the request to the backend's
/draw_graphics endpoint. After a successful run the form is reloaded.`,
	Example: `  ecoform submit
  ecoform submit --set time-value=1 --set restrictions-3=0.95`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Submit the current values once for every time checkpoint",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	showCmd.Flags().Bool("request", false, "print the backend request as JSON")
	submitCmd.Flags().StringArray("set", nil, "override a field before submitting (key=value, repeatable)")
	submitCmd.Flags().Bool("no-reload", false, "skip the reload after a successful run")

	rootCmd.AddCommand(loadCmd, showCmd, fillCmd, resetCmd, setCmd, submitCmd, sweepCmd)
}

// withApp opens the session, runs fn and closes everything afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	noReload, _ := cmd.Flags().GetBool("no-reload")

	assignments, err := parseAssignments(sets)
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		if err := a.form.Hydrate(ctx); err != nil {
			return err
		}
		for _, kv := range assignments {
			if !schema.IsKey(kv[0]) {
				return &form.UnknownFieldError{Key: kv[0]}
			}
			a.fields.Set(kv[0], kv[1])
		}

		resp, err := a.form.Submit(ctx)
		if err != nil {
			return describeSubmitError(a, err)
		}

		out := cmd.OutOrStdout()
		status, _ := a.fields.Get(schema.StatusField)
		fmt.Fprintln(out, status)
		a.logger.Debug("backend responded",
			zap.String("status", resp.Status),
			zap.String("time_used", resp.TimeUsed))

		if noReload {
			return nil
		}
		if a.reload.Wait(ctx) {
			if _, err := a.form.Load(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out)
			a.printForm(out)
		}
		return nil
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.form.Hydrate(ctx); err != nil {
			return err
		}
		if err := form.Validate(a.form.Collect()); err != nil {
			return err
		}

		reporter := progress.NewReporter("Sweeping time checkpoints")
		reporter.Start(len(schema.TimeCheckpoints))

		var results []string
		for i, t := range schema.TimeCheckpoints {
			a.fields.Set(schema.KeyTime, schema.FormatValue(t))
			if _, err := a.form.Submit(ctx); err != nil {
				reporter.Finish()
				return describeSubmitError(a, err)
			}
			status, _ := a.fields.Get(schema.StatusField)
			results = append(results, status)
			reporter.Update(i+1, status)
		}
		reporter.Finish()

		out := cmd.OutOrStdout()
		for i, t := range schema.TimeCheckpoints {
			fmt.Fprintf(out, "t=%-5s %s\n", schema.FormatValue(t), results[i])
		}

		if a.reload.Wait(ctx) {
			_, err := a.form.Load(ctx)
			return err
		}
		return nil
	})
}

// describeSubmitError adds the form status to transport failures; other
// errors already carry their message.
func describeSubmitError(a *app, err error) error {
	var terr *form.TransportError
	if errors.As(err, &terr) {
		status, _ := a.fields.Get(schema.StatusField)
		fmt.Fprintf(os.Stderr, "%s (%s)\n", status, a.client.BaseURL())
	}
	return err
}

func writeRequest(cmd *cobra.Command, req schema.Request) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(req)
}
