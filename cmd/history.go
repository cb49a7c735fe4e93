package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ecoform/internal/history"
	"github.com/ziadkadry99/ecoform/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show what was done to the session's form",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions with stored form values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			infos, err := session.List(ctx, a.db)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions stored.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tKEYS\tUPDATED")
			for _, info := range infos {
				marker := ""
				if info.ID == a.cfg.Session {
					marker = " *"
				}
				fmt.Fprintf(tw, "%s%s\t%d\t%s\n", info.ID, marker, info.Keys, info.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		})
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored value of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := session.NewSQLStore(a.db, a.cfg.Session).Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %q cleared.\n", a.cfg.Session)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of events")
	historyCmd.Flags().String("action", "", "filter by action: filled, reset, restored, edited, submitted, rejected, failed")
	historyCmd.Flags().Duration("since", 0, "only events newer than this (e.g. 24h)")
	historyCmd.Flags().Duration("prune", 0, "delete events older than this instead of listing")
	historyCmd.Flags().Bool("all-sessions", false, "include every session")
	historyCmd.Flags().Bool("json", false, "output events as JSON")

	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(historyCmd, sessionsCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	action, _ := cmd.Flags().GetString("action")
	since, _ := cmd.Flags().GetDuration("since")
	prune, _ := cmd.Flags().GetDuration("prune")
	allSessions, _ := cmd.Flags().GetBool("all-sessions")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if action != "" && !history.ValidAction(history.Action(action)) {
		return fmt.Errorf("unknown action %q", action)
	}

	return withApp(func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()

		if prune > 0 {
			n, err := a.history.DeleteBefore(ctx, time.Now().Add(-prune))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d events older than %s.\n", n, prune)
			return nil
		}

		filter := history.QueryFilter{Action: history.Action(action), Limit: limit}
		if !allSessions {
			filter.SessionID = a.cfg.Session
		}
		if since > 0 {
			t := time.Now().Add(-since)
			filter.Since = &t
		}

		events, err := a.history.Query(ctx, filter)
		if err != nil {
			return err
		}

		if jsonOutput {
			if events == nil {
				events = []history.Event{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSESSION\tACTION\tSUMMARY")
		for _, e := range events {
			summary := e.Summary
			if e.Status != "" {
				summary += " [" + e.Status + "]"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format(time.DateTime), e.SessionID, e.Action, summary)
		}
		return tw.Flush()
	})
}
