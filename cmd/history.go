package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mykolas-perevicius/edplay/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent progress activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Kind, _ = cmd.Flags().GetString("kind")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		events, err := e.store.EventRepo().QueryProgressEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No activity recorded.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %-8s  %s\n", "Time", "Event", "Session", "Detail")
		fmt.Println(strings.Repeat("─", 90))
		for _, ev := range events {
			fmt.Printf("%-19s  %-16s  %-8s  %s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Kind, shortID(ev.SessionID), eventDetail(ev))
		}
		return nil
	},
}

func eventDetail(ev store.ProgressEventRecord) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{ev.Lesson, ev.PathID, ev.Detail} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of events (0 for all)")
	historyCmd.Flags().String("kind", "", "Only show events of this kind (e.g. lesson_completed)")
	historyCmd.Flags().Duration("since", 0, "Only show events newer than this (e.g. 24h)")
}
