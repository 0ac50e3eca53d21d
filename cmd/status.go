package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mykolas-perevicius/edplay/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show learning progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		rec := e.tracker.Record()
		fmt.Printf("Level:         %s\n", orNone(rec.Level))
		fmt.Printf("Started:       %s\n", orNone(rec.StartedAt))
		fmt.Printf("Last visited:  %s\n", orNone(rec.LastVisited))
		fmt.Printf("Completed:     %d lessons\n", len(rec.CompletedLessons))

		if active, ok := e.tracker.ActivePath(); ok {
			fmt.Printf("Guided path:   %s %s (%d/%d)\n",
				active.Path.Icon, active.Path.Title, active.Cursor, active.Total)
			if next := active.NextLesson(); next != "" {
				fmt.Printf("Next lesson:   %s\n", e.norm.BuildDocURL(next))
			}
		} else {
			fmt.Println("Guided path:   (none)")
		}

		fmt.Println()
		printPaths(e.tracker.PathProgress())
		return nil
	},
}

func printPaths(paths []progress.PathStatus) {
	fmt.Printf("  %-14s  %-28s  %9s  %s\n", "ID", "Title", "Completed", "")
	fmt.Println(strings.Repeat("─", 72))
	for _, p := range paths {
		marker := " "
		if p.Active {
			marker = "*"
		}
		fmt.Printf("%s %-14s  %-28s  %4d/%-4d  %s\n",
			marker, p.Path.ID, p.Path.Title, p.Completed, p.Total, bar(p.Completed, p.Total, 20))
	}
}

func bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return *s
}
