package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Browse and follow guided learning paths",
}

var pathListCmd = &cobra.Command{
	Use:   "list",
	Short: "List guided paths with your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		printPaths(e.tracker.PathProgress())

		if lessons, _ := cmd.Flags().GetBool("lessons"); lessons {
			for _, p := range e.catalog.Paths() {
				fmt.Printf("\n%s %s\n", p.Icon, p.Title)
				for i, l := range p.Lessons {
					mark := " "
					if e.tracker.IsCompleted(l) {
						mark = "✓"
					}
					fmt.Printf("  %s %2d. %s\n", mark, i+1, e.norm.Normalize(l))
				}
			}
		}
		return nil
	},
}

var pathStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a guided path from its first lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := knownPath(e.catalog, args[0]); err != nil {
			return err
		}
		if err := e.tracker.SetGuidedPath(cmd.Context(), args[0]); err != nil {
			return err
		}
		active, _ := e.tracker.ActivePath()
		fmt.Printf("Started %s %s (%d lessons)\n", active.Path.Icon, active.Path.Title, active.Total)
		if next := active.NextLesson(); next != "" {
			fmt.Println("First lesson:", e.norm.BuildDocURL(next))
		}
		return nil
	},
}

var pathResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Leave the active guided path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.tracker.ResetGuidedPath(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Guided path cleared. Completed lessons are kept.")
		return nil
	},
}

// knownPath rejects ids the catalog does not define, so a typo on the
// command line is not stored as the active path.
func knownPath(cat *catalog.Catalog, id string) error {
	if _, ok := cat.Path(id); !ok {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownPath, id)
	}
	return nil
}

func init() {
	pathListCmd.Flags().Bool("lessons", false, "Also list each path's lessons")

	pathCmd.AddCommand(pathListCmd)
	pathCmd.AddCommand(pathStartCmd)
	pathCmd.AddCommand(pathResetCmd)
}
