package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
)

var visitCmd = &cobra.Command{
	Use:   "visit <page>",
	Short: "Record a lesson page as last visited",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		canonical := e.norm.Normalize(args[0])
		force, _ := cmd.Flags().GetBool("any")
		if !force && !lessonpath.IsLessonPage(canonical) {
			fmt.Printf("%s is not a lesson page; not recorded (use --any to record it anyway)\n", canonical)
			return nil
		}
		if err := e.tracker.SetLastVisited(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Last visited:", canonical)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <lesson>...",
	Short: "Mark lessons complete and advance the guided path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		for _, lesson := range args {
			canonical := e.norm.Normalize(lesson)
			if canonical == "" {
				fmt.Printf("skip %q: not a lesson reference\n", lesson)
				continue
			}
			updated, err := e.tracker.CompleteLesson(ctx, lesson)
			if err != nil {
				return fmt.Errorf("complete %s: %w", canonical, err)
			}
			if updated {
				fmt.Println("✓ completed", canonical)
			} else {
				fmt.Println("  already completed", canonical)
			}
		}

		if active, ok := e.tracker.ActivePath(); ok {
			fmt.Printf("\n%s %s: %d/%d\n", active.Path.Icon, active.Path.Title, active.Cursor, active.Total)
			if next := active.NextLesson(); next != "" {
				fmt.Println("Next:", e.norm.BuildDocURL(next))
			} else {
				fmt.Println("Path complete!")
			}
		}
		return nil
	},
}

var levelCmd = &cobra.Command{
	Use:   "level [id]",
	Short: "Show or set your skill level",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			current := orNone(e.tracker.Record().Level)
			caser := cases.Title(language.English)
			for _, l := range e.catalog.Levels() {
				marker := " "
				if l.ID == current {
					marker = "*"
				}
				fmt.Printf("%s %s %-12s  %-32s  %s\n", marker, l.Icon, caser.String(l.ID), l.Title, l.Time)
			}
			return nil
		}

		if err := e.tracker.SetLevel(ctx, args[0]); err != nil {
			return err
		}
		l, _ := e.catalog.Level(args[0])
		fmt.Printf("Level set to %s %s\n", l.Icon, l.Title)
		if l.Entry != "" {
			fmt.Printf("%s: %s\n", l.Action, e.norm.BuildDocURL(l.Entry))
		}
		if l.OffersNotebook() {
			fmt.Println("Open in Colab:", e.catalog.NotebookURL(l.Notebook))
		}
		for _, o := range l.Options {
			fmt.Printf("  %s %-28s %s\n", o.Icon, o.Label, e.norm.BuildDocURL(o.Path))
		}
		return nil
	},
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Check or complete first-run onboarding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if done, _ := cmd.Flags().GetBool("done"); done {
			if err := e.tracker.SetOnboarded(ctx); err != nil {
				return err
			}
			fmt.Println("Onboarding marked complete.")
			return nil
		}

		if page, _ := cmd.Flags().GetString("page"); page != "" && !lessonpath.IsHomepage(e.norm.Normalize(page)) {
			fmt.Println("Onboarding is only offered on the course homepage.")
			return nil
		}

		force, _ := cmd.Flags().GetBool("force")
		show, err := e.tracker.ShouldOnboard(ctx, force)
		if err != nil {
			return err
		}
		if !show {
			fmt.Println("Already onboarded. Use --force to see the levels again.")
			return nil
		}
		fmt.Println("Welcome to the Education Playground! Pick a starting level:")
		fmt.Println()
		for _, l := range e.catalog.Levels() {
			fmt.Printf("  %s %-12s %s\n", l.Icon, l.ID, l.Description)
		}
		fmt.Println()
		fmt.Println("Run `edplay level <id>` to choose one.")
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <path>...",
	Short: "Print the canonical lesson id for each path or URL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		norm := conf.Normalizer()
		for _, p := range args {
			fmt.Printf("%s\t%s\n", p, norm.Normalize(p))
		}
		return nil
	},
}

func init() {
	visitCmd.Flags().Bool("any", false, "Record pages outside the lesson folders too")

	onboardCmd.Flags().Bool("done", false, "Mark onboarding complete")
	onboardCmd.Flags().Bool("force", false, "Show onboarding even if already completed")
	onboardCmd.Flags().String("page", "", "Only offer onboarding when this page is the homepage")
}
