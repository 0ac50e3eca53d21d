package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mykolas-perevicius/edplay/internal/badge"
	"github.com/mykolas-perevicius/edplay/internal/exercise"
	"github.com/mykolas-perevicius/edplay/internal/page"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Work with built lesson pages",
}

var pageInspectCmd = &cobra.Command{
	Use:   "inspect <file.html>",
	Short: "Show the sidebar, consoles and checkers of a lesson page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := page.ParseFile(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Println("Title:   ", p.Title)
		if p.DocRoot != nil {
			fmt.Printf("Doc root: %q\n", *p.DocRoot)
		}
		if u, _ := cmd.Flags().GetString("url"); u != "" {
			fmt.Println("Base:    ", p.Base(u))
		}

		links := badge.Annotate(p.SidebarLinks, e.tracker.Record(), e.norm)
		fmt.Printf("\n%s\n", badge.Summary(len(e.tracker.Record().CompletedLessons), len(links)))
		for _, l := range links {
			tag := ""
			if l.Completed {
				tag = "  [" + badge.Label + "]"
			}
			fmt.Printf("  %s%s\n", l.Canonical, tag)
		}

		fmt.Printf("\n%d live consoles, %d inline checkers\n", len(p.Consoles), len(p.Checkers))
		for i, b := range p.Checkers {
			exp := "(no expectation)"
			if b.Expected != "" {
				exp = b.Expected
			}
			fmt.Printf("  checker %d: %s\n", i+1, exp)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <lesson> [source.go]",
	Short: "Run code in the sandbox and credit the lesson on success",
	Long: `Runs Go source in the embedded interpreter, reading it from the given file
or from stdin. A clean run marks the lesson complete. With --expect the output
must also satisfy the expectation, given as JSON like {"equals":"42"}.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		code, err := readSource(cmd, args[1:])
		if err != nil {
			return err
		}
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		r := e.runner()
		var out exercise.Outcome
		if raw, _ := cmd.Flags().GetString("expect"); raw != "" {
			out, err = r.Check(ctx, args[0], code, exercise.ParseExpectation(raw))
		} else {
			out, err = r.Console(ctx, args[0], code)
		}
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file.html>",
	Short: "Run every inline checker on a lesson page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := page.ParseFile(args[0])
		if err != nil {
			return err
		}
		if len(p.Checkers) == 0 {
			fmt.Println("No inline checkers on this page.")
			return nil
		}

		lesson, _ := cmd.Flags().GetString("as")
		if lesson == "" {
			lesson = filepath.ToSlash(args[0])
		}

		blocks := make([]exercise.Block, 0, len(p.Checkers))
		for _, b := range p.Checkers {
			blocks = append(blocks, exercise.Block{
				Code:     b.Code,
				Expected: exercise.ParseExpectation(b.Expected),
			})
		}

		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		outcomes, err := e.runner().CheckAll(ctx, lesson, blocks)
		if err != nil {
			return err
		}
		for i, out := range outcomes {
			fmt.Printf("checker %d: ", i+1)
			printOutcome(out)
		}
		return nil
	},
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0]) //nolint:gosec // user-selected source file
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func printOutcome(out exercise.Outcome) {
	fmt.Printf("[%s] %s\n", out.State, strings.TrimRight(out.Output, "\n"))
	if out.Completed {
		fmt.Println("✓ lesson marked complete")
	}
}

func init() {
	pageInspectCmd.Flags().String("url", "", "URL the page is served at, to show the computed site base")
	pageCmd.AddCommand(pageInspectCmd)

	runCmd.Flags().String("expect", "", "Expectation JSON the output must satisfy")
	checkCmd.Flags().String("as", "", "Lesson path to credit (defaults to the file path)")
}
