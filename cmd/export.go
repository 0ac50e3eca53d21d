package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mykolas-perevicius/edplay/internal/analytics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export learning analytics",
	Long: `Writes education-playground-analytics-<timestamp>.json into --out.
With --markdown the report is printed as markdown instead, and with --render
it is formatted for the terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		r := analytics.Build(e.tracker.Record(), e.tracker.PathProgress(), time.Now())

		if render, _ := cmd.Flags().GetBool("render"); render {
			width, _ := cmd.Flags().GetInt("width")
			out, err := analytics.Render(r, width)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}
		if md, _ := cmd.Flags().GetBool("markdown"); md {
			return analytics.WriteMarkdown(cmd.OutOrStdout(), r)
		}

		dir, _ := cmd.Flags().GetString("out")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		path := filepath.Join(dir, analytics.FileName(r.GeneratedAt))
		f, err := os.Create(path) //nolint:gosec // user-selected output dir
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		if err := analytics.WriteJSON(f, r); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close export: %w", err)
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", ".", "Directory for the JSON export")
	exportCmd.Flags().Bool("markdown", false, "Print the report as markdown")
	exportCmd.Flags().Bool("render", false, "Print the report formatted for the terminal")
	exportCmd.Flags().Int("width", 80, "Wrap width for --render")
}
