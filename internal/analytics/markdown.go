package analytics

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/nao1215/markdown"
)

// WriteMarkdown writes a human-readable version of the report.
func WriteMarkdown(w io.Writer, r Report) error {
	md := markdown.NewMarkdown(w)
	rec := r.Progress

	md.H1("Learning Analytics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", r.GeneratedAt},
			{"Level", orDash(rec.Level)},
			{"Started", orDash(rec.StartedAt)},
			{"Last visited", orDash(rec.LastVisited)},
			{"Lessons completed", strconv.Itoa(len(rec.CompletedLessons))},
		},
	})
	md.PlainText("")

	md.H2("Guided Paths")
	md.PlainText("")
	rows := make([][]string, 0, len(r.GuidedPaths))
	finished := 0
	for _, p := range r.GuidedPaths {
		title := p.Title
		if rec.GuidedPath != nil && *rec.GuidedPath == p.ID {
			title = "**" + title + "** (active)"
		}
		if p.TotalLessons > 0 && p.Completed >= p.TotalLessons {
			finished++
		}
		rows = append(rows, []string{
			"`" + p.ID + "`",
			title,
			fmt.Sprintf("%d/%d", p.Completed, p.TotalLessons),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Path", "Title", "Completed"},
		Rows:   rows,
	})
	md.PlainText("")
	if finished > 0 {
		md.Tip(fmt.Sprintf("%d guided path(s) fully completed.", finished))
		md.PlainText("")
	}

	md.H2("Completed Lessons")
	md.PlainText("")
	if len(rec.CompletedLessons) == 0 {
		md.Note("No lessons completed yet.")
	} else {
		md.BulletList(rec.CompletedLessons...)
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("write analytics markdown: %w", err)
	}
	return nil
}

// Render formats the markdown report for a terminal of the given width.
func Render(r Report, width int) (string, error) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, r); err != nil {
		return "", err
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(buf.String())
	if err != nil {
		return "", fmt.Errorf("render analytics: %w", err)
	}
	return out, nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
