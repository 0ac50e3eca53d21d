// Package analytics builds the downloadable learning-analytics snapshot.
package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mykolas-perevicius/edplay/internal/progress"
)

// PathSummary is one guided path's line in the export.
type PathSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	TotalLessons int    `json:"totalLessons"`
	Completed    int    `json:"completed"`
}

// Report is the analytics document. Its JSON form is what the course site
// offers for download.
type Report struct {
	GeneratedAt string          `json:"generatedAt"`
	Progress    progress.Record `json:"progress"`
	GuidedPaths []PathSummary   `json:"guidedPaths"`
}

// Build assembles a report from the current record and per-path status.
func Build(rec progress.Record, paths []progress.PathStatus, now time.Time) Report {
	r := Report{
		GeneratedAt: now.UTC().Format(progress.TimeLayout),
		Progress:    rec,
		GuidedPaths: make([]PathSummary, 0, len(paths)),
	}
	for _, p := range paths {
		r.GuidedPaths = append(r.GuidedPaths, PathSummary{
			ID:           p.Path.ID,
			Title:        p.Path.Title,
			TotalLessons: p.Total,
			Completed:    p.Completed,
		})
	}
	return r
}

// FileName returns the download name for a report generated at ts. Colons
// are replaced so the name is valid on every filesystem.
func FileName(ts string) string {
	return fmt.Sprintf("education-playground-analytics-%s.json", strings.ReplaceAll(ts, ":", "-"))
}

// WriteJSON writes the report with two-space indentation.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode analytics: %w", err)
	}
	return nil
}
