// Package badge decides which sidebar lessons carry a "Completed" badge and
// renders the header progress summary.
package badge

import (
	"fmt"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
)

// Label is the text of a completion badge.
const Label = "Completed"

// Link is a sidebar entry with its completion state.
type Link struct {
	Href      string
	Canonical string
	Completed bool
}

// Completion is the subset of progress the badges read.
type Completion interface {
	HasCompleted(canonical string) bool
}

// Annotate resolves each sidebar href and marks the completed ones. Hrefs
// that normalize to nothing are skipped.
func Annotate(hrefs []string, done Completion, norm *lessonpath.Normalizer) []Link {
	out := make([]Link, 0, len(hrefs))
	for _, h := range hrefs {
		c := norm.Normalize(h)
		if c == "" {
			continue
		}
		out = append(out, Link{Href: h, Canonical: c, Completed: done.HasCompleted(c)})
	}
	return out
}

// Summary renders the header progress line. completed is the learner's total
// completed lessons and total the number of lessons in the sidebar, so the
// two need not share a scope.
func Summary(completed, total int) string {
	return fmt.Sprintf("Progress: %d/%d lessons", completed, total)
}
