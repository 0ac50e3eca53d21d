package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/progress"
)

func TestAnnotate(t *testing.T) {
	norm := lessonpath.New("/site/easy/")
	rec := progress.Record{CompletedLessons: []string{"/site/easy/01.html", "/site/medium/"}}

	got := Annotate([]string{"01.html", "", "02.html", "../medium/index.html", "https://example.org/site/easy/01.html"}, rec, norm)

	assert.Equal(t, []Link{
		{Href: "01.html", Canonical: "/site/easy/01.html", Completed: true},
		{Href: "02.html", Canonical: "/site/easy/02.html"},
		{Href: "../medium/index.html", Canonical: "/site/easy/../medium/", Completed: false},
		{Href: "https://example.org/site/easy/01.html", Canonical: "/site/easy/01.html", Completed: true},
	}, got)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Progress: 3/12 lessons", Summary(3, 12))
	assert.Equal(t, "Progress: 0/0 lessons", Summary(0, 0))
}
