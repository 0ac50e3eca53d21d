package progress

import "github.com/mykolas-perevicius/edplay/internal/catalog"

// PathStatus summarizes the learner's standing on one guided path.
type PathStatus struct {
	Path      catalog.GuidedPath
	Completed int
	Total     int
	Active    bool
	// Cursor is the guided index when Active, otherwise 0.
	Cursor int
}

// Done reports whether every lesson in the path is complete.
func (s PathStatus) Done() bool {
	return s.Total > 0 && s.Completed >= s.Total
}

// NextLesson returns the raw lesson at the cursor of an active path, or ""
// when the path is inactive or finished.
func (s PathStatus) NextLesson() string {
	if !s.Active || s.Cursor >= len(s.Path.Lessons) {
		return ""
	}
	return s.Path.Lessons[s.Cursor]
}

// PathProgress reports completion for every catalog path in display order.
// A path's completed count is the number of its distinct normalized lessons
// present in the completed set.
func (t *Tracker) PathProgress() []PathStatus {
	active := deref(t.record.GuidedPath)
	paths := t.catalog.Paths()
	out := make([]PathStatus, 0, len(paths))
	for _, p := range paths {
		lessons := t.norm.NormalizeAll(p.Lessons)
		done := 0
		for _, l := range lessons {
			if t.record.HasCompleted(l) {
				done++
			}
		}
		st := PathStatus{
			Path:      p,
			Completed: done,
			Total:     len(p.Lessons),
			Active:    p.ID == active,
		}
		if st.Active {
			st.Cursor = t.record.GuidedIndex
		}
		out = append(out, st)
	}
	return out
}

// ActivePath returns the status of the active guided path, if any.
func (t *Tracker) ActivePath() (PathStatus, bool) {
	for _, st := range t.PathProgress() {
		if st.Active {
			return st, true
		}
	}
	return PathStatus{}, false
}
