package progress

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
)

// Storage keys shared with the course site's client scripts.
const (
	StorageKey    = "education_playground_progress"
	OnboardingKey = "education_playground_onboarded"
)

// TimeLayout is the millisecond ISO-8601 form the course site writes.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the learner's persisted progress. Nullable fields are pointers so
// that they serialize as JSON null.
type Record struct {
	Level            *string  `json:"level"`
	GuidedPath       *string  `json:"guidedPath"`
	GuidedIndex      int      `json:"guidedIndex"`
	StartedAt        *string  `json:"startedAt"`
	CompletedLessons []string `json:"completedLessons"`
	LastVisited      *string  `json:"lastVisited"`
}

// DefaultRecord returns the empty record used when nothing is stored.
func DefaultRecord() Record {
	return Record{CompletedLessons: []string{}}
}

// HasCompleted reports whether the canonical lesson id is in the record.
func (r Record) HasCompleted(canonical string) bool {
	return slices.Contains(r.CompletedLessons, canonical)
}

func (r Record) clone() Record {
	out := r
	out.CompletedLessons = slices.Clone(r.CompletedLessons)
	if out.CompletedLessons == nil {
		out.CompletedLessons = []string{}
	}
	return out
}

// decodeRecord parses a stored value leniently. Fields of the wrong type are
// dropped rather than failing the whole record, and lesson references are
// renormalized so data written by older clients heals on read. ok is false
// when raw is not a JSON object at all.
func decodeRecord(raw string, norm *lessonpath.Normalizer) (rec Record, ok bool) {
	rec = DefaultRecord()

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return rec, false
	}

	rec.Level = stringField(data, "level")
	rec.GuidedPath = stringField(data, "guidedPath")
	rec.StartedAt = stringField(data, "startedAt")

	if n, isNum := data["guidedIndex"].(float64); isNum && n > 0 {
		// Past any path length; the tracker clamps it to the active path.
		rec.GuidedIndex = int(math.Trunc(min(n, math.MaxInt32)))
	}

	if list, isList := data["completedLessons"].([]any); isList {
		lessons := make([]string, 0, len(list))
		for _, v := range list {
			if s, isStr := v.(string); isStr {
				lessons = append(lessons, s)
			}
		}
		rec.CompletedLessons = norm.NormalizeAll(lessons)
	}

	if lv := stringField(data, "lastVisited"); lv != nil {
		rec.LastVisited = optional(norm.Normalize(*lv))
	}
	return rec, true
}

// stringField returns a non-empty string value, or nil.
func stringField(data map[string]any, key string) *string {
	s, ok := data[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
