// Package lessonpath maps the different ways a lesson page can be referenced
// (absolute URL, site-absolute path, path relative to the documentation root)
// onto one canonical identifier used for equality and set membership.
package lessonpath

import (
	"net/url"
	"strings"
)

// lessonSections are the site directories that hold lesson pages.
var lessonSections = []string{"/easy/", "/medium/", "/hard/", "/beginner_scripts/"}

// ComputeBase derives the site base path for a page.
//
// When docRoot is non-nil it is the documentation root published by the site
// generator (an empty value means "/"), resolved against pageURL. Otherwise
// the directory of the page itself is used. The result always starts and ends
// with a slash.
func ComputeBase(pageURL string, docRoot *string) string {
	if docRoot != nil {
		root := *docRoot
		if root == "" {
			root = "/"
		}
		return withSlashes(resolvePath(pageURL, root))
	}

	p := pagePath(pageURL)
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "/"
	}
	return withSlashes(p[:idx+1])
}

// resolvePath resolves ref against base and returns the escaped path.
// Unparseable input degrades to ref itself.
func resolvePath(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return r.EscapedPath()
	}
	return b.ResolveReference(r).EscapedPath()
}

func pagePath(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	return u.EscapedPath()
}

func withSlashes(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Normalizer canonicalizes lesson references against a fixed base path.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	base string
}

// New returns a Normalizer rooted at base. An empty base means "/".
func New(base string) *Normalizer {
	if base == "" {
		base = "/"
	}
	return &Normalizer{base: withSlashes(base)}
}

// Base returns the base path the normalizer resolves relative paths against.
func (n *Normalizer) Base() string {
	return n.base
}

// BuildDocURL joins the base path and a site-relative path with exactly one
// slash between them. An empty rel yields the base itself.
func (n *Normalizer) BuildDocURL(rel string) string {
	trimmedBase := strings.TrimRight(n.base, "/")
	trimmedRel := strings.TrimLeft(rel, "/")

	if trimmedRel == "" {
		if trimmedBase == "" {
			return "/"
		}
		return trimmedBase + "/"
	}
	if trimmedBase == "" {
		return "/" + trimmedRel
	}
	return trimmedBase + "/" + trimmedRel
}

// Normalize returns the canonical identifier for p, or "" when p is empty.
//
// Absolute http(s) URLs are reduced to their path. Paths starting with "/"
// are already canonical. Anything else is resolved against the base path,
// with a trailing index.html dropped so a directory and its index page
// collapse to the same identifier. Normalize is idempotent.
func (n *Normalizer) Normalize(p string) string {
	if p == "" {
		return ""
	}

	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		if u, err := url.Parse(p); err == nil {
			if path := u.EscapedPath(); path != "" {
				return path
			}
			return "/"
		}
		// Malformed URLs fall through to relative handling.
	}

	if strings.HasPrefix(p, "/") {
		return p
	}

	out := strings.TrimSuffix(n.BuildDocURL(p), "index.html")
	if trimmed := strings.TrimRight(out, "/"); len(trimmed) < len(out) {
		out = trimmed + "/"
	}
	return out
}

// NormalizeAll normalizes every entry, dropping empties and duplicates while
// keeping first-seen order.
func (n *Normalizer) NormalizeAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		c := n.Normalize(p)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// IsLessonPage reports whether path points into one of the lesson sections.
func IsLessonPage(path string) bool {
	for _, s := range lessonSections {
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}

// IsHomepage reports whether path is a landing page where first-run
// onboarding may be offered.
func IsHomepage(path string) bool {
	return strings.HasSuffix(path, "/") ||
		strings.HasSuffix(path, "index.html") ||
		strings.HasSuffix(path, "README.html")
}
