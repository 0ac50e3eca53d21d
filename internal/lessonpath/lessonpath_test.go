package lessonpath

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestComputeBase(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		docRoot *string
		want    string
	}{
		{"page directory", "https://example.com/docs/easy/01.html", nil, "/docs/easy/"},
		{"doc root parent", "https://example.com/docs/easy/01.html", strPtr("../"), "/docs/"},
		{"doc root current", "https://example.com/docs/index.html", strPtr("./"), "/docs/"},
		{"empty doc root means slash", "https://example.com/docs/index.html", strPtr(""), "/"},
		{"no page", "", nil, "/"},
		{"bare path", "/docs/page.html", nil, "/docs/"},
		{"host only", "https://example.com", nil, "/"},
		{"doc root without trailing slash", "https://example.com/a/b.html", strPtr("/site"), "/site/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeBase(tt.page, tt.docRoot); got != tt.want {
				t.Errorf("ComputeBase(%q) = %q, want %q", tt.page, got, tt.want)
			}
		})
	}
}

func TestBuildDocURL(t *testing.T) {
	tests := []struct {
		base string
		rel  string
		want string
	}{
		{"/docs/", "easy/01.html", "/docs/easy/01.html"},
		{"/docs/", "/easy/01.html", "/docs/easy/01.html"},
		{"/docs/", "", "/docs/"},
		{"/", "", "/"},
		{"/", "easy/01.html", "/easy/01.html"},
	}

	for _, tt := range tests {
		if got := New(tt.base).BuildDocURL(tt.rel); got != tt.want {
			t.Errorf("BuildDocURL(%q) with base %q = %q, want %q", tt.rel, tt.base, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	n := New("/docs/")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"relative", "easy/01.html", "/docs/easy/01.html"},
		{"absolute path unchanged", "/docs/easy/01.html", "/docs/easy/01.html"},
		{"absolute url", "https://example.com/docs/easy/01.html", "/docs/easy/01.html"},
		{"http url", "http://example.com/docs/easy/01.html?x=1#frag", "/docs/easy/01.html"},
		{"url without path", "https://example.com", "/"},
		{"index page", "easy/index.html", "/docs/easy/"},
		{"root index", "index.html", "/docs/"},
		{"duplicate trailing slashes", "easy//", "/docs/easy/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeMalformedURLFallsBack(t *testing.T) {
	n := New("/docs/")
	got := n.Normalize("http://[::1")
	if !strings.HasPrefix(got, "/docs/") {
		t.Errorf("malformed URL should resolve relative to base, got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"easy/01.html",
		"/docs/easy/01.html",
		"https://example.com/docs/easy/01.html",
		"https://example.com",
		"easy/index.html",
		"medium//",
		"http://[::1",
		"hard/a b.html",
	}

	for _, base := range []string{"/", "/docs/", "/a/b/"} {
		n := New(base)
		for _, in := range inputs {
			once := n.Normalize(in)
			if twice := n.Normalize(once); twice != once {
				t.Errorf("base %q: Normalize(Normalize(%q)) = %q, want %q", base, in, twice, once)
			}
		}
	}
}

func TestNormalizeStripsSchemeAndHost(t *testing.T) {
	n := New("/docs/")
	for _, u := range []string{
		"https://example.com/docs/easy/01.html",
		"http://user:pw@example.com:8080/x",
		"https://example.com",
	} {
		got := n.Normalize(u)
		if strings.Contains(got, "://") || strings.Contains(got, "example.com") {
			t.Errorf("Normalize(%q) = %q still carries scheme or host", u, got)
		}
	}
}

func TestNormalizeAllDedupes(t *testing.T) {
	n := New("/docs/")
	got := n.NormalizeAll([]string{
		"easy/01.html",
		"/docs/easy/01.html",
		"https://example.com/docs/easy/01.html",
		"",
		"medium/02.html",
	})
	want := []string{"/docs/easy/01.html", "/docs/medium/02.html"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeAll[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPageClassifiers(t *testing.T) {
	if !IsLessonPage("/docs/easy/01.html") {
		t.Error("easy page should be a lesson page")
	}
	if IsLessonPage("/docs/tools/README.html") {
		t.Error("tools page should not be a lesson page")
	}
	for _, p := range []string{"/docs/", "/docs/index.html", "/docs/README.html"} {
		if !IsHomepage(p) {
			t.Errorf("IsHomepage(%q) = false, want true", p)
		}
	}
	if IsHomepage("/docs/easy/01.html") {
		t.Error("lesson page should not be a homepage")
	}
}
