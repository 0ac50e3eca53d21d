// Package catalog holds the static curriculum tables: guided learning paths,
// onboarding levels and quick navigation targets. A Catalog is immutable once
// built and is shared read-only by the progress tracker and the renderers.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrUnknownPath is returned when a guided path id is not in the catalog.
	ErrUnknownPath = errors.New("unknown guided path")

	// ErrUnknownLevel is returned when a level id is not in the catalog.
	ErrUnknownLevel = errors.New("unknown level")
)

// GuidedPath is a named, ordered curriculum. Lessons are kept in their raw,
// pre-normalization form.
type GuidedPath struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Icon        string   `yaml:"icon" json:"icon"`
	Description string   `yaml:"description" json:"description"`
	Lessons     []string `yaml:"lessons" json:"lessons"`
}

// Option is one destination offered by a level with several entry points.
type Option struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
	Icon  string `yaml:"icon"`
}

// Level is a skill tier a learner can start from.
type Level struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Action      string   `yaml:"action"`
	Entry       string   `yaml:"entry"`
	Notebook    string   `yaml:"notebook"`
	Time        string   `yaml:"time"`
	Options     []Option `yaml:"options"`

	// ShowNotebook defaults to true when unset.
	ShowNotebook *bool `yaml:"show_notebook"`
}

// OffersNotebook reports whether the level links to a hosted notebook.
func (l Level) OffersNotebook() bool {
	if l.Notebook == "" {
		return false
	}
	return l.ShowNotebook == nil || *l.ShowNotebook
}

// NavLink is a quick navigation target relative to the documentation root.
type NavLink struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Target string `yaml:"target"`
}

// Catalog is the immutable curriculum table.
type Catalog struct {
	version      string
	notebookBase string
	paths        []GuidedPath
	pathIndex    map[string]int
	levels       []Level
	levelIndex   map[string]int
	quickNav     []NavLink
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected catalog file
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Version returns the catalog format version.
func (c *Catalog) Version() string {
	return c.version
}

// Paths returns the guided paths in display order.
func (c *Catalog) Paths() []GuidedPath {
	out := make([]GuidedPath, len(c.paths))
	copy(out, c.paths)
	return out
}

// Path looks up a guided path by id.
func (c *Catalog) Path(id string) (GuidedPath, bool) {
	i, ok := c.pathIndex[id]
	if !ok {
		return GuidedPath{}, false
	}
	return c.paths[i], true
}

// Levels returns the onboarding levels in display order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Level looks up a level by id.
func (c *Catalog) Level(id string) (Level, bool) {
	i, ok := c.levelIndex[id]
	if !ok {
		return Level{}, false
	}
	return c.levels[i], true
}

// QuickNav returns the quick navigation targets.
func (c *Catalog) QuickNav() []NavLink {
	out := make([]NavLink, len(c.quickNav))
	copy(out, c.quickNav)
	return out
}

// NotebookURL returns the hosted notebook link for a repository path, or ""
// when the catalog has no notebook base.
func (c *Catalog) NotebookURL(p string) string {
	if c.notebookBase == "" || p == "" {
		return ""
	}
	return c.notebookBase + p
}
