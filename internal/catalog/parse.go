package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the catalog format major version this build understands.
const SupportedMajor = "v1"

const schemaURL = "schema://edplay/catalog.json"

//go:embed catalog.schema.json
var catalogSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// file mirrors the on-disk catalog layout.
type file struct {
	Version      string       `yaml:"version"`
	NotebookBase string       `yaml:"notebook_base"`
	Paths        []GuidedPath `yaml:"paths"`
	Levels       []Level      `yaml:"levels"`
	QuickNav     []NavLink    `yaml:"quick_nav"`
}

// Parse validates and builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("version %q is not a semantic version", f.Version)
	}
	if major := semver.Major(f.Version); major != SupportedMajor {
		return nil, fmt.Errorf("version %s: unsupported major %s (want %s)", f.Version, major, SupportedMajor)
	}

	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		version:      f.Version,
		notebookBase: f.NotebookBase,
		paths:        f.Paths,
		pathIndex:    make(map[string]int, len(f.Paths)),
		levels:       f.Levels,
		levelIndex:   make(map[string]int, len(f.Levels)),
		quickNav:     f.QuickNav,
	}

	for i, p := range f.Paths {
		if _, dup := c.pathIndex[p.ID]; dup {
			return nil, fmt.Errorf("duplicate guided path %q", p.ID)
		}
		c.pathIndex[p.ID] = i
	}
	for i, l := range f.Levels {
		if _, dup := c.levelIndex[l.ID]; dup {
			return nil, fmt.Errorf("duplicate level %q", l.ID)
		}
		c.levelIndex[l.ID] = i
	}
	return c, nil
}

// validate checks a decoded YAML document against the catalog schema.
func validate(doc any) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	// The validator wants JSON-shaped values, so round-trip through JSON.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert catalog to json: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert catalog to json: %w", err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func getSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
