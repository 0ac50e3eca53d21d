// Package config loads edplay settings from a YAML file and EDPLAY_*
// environment variables. Command-line flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
)

// AppName names the XDG directories.
const AppName = "edplay"

// DefaultConcurrency bounds parallel checker runs.
const DefaultConcurrency = 4

// Environment variables read by ApplyEnv.
const (
	EnvDB           = "EDPLAY_DB"
	EnvBase         = "EDPLAY_BASE"
	EnvPageURL      = "EDPLAY_PAGE_URL"
	EnvDocRoot      = "EDPLAY_DOC_ROOT"
	EnvCatalog      = "EDPLAY_CATALOG"
	EnvSandboxAllow = "EDPLAY_SANDBOX_ALLOW"
	EnvVerbose      = "EDPLAY_VERBOSE"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidBase is returned when the site base is not an absolute path.
	ErrInvalidBase = errors.New("invalid site base: must start with /")

	// ErrInvalidConcurrency is returned for a negative sandbox concurrency.
	ErrInvalidConcurrency = errors.New("invalid sandbox concurrency: must be non-negative")
)

// Site describes where the course site is served from.
type Site struct {
	// Base is the site base path. When empty it is derived from PageURL and
	// DocRoot the way the course pages derive it.
	Base    string  `yaml:"base"`
	PageURL string  `yaml:"page_url"`
	DocRoot *string `yaml:"doc_root"`
}

// Sandbox configures the code runner.
type Sandbox struct {
	// Allow replaces the default import allowlist when non-empty.
	Allow       []string `yaml:"allow"`
	Concurrency int      `yaml:"concurrency"`
}

// Config is the merged configuration.
type Config struct {
	DB      string  `yaml:"db"`
	Catalog string  `yaml:"catalog"`
	Verbose bool    `yaml:"verbose"`
	Site    Site    `yaml:"site"`
	Sandbox Sandbox `yaml:"sandbox"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{Sandbox: Sandbox{Concurrency: DefaultConcurrency}}
}

// DefaultPath returns $XDG_CONFIG_HOME/edplay/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads a configuration file over the defaults. A missing file yields
// ErrConfigNotFound.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Resolve loads the explicit file when given, otherwise the default file if
// it exists, and then applies environment overrides. Only an explicitly
// named file is required to exist.
func Resolve(explicit string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if explicit != "" {
		c, err = Load(explicit)
		if err != nil {
			return nil, err
		}
	} else {
		c, err = Load(DefaultPath())
		switch {
		case errors.Is(err, ErrConfigNotFound):
			c = Default()
		case err != nil:
			return nil, err
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// ApplyEnv overlays EDPLAY_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.DB = v
	}
	if v, ok := lookup(EnvBase); ok && v != "" {
		c.Site.Base = v
	}
	if v, ok := lookup(EnvPageURL); ok && v != "" {
		c.Site.PageURL = v
	}
	if v, ok := lookup(EnvDocRoot); ok {
		c.Site.DocRoot = &v
	}
	if v, ok := lookup(EnvCatalog); ok && v != "" {
		c.Catalog = v
	}
	if v, ok := lookup(EnvSandboxAllow); ok && v != "" {
		var pkgs []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				pkgs = append(pkgs, p)
			}
		}
		c.Sandbox.Allow = pkgs
	}
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Site.Base != "" && !strings.HasPrefix(c.Site.Base, "/") {
		return ErrInvalidBase
	}
	if c.Sandbox.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

// SiteBase returns the effective site base path.
func (c *Config) SiteBase() string {
	switch {
	case c.Site.Base != "":
		return c.Site.Base
	case c.Site.PageURL != "":
		return lessonpath.ComputeBase(c.Site.PageURL, c.Site.DocRoot)
	default:
		return "/"
	}
}

// Normalizer returns a normalizer rooted at SiteBase.
func (c *Config) Normalizer() *lessonpath.Normalizer {
	return lessonpath.New(c.SiteBase())
}
