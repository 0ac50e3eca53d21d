package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
db: /tmp/progress.db
catalog: /etc/edplay/catalog.yaml
site:
  page_url: https://example.github.io/Education_Playground/easy/01.html
  doc_root: "../"
sandbox:
  allow: [fmt, strings]
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/progress.db", c.DB)
	assert.Equal(t, "/etc/edplay/catalog.yaml", c.Catalog)
	assert.Equal(t, []string{"fmt", "strings"}, c.Sandbox.Allow)
	assert.Equal(t, DefaultConcurrency, c.Sandbox.Concurrency, "unset fields keep defaults")
	assert.Equal(t, "/Education_Playground/", c.SiteBase())
	assert.Equal(t, "/Education_Playground/easy/", c.Normalizer().Normalize("easy/index.html"))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "db: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestSiteBase(t *testing.T) {
	root := ""
	tests := []struct {
		name string
		site Site
		want string
	}{
		{"explicit base", Site{Base: "/docs/", PageURL: "https://x.org/a/b.html"}, "/docs/"},
		{"page directory", Site{PageURL: "https://x.org/a/b.html"}, "/a/"},
		{"empty doc root", Site{PageURL: "https://x.org/a/b.html", DocRoot: &root}, "/"},
		{"nothing", Site{}, "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			c.Site = tc.site
			assert.Equal(t, tc.want, c.SiteBase())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDB:           "/data/e.db",
		EnvBase:         "/Education_Playground/",
		EnvDocRoot:      "",
		EnvSandboxAllow: " fmt, math ,,",
		EnvVerbose:      "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))

	assert.Equal(t, "/data/e.db", c.DB)
	assert.Equal(t, "/Education_Playground/", c.Site.Base)
	require.NotNil(t, c.Site.DocRoot)
	assert.Equal(t, "", *c.Site.DocRoot)
	assert.Equal(t, []string{"fmt", "math"}, c.Sandbox.Allow)
	assert.True(t, c.Verbose)

	env[EnvVerbose] = "loud"
	require.Error(t, Default().ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	c.Site.Base = "docs/"
	require.ErrorIs(t, c.Validate(), ErrInvalidBase)

	c = Default()
	c.Sandbox.Concurrency = -1
	require.ErrorIs(t, c.Validate(), ErrInvalidConcurrency)
}

func TestResolveExplicit(t *testing.T) {
	t.Setenv(EnvDB, "/from/env.db")
	path := writeConfig(t, "db: /from/file.db\n")

	c, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", c.DB, "environment wins over the file")

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(DefaultPath())))
}
