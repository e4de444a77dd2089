// Package testutil provides shared test helpers for setting up site trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/builder"
)

// minimalBase is enough layout for a build to succeed.
const minimalBase = "<html><head><title>{{.Site.Title}}</title></head><body>{{.Content}}</body></html>"

// TestSite creates temp content/layouts/static/output directories with a
// minimal base layout and returns build options pointing at them.
func TestSite(t *testing.T) builder.Options {
	t.Helper()
	root := t.TempDir()

	opts := builder.Options{
		ContentDir:      filepath.Join(root, "content"),
		LayoutsDir:      filepath.Join(root, "layouts"),
		StaticDir:       filepath.Join(root, "static"),
		OutputDir:       filepath.Join(root, "public"),
		SiteTitle:       "Test Blog",
		SiteDescription: "Posts about testing",
		BaseURL:         "https://example.com",
	}
	for _, dir := range []string{opts.ContentDir, opts.LayoutsDir, opts.StaticDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	WriteFile(t, opts.LayoutsDir, "base.html", minimalBase)
	return opts
}

// WriteFile writes content at relPath under dir, creating parent directories.
func WriteFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
