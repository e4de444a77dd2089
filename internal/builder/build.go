// Package builder orchestrates a full site build: load documents, resolve
// the site index, render pages and listings, write the feed and sitemap, and
// copy static assets. Every build is from scratch; there is no incremental
// state to invalidate.
package builder

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/feed"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/renderer"
	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/storage"
)

// Options holds everything a build invocation needs.
type Options struct {
	ContentDir string
	LayoutsDir string
	StaticDir  string
	OutputDir  string

	SiteTitle       string
	SiteDescription string
	BaseURL         string
}

// Result summarises a successful build.
type Result struct {
	Index       *models.SiteIndex
	Documents   int
	Fingerprint string
	Duration    time.Duration
}

// Build runs one complete build. On failure it returns every error collected
// while loading and resolving, and the output directory is left untouched.
func Build(opts Options, logger *slog.Logger) (*Result, error) {
	start := time.Now()

	src, err := storage.NewFS(opts.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("builder: open content dir: %w", err)
	}

	docs, fingerprint, err := load(src, logger)
	if err != nil {
		return nil, err
	}

	idx, err := resolver.Resolve(docs)
	if err != nil {
		return nil, err
	}

	if err := prepareOutput(opts.OutputDir); err != nil {
		return nil, err
	}
	out, err := storage.NewFS(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("builder: open output dir: %w", err)
	}

	site := &renderer.Site{
		Title:       opts.SiteTitle,
		Description: opts.SiteDescription,
		BaseURL:     opts.BaseURL,
		Index:       idx,
	}
	r, err := renderer.New(opts.LayoutsDir, out, site)
	if err != nil {
		return nil, err
	}
	if err := r.RenderAll(idx); err != nil {
		return nil, err
	}

	if err := writeFeeds(out, opts, idx); err != nil {
		return nil, err
	}

	if opts.StaticDir != "" {
		if _, statErr := os.Stat(opts.StaticDir); statErr == nil {
			if err := storage.CopyDir(opts.StaticDir, opts.OutputDir); err != nil {
				return nil, fmt.Errorf("builder: copy static assets: %w", err)
			}
		} else {
			logger.Debug("builder: no static dir, skipping", slog.String("path", opts.StaticDir))
		}
	}

	res := &Result{
		Index:       idx,
		Documents:   len(idx.ByURL),
		Fingerprint: fingerprint,
		Duration:    time.Since(start),
	}
	logger.Info("build complete",
		slog.Int("documents", res.Documents),
		slog.Int("posts", len(idx.PostsByDate)),
		slog.Int("categories", len(idx.PostsByCategory)),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// load lists and parses every Markdown file under the content root, in the
// listing's lexical order. That order is what the resolver treats as input
// order for tie-breaking and collision reporting. Parse failures are
// accumulated so one pass reports every broken file.
func load(src storage.Provider, logger *slog.Logger) ([]*models.Document, string, error) {
	metas, err := src.List("")
	if err != nil {
		return nil, "", err
	}

	var errs *multierror.Error
	docs := make([]*models.Document, 0, len(metas))
	sums := make([]string, 0, len(metas))

	for _, m := range metas {
		sums = append(sums, m.Path+"\x00"+m.Checksum)

		data, err := src.Read(m.Path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		doc, err := parser.Parse(m.Path, data)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		docs = append(docs, doc)
		logger.Debug("builder: loaded", slog.String("path", m.Path), slog.String("kind", string(doc.Kind)))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, "", err
	}
	return docs, checksum.Combine(sums), nil
}

// Fingerprint digests the current content tree without parsing it. Serve
// mode uses it to skip rebuilds for events that did not change any source
// (editor temp files, metadata-only touches).
func Fingerprint(src storage.Provider) (string, error) {
	metas, err := src.List("")
	if err != nil {
		return "", err
	}
	sums := make([]string, 0, len(metas))
	for _, m := range metas {
		sums = append(sums, m.Path+"\x00"+m.Checksum)
	}
	return checksum.Combine(sums), nil
}

func prepareOutput(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("builder: clean output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("builder: create output dir: %w", err)
	}
	return nil
}

func writeFeeds(out storage.Provider, opts Options, idx *models.SiteIndex) error {
	meta := feed.Meta{
		Title:       opts.SiteTitle,
		Description: opts.SiteDescription,
		BaseURL:     opts.BaseURL,
	}

	var rss bytes.Buffer
	if err := feed.WriteRSS(&rss, meta, idx.PostsByDate); err != nil {
		return err
	}
	if err := out.Write("feed.xml", rss.Bytes()); err != nil {
		return err
	}

	var sm bytes.Buffer
	if err := feed.WriteSitemap(&sm, meta, idx); err != nil {
		return err
	}
	return out.Write("sitemap.xml", sm.Bytes())
}
