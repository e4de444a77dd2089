// Package renderer turns a resolved SiteIndex into HTML files. It is thin
// glue over goldmark and html/template: Markdown conversion and template
// execution are delegated entirely to those libraries.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/storage"
)

// Layout template names looked up by convention. base.html is mandatory;
// the rest are optional refinements.
const (
	baseLayout     = "base.html"
	postLayout     = "post.html"
	pageLayout     = "page.html"
	homeLayout     = "home.html"
	categoryLayout = "category.html"
)

// Site carries site-wide values into every template execution.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Index       *models.SiteIndex
}

// pageData is the data context for a single template execution.
type pageData struct {
	Site     *Site
	Doc      *models.Document
	Content  template.HTML
	Posts    []*models.Document
	Category string
}

// Renderer renders documents and listing pages through a parsed layout set.
type Renderer struct {
	templates *template.Template
	md        goldmark.Markdown
	out       storage.Provider
	site      *Site
}

// New parses every .html file under layoutsDir into one template set and
// returns a Renderer writing through out. base.html must exist.
func New(layoutsDir string, out storage.Provider, site *Site) (*Renderer, error) {
	var layoutFiles []string
	err := filepath.WalkDir(layoutsDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			layoutFiles = append(layoutFiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: scan layouts %s: %w", layoutsDir, err)
	}
	if len(layoutFiles) == 0 {
		return nil, fmt.Errorf("renderer: no .html layouts found in %s", layoutsDir)
	}

	tpl, err := template.New("").Funcs(template.FuncMap{
		"slug":    resolver.Slug,
		"datefmt": func(layout string, d *models.Document) string { return d.Date.Format(layout) },
		"absurl":  func(p string) string { return strings.TrimSuffix(site.BaseURL, "/") + p },
		"excerpt": excerpt,
	}).ParseFiles(layoutFiles...)
	if err != nil {
		return nil, fmt.Errorf("renderer: parse layouts: %w", err)
	}
	if tpl.Lookup(baseLayout) == nil {
		return nil, fmt.Errorf("renderer: %s not found in %s", baseLayout, layoutsDir)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
	)

	return &Renderer{templates: tpl, md: md, out: out, site: site}, nil
}

// RenderAll writes one HTML file per ByURL entry, the home page, and a
// listing page per category. Ordering comes from the index; the renderer
// never re-sorts.
func (r *Renderer) RenderAll(idx *models.SiteIndex) error {
	for url, doc := range idx.ByURL {
		if err := r.renderDocument(url, doc); err != nil {
			return err
		}
	}
	if err := r.renderHome(idx); err != nil {
		return err
	}
	for category, posts := range idx.PostsByCategory {
		if err := r.renderCategory(category, posts); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderDocument(url string, doc *models.Document) error {
	content, err := r.markdown(doc.Body)
	if err != nil {
		return fmt.Errorf("renderer: %s: %w", doc.Identity(), err)
	}
	data := &pageData{Site: r.site, Doc: doc, Content: content}
	return r.execute(r.layoutFor(doc), outputPath(url), data)
}

func (r *Renderer) renderHome(idx *models.SiteIndex) error {
	layout := homeLayout
	if r.templates.Lookup(layout) == nil {
		layout = baseLayout
	}
	data := &pageData{Site: r.site, Posts: idx.PostsByDate}
	return r.execute(layout, "index.html", data)
}

func (r *Renderer) renderCategory(category string, posts []*models.Document) error {
	layout := categoryLayout
	if r.templates.Lookup(layout) == nil {
		layout = baseLayout
	}
	data := &pageData{Site: r.site, Posts: posts, Category: category}
	target := path.Join("categories", resolver.Slug(category), "index.html")
	return r.execute(layout, target, data)
}

// layoutFor picks the template for a document: explicit frontmatter layout
// first, then the kind's conventional layout, then base.html.
func (r *Renderer) layoutFor(doc *models.Document) string {
	if doc.Layout != "" {
		name := doc.Layout
		if !strings.HasSuffix(name, ".html") {
			name += ".html"
		}
		if r.templates.Lookup(name) != nil {
			return name
		}
	}
	conventional := pageLayout
	if doc.IsPost() {
		conventional = postLayout
	}
	if r.templates.Lookup(conventional) != nil {
		return conventional
	}
	return baseLayout
}

func (r *Renderer) markdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(layout, target string, data *pageData) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("renderer: execute %s for %s: %w", layout, target, err)
	}
	if err := r.out.Write(target, buf.Bytes()); err != nil {
		return fmt.Errorf("renderer: write %s: %w", target, err)
	}
	return nil
}

// outputPath maps a permalink to its file under the output root:
// /about/ → about/index.html.
func outputPath(url string) string {
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return "index.html"
	}
	return path.Join(trimmed, "index.html")
}

// excerpt returns the document summary when set, otherwise the first
// non-heading line of the body.
func excerpt(doc *models.Document) string {
	if doc.Summary != "" {
		return doc.Summary
	}
	for _, line := range strings.Split(doc.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return ""
}
