// Package parser turns raw Markdown files with YAML frontmatter into Documents.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// postsDir is the conventional directory whose files are treated as posts.
const postsDir = "_posts"

// dateFormats are accepted for the frontmatter "date" field, most specific first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var filenameDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// Parse builds a Document from the raw bytes of the Markdown file at relPath
// (relative to the content root). The body is kept verbatim; only the
// frontmatter block is interpreted.
func Parse(relPath string, data []byte) (*models.Document, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}

	doc := &models.Document{
		Body:        body,
		SourcePath:  relPath,
		Frontmatter: fm,
	}

	doc.Layout = stringField(fm, "layout")
	doc.Summary = stringField(fm, "summary")
	doc.Permalink = stringField(fm, "permalink")
	doc.Kind = deriveKind(relPath, doc.Layout)
	doc.Title = deriveTitle(fm, relPath)

	if doc.Kind == models.KindPost {
		doc.Categories = extractCategories(fm)
		date, err := deriveDate(fm, relPath)
		if err != nil {
			return nil, err
		}
		doc.Date = date
	}

	return doc, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. A file without frontmatter is all body. Invalid YAML
// inside a delimited block is an error: silently publishing a post with its
// metadata rendered as text is worse than failing the build.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter — treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("invalid frontmatter: %w", err)
	}

	return fm, body, nil
}

// deriveKind classifies the document: anything under _posts/ or declaring
// layout "post" is a post, everything else is a standalone page.
func deriveKind(relPath, layout string) models.Kind {
	first := relPath
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		first = relPath[:i]
	}
	if first == postsDir || layout == "post" {
		return models.KindPost
	}
	return models.KindPage
}

// deriveTitle returns the frontmatter "title" if present, otherwise a
// title-cased form of the filename with any date prefix stripped.
func deriveTitle(fm map[string]interface{}, relPath string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if m := filenameDateRe.FindStringSubmatch(base); m != nil {
		base = m[4]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	// Casers are stateful, so build one per call rather than sharing.
	return cases.Title(language.English).String(base)
}

// deriveDate reads the frontmatter "date", falling back to the Jekyll-style
// YYYY-MM-DD filename prefix. A post with neither is returned with a zero
// date; the resolver decides whether that is fatal.
func deriveDate(fm map[string]interface{}, relPath string) (time.Time, error) {
	if raw := stringField(fm, "date"); raw != "" {
		for _, format := range dateFormats {
			if t, err := time.Parse(format, raw); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%s: unparseable date %q", relPath, raw)
	}

	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if m := filenameDateRe.FindStringSubmatch(base); m != nil {
		t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, nil
}

// extractCategories collects the "categories" field (list or space-separated
// string, both Jekyll conventions) plus the singular "category", deduplicated
// in order of appearance.
func extractCategories(fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if fm == nil {
		return nil
	}

	switch v := fm["categories"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Fields(v) {
			add(s)
		}
	}

	if s, ok := fm["category"].(string); ok {
		add(s)
	}

	return out
}

func stringField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return s
	}
	return ""
}
