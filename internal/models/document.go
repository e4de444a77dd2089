// Package models defines the domain types for Raido.
package models

import "time"

// Kind distinguishes dated posts from standalone pages.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Document represents a single piece of content parsed from a Markdown file.
// Body is raw Markdown and passes through the resolver untouched.
type Document struct {
	Kind        Kind                   `json:"kind"`
	Title       string                 `json:"title"`
	Body        string                 `json:"-"`
	Permalink   string                 `json:"permalink,omitempty"`
	SourcePath  string                 `json:"source_path"`
	Date        time.Time              `json:"date"`
	Categories  []string               `json:"categories,omitempty"`
	Layout      string                 `json:"layout,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
}

// IsPost reports whether the document is a dated post.
func (d *Document) IsPost() bool { return d.Kind == KindPost }

// Identity returns a human-readable handle for error messages: the source
// path when known, otherwise the title.
func (d *Document) Identity() string {
	if d.SourcePath != "" {
		return d.SourcePath
	}
	return d.Title
}

// DocumentMeta is a lightweight representation returned by storage listings.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteIndex is the resolved, queryable site map produced once per build.
// It is immutable after construction: any input change rebuilds it wholesale.
type SiteIndex struct {
	ByURL           map[string]*Document
	PostsByDate     []*Document
	PostsByCategory map[string][]*Document
	Pages           []*Document
}
