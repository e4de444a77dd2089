// Package feed generates the RSS 2.0 feed and the XML sitemap from a
// resolved SiteIndex.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// maxFeedItems caps the RSS feed at the most recent posts.
const maxFeedItems = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Meta carries the channel-level feed fields.
type Meta struct {
	Title       string
	Description string
	BaseURL     string
}

// WriteRSS writes an RSS 2.0 document for the most recent posts in
// PostsByDate order.
func WriteRSS(w io.Writer, meta Meta, posts []*models.Document) error {
	if len(posts) > maxFeedItems {
		posts = posts[:maxFeedItems]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := absURL(meta.BaseURL, p.Permalink)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Summary,
			PubDate:     p.Date.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       meta.Title,
			Link:        meta.BaseURL,
			Description: meta.Description,
			Items:       items,
		},
	}
	return encode(w, doc)
}

// WriteSitemap writes a sitemap covering every resolved URL. Entries are
// sorted by location so output is deterministic across builds.
func WriteSitemap(w io.Writer, meta Meta, idx *models.SiteIndex) error {
	urls := make([]sitemapURL, 0, len(idx.ByURL))
	for path, doc := range idx.ByURL {
		u := sitemapURL{Loc: absURL(meta.BaseURL, path)}
		if doc.IsPost() {
			u.LastMod = doc.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i].Loc < urls[j].Loc })

	doc := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return encode(w, doc)
}

func encode(w io.Writer, doc interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("feed: write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("feed: encode: %w", err)
	}
	return nil
}

func absURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
