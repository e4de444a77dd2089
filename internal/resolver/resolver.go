// Package resolver transforms a set of Documents into a validated SiteIndex.
package resolver

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Resolve validates documents, derives missing post permalinks, and builds the
// SiteIndex. It is a pure function: no I/O, no mutation of its input slice
// beyond filling resolved permalinks, and input order is significant (it
// breaks date ties and decides which collision is reported).
//
// Errors are accumulated across the whole input and returned together; on any
// error no index is produced. There is no partial success.
func Resolve(docs []*models.Document) (*models.SiteIndex, error) {
	var errs *multierror.Error

	byURL := make(map[string]*models.Document, len(docs))
	var posts []*models.Document
	var pages []*models.Document

	for _, doc := range docs {
		switch doc.Kind {
		case models.KindPost:
			if doc.Date.IsZero() {
				errs = multierror.Append(errs, &apperr.MissingDateError{Doc: doc.Identity()})
				continue
			}
			if doc.Permalink == "" {
				doc.Permalink = postPermalink(doc)
			}
		case models.KindPage:
			if doc.Permalink == "" {
				errs = multierror.Append(errs, &apperr.MissingPermalinkError{Doc: doc.Identity()})
				continue
			}
		default:
			errs = multierror.Append(errs, fmt.Errorf("%s: unknown document kind %q", doc.Identity(), doc.Kind))
			continue
		}

		if prev, ok := byURL[doc.Permalink]; ok {
			errs = multierror.Append(errs, &apperr.DuplicatePermalinkError{
				Path:   doc.Permalink,
				First:  prev.Identity(),
				Second: doc.Identity(),
			})
			continue
		}
		byURL[doc.Permalink] = doc

		if doc.IsPost() {
			posts = append(posts, doc)
		} else {
			pages = append(pages, doc)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	// Date descending; the stable sort keeps input order for equal dates.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})

	// Partition after sorting so every per-category slice is an
	// order-preserving subsequence of PostsByDate.
	byCategory := make(map[string][]*models.Document)
	for _, p := range posts {
		for _, c := range p.Categories {
			byCategory[c] = append(byCategory[c], p)
		}
	}

	return &models.SiteIndex{
		ByURL:           byURL,
		PostsByDate:     posts,
		PostsByCategory: byCategory,
		Pages:           pages,
	}, nil
}

// postPermalink derives the canonical URL of a post without an explicit one:
// /{year}/{month:02}/{day:02}/{slug(title)}/.
func postPermalink(doc *models.Document) string {
	y, m, d := doc.Date.Date()
	return fmt.Sprintf("/%04d/%02d/%02d/%s/", y, m, d, Slug(doc.Title))
}
