// Package apperr defines the build-time error types reported by the resolver.
// All of them are fatal to the current build and never retryable: a missing
// field or a permalink collision cannot resolve itself on a second attempt.
package apperr

import "fmt"

// MissingPermalinkError reports a page without an explicit permalink.
type MissingPermalinkError struct {
	Doc string
}

func (e *MissingPermalinkError) Error() string {
	return fmt.Sprintf("%s: page has no permalink", e.Doc)
}

// MissingDateError reports a post without a date.
type MissingDateError struct {
	Doc string
}

func (e *MissingDateError) Error() string {
	return fmt.Sprintf("%s: post has no date", e.Doc)
}

// DuplicatePermalinkError reports two documents resolving to the same URL.
// First and Second identify the conflicting documents in input order.
type DuplicatePermalinkError struct {
	Path   string
	First  string
	Second string
}

func (e *DuplicatePermalinkError) Error() string {
	return fmt.Sprintf("duplicate permalink %s: %s and %s", e.Path, e.First, e.Second)
}
