// Package storage defines the content/output file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for content tree file operations. The builder
// uses one provider rooted at the content directory (List + Read) and a
// second rooted at the output directory (Write).
type Provider interface {
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root), creating
	// parent directories as needed.
	Write(path string, content []byte) error
}
