// Package storage defines the file-system abstraction used for the source
// vault and the publish output directory.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for vault and output file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]models.FileInfo, error)
	// ListAssets returns metadata for every non-Markdown file under dir.
	ListAssets(dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Root returns the absolute root directory.
	Root() string
}
