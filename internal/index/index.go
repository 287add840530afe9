package index

import "github.com/starford/raido/internal/models"

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string, refs []models.Reference) error
	DeleteByPath(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Resolve(raw string) (id, query string, err error)
	PathByID(id string) (string, error)
	IDByPath(path string) (string, error)
	ListPages(limit, offset int, tag string) ([]NoteRow, int, error)
	Backlinks(target string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
