package api

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/publisher"
	"github.com/starford/raido/internal/storage"
)

// Service coordinates vault reads, index queries, and publish triggers for
// the API layer.
type Service struct {
	src storage.Provider
	db  *index.DB
	pub *publisher.Publisher
}

// NewService creates a new API service.
func NewService(src storage.Provider, db *index.DB, pub *publisher.Publisher) *Service {
	return &Service{src: src, db: db, pub: pub}
}

// NoteDetail is the full representation of a source note.
type NoteDetail struct {
	Identifier  string                 `json:"identifier"`
	Path        string                 `json:"path"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	Checksum    string                 `json:"checksum"`
	Tags        []string               `json:"tags"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Backlinks   []string               `json:"backlinks"`
	CreatedAt   time.Time              `json:"created_at"`
}

// PageListItem is a lightweight item in a page list response.
type PageListItem struct {
	Identifier  string    `json:"identifier"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Checksum    string    `json:"checksum"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// GetNote reads a note from the vault, parses it, and enriches it with
// backlinks.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.src.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(res.Identifier)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Identifier:  res.Identifier,
		Path:        path,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   nonNilSlice(bl),
		CreatedAt:   res.CreatedAt,
	}, nil
}

// ListPages returns paginated published pages with optional tag filter.
func (s *Service) ListPages(_ context.Context, limit, offset int, tag string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Identifier:  r.ID,
			Path:        r.Path,
			Title:       r.Title,
			Checksum:    r.Checksum,
			Tags:        nonNilSlice(r.Tags),
			PublishedAt: r.PublishedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Backlinks returns the paths of all notes referencing the identifier.
func (s *Service) Backlinks(_ context.Context, id string) ([]string, error) {
	bl, err := s.db.Backlinks(id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(bl), nil
}

// Republish re-renders the whole vault and returns the published count.
func (s *Service) Republish(ctx context.Context) (int, error) {
	return s.pub.PublishAll(ctx)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
