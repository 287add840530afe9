package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID          string
	Path        string
	Title       string
	Checksum    string
	Tags        []string
	PublishedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Path    string
	Title   string
	Snippet string
}

// UpsertNote inserts or replaces a note, its FTS entry, and its outgoing
// references within a transaction.
func (db *DB) UpsertNote(n NoteRow, body string, refs []models.Reference) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(n.Tags)

	// A note may have been renamed on disk while keeping its identifier:
	// clear any stale row occupying the same path.
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ? AND id != ?`, n.Path, n.ID)

	_, err = tx.Exec(`
		INSERT INTO notes (id, path, title, checksum, tags, body, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path         = excluded.path,
			title        = excluded.title,
			checksum     = excluded.checksum,
			tags         = excluded.tags,
			body         = excluded.body,
			published_at = excluded.published_at
	`, n.ID, n.Path, n.Title, n.Checksum, string(tagsJSON), body, n.PublishedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.ID, n.Path, n.Title, body, n.Tags); err != nil {
		return err
	}

	// Replace outgoing references: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, n.ID)
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, query) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, ref := range refs {
			if _, err := stmt.Exec(n.ID, ref.Target, ref.Query); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteByPath removes the note stored at path, its FTS entry, and its
// outgoing references.
func (db *DB) DeleteByPath(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	if err := tx.QueryRow(`SELECT id FROM notes WHERE path = ?`, path).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("index: lookup %s: %w", path, err)
	}

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns every indexed path mapped to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Resolve maps a raw internal link path ("ID" or "ID::query") to the note
// identifier and optional query fragment. An identifier with no indexed
// note yields apperr.ErrUnresolved.
func (db *DB) Resolve(raw string) (string, string, error) {
	id, query := raw, ""
	if i := strings.Index(raw, "::"); i >= 0 {
		id, query = raw[:i], raw[i+2:]
	}
	if id == "" {
		return "", "", fmt.Errorf("index: empty identifier in %q: %w", raw, apperr.ErrUnresolved)
	}
	var exists int
	err := db.conn.QueryRow(`SELECT 1 FROM notes WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("index: identifier %q: %w", id, apperr.ErrUnresolved)
	}
	if err != nil {
		return "", "", fmt.Errorf("index: resolve %q: %w", id, err)
	}
	return id, query, nil
}

// PathByID returns the vault path of the note with the given identifier.
func (db *DB) PathByID(id string) (string, error) {
	var p string
	err := db.conn.QueryRow(`SELECT path FROM notes WHERE id = ?`, id).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("index: path by id: %w", err)
	}
	return p, nil
}

// IDByPath returns the identifier of the note stored at path.
func (db *DB) IDByPath(path string) (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM notes WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("index: id by path: %w", err)
	}
	return id, nil
}

// ListPages returns published notes ordered by publish time (newest first),
// optionally filtered by tag, with the total count of matching pages.
func (db *DB) ListPages(limit, offset int, tag string) ([]NoteRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []interface{}{}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	query := `SELECT id, path, title, checksum, tags, published_at FROM notes ` +
		where + ` ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var n NoteRow
		var tagsJSON string
		if err := rows.Scan(&n.ID, &n.Path, &n.Title, &n.Checksum, &tagsJSON, &n.PublishedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &n.Tags)
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// Backlinks returns the paths of all notes that reference the given
// identifier.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT n.path
		FROM links l
		JOIN notes n ON n.id = l.source
		WHERE l.target = ?
		ORDER BY n.path
	`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
