package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed notes are parsed and upserted
//   - notes removed from disk are deleted from the index
//
// Sync runs before the first publish pass so the link resolver already
// knows every identifier, including forward references.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, fi := range infos {
		disk[fi.Path] = struct{}{}

		if checksums[fi.Path] == fi.Checksum {
			continue
		}

		data, err := store.Read(fi.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexNote(db, fi.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", fi.Path), slog.String("checksum", checksum.Short(data)))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteByPath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexNote parses data and upserts it into the DB. Notes without a
// denote identifier are skipped with an error.
func IndexNote(db *DB, path string, data []byte) error {
	res, err := parser.Parse(path, data)
	if err != nil {
		return err
	}
	if res.Identifier == "" {
		return fmt.Errorf("index: note %s has no identifier", path)
	}

	row := NoteRow{
		ID:          res.Identifier,
		Path:        path,
		Title:       res.Title,
		Checksum:    checksum.Sum(data),
		Tags:        res.Tags,
		PublishedAt: res.CreatedAt,
	}
	return db.UpsertNote(row, res.Body, res.References)
}
