package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/storage"
)

// Applier reacts to vault file changes; implemented by the publisher so a
// watcher event both reindexes and republishes the affected note.
type Applier interface {
	// Apply handles a created or updated note.
	Apply(path string, data []byte) error
	// Retract handles a removed note.
	Retract(path string) error
}

// EventCallback is called after a watcher-driven change was applied.
// kind is one of "published", "removed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful apply or retract.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that retracts pages
// whose source notes no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, apply Applier, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, apply, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and publish any notes inside.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					applyNewDir(store, vaultRoot, absPath, apply, logger, cb)
					continue
				}
			}

			// Only process .md files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if applyErr := apply.Apply(rel, data); applyErr != nil {
					logger.Warn("watcher: publish failed", slog.String("path", rel), slog.String("error", applyErr.Error()))
					continue
				}
				logger.Debug("watcher: published", slog.String("path", rel))
				if cb != nil {
					cb("published", rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := apply.Retract(rel); delErr != nil {
					logger.Warn("watcher: retract failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: retracted", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new path
				// will arrive as a separate Create event (if it stays within
				// a watched dir). Retract the old page immediately and
				// schedule a short reconciliation pass for stragglers.
				if delErr := apply.Retract(rel); delErr != nil {
					logger.Warn("watcher: rename retract failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old retracted", slog.String("path", rel))
					if cb != nil {
						cb("removed", rel)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename does a lightweight sync using batch lookups:
// retracts indexed notes without a corresponding file on disk, and
// publishes on-disk notes that are missing or stale in the index.
func reconcileAfterRename(db *DB, store storage.Provider, apply Applier, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	infos, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(infos))
	for _, fi := range infos {
		disk[fi.Path] = fi.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := apply.Retract(p); delErr == nil {
				logger.Debug("reconcile: retracted stale", slog.String("path", p))
				if cb != nil {
					cb("removed", p)
				}
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, readErr := store.Read(p)
		if readErr != nil {
			continue
		}
		if applyErr := apply.Apply(p, data); applyErr == nil {
			logger.Debug("reconcile: published", slog.String("path", p))
			if cb != nil {
				cb("published", p)
			}
		}
	}
}

// applyNewDir publishes any .md notes found in a newly created directory.
func applyNewDir(store storage.Provider, vaultRoot, dirPath string, apply Applier, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		if applyErr := apply.Apply(rel, data); applyErr == nil {
			logger.Debug("watcher: published from new dir", slog.String("path", rel))
			if cb != nil {
				cb("published", rel)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
