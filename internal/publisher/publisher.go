// Package publisher orchestrates turning source notes into published
// Markdown pages: front-matter synthesis, internal link rewriting, and
// atomic writes into the output directory.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/links"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// reservedKeys are frontmatter keys consumed by the well-known field
// semantics; they never appear in the generic option table.
var reservedKeys = map[string]struct{}{
	"title":      {},
	"date":       {},
	"tags":       {},
	"aliases":    {},
	"category":   {},
	"identifier": {},
}

// Publisher renders source notes into the output directory and keeps the
// note index in step.
type Publisher struct {
	src     storage.Provider
	dst     storage.Provider
	db      *index.DB
	synth   *frontmatter.Synthesizer
	links   *links.Renderer
	section string
	log     *slog.Logger
	workers int
}

// New creates a Publisher. section is the output subdirectory pages are
// written into (may be empty).
func New(src, dst storage.Provider, db *index.DB, synth *frontmatter.Synthesizer, renderer *links.Renderer, section string, logger *slog.Logger) *Publisher {
	return &Publisher{
		src:     src,
		dst:     dst,
		db:      db,
		synth:   synth,
		links:   renderer,
		section: section,
		log:     logger,
		workers: 4,
	}
}

// SetWorkers bounds the PublishAll fan-out.
func (p *Publisher) SetWorkers(n int) {
	if n > 0 {
		p.workers = n
	}
}

// PublishAll indexes the whole vault, then renders every note. Indexing
// runs first so forward references resolve during rendering. Individual
// note failures are logged and skipped; the published count is returned.
func (p *Publisher) PublishAll(ctx context.Context) (int, error) {
	if err := index.Sync(p.db, p.src, p.log); err != nil {
		return 0, fmt.Errorf("publisher: sync index: %w", err)
	}

	infos, err := p.src.List("")
	if err != nil {
		return 0, fmt.Errorf("publisher: list vault: %w", err)
	}

	var published atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, fi := range infos {
		fi := fi
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			data, err := p.src.Read(fi.Path)
			if err != nil {
				p.log.Warn("publish: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
				return nil
			}
			if err := p.PublishNote(fi.Path, data); err != nil {
				p.log.Warn("publish: note failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
				return nil
			}
			published.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(published.Load()), err
	}

	if err := p.copyAssets(); err != nil {
		return int(published.Load()), err
	}
	return int(published.Load()), nil
}

// copyAssets copies non-Markdown vault files (images, attachments) into the
// output directory unchanged, skipping files whose checksum already matches.
func (p *Publisher) copyAssets() error {
	assets, err := p.src.ListAssets("")
	if err != nil {
		return fmt.Errorf("publisher: list assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	existing, err := p.dst.ListAssets("")
	if err != nil {
		return fmt.Errorf("publisher: list output assets: %w", err)
	}
	have := make(map[string]string, len(existing))
	for _, fi := range existing {
		have[fi.Path] = fi.Checksum
	}

	for _, fi := range assets {
		if have[fi.Path] == fi.Checksum {
			continue
		}
		data, err := p.src.Read(fi.Path)
		if err != nil {
			p.log.Warn("asset: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if err := p.dst.Write(fi.Path, data); err != nil {
			p.log.Warn("asset: write failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		p.log.Debug("asset: copied", slog.String("path", fi.Path))
	}
	return nil
}

// PublishNote renders one note and writes its page. A front-matter or
// link-resolution error fails the whole note; no partial page is written.
func (p *Publisher) PublishNote(notePath string, data []byte) error {
	res, err := parser.Parse(notePath, data)
	if err != nil {
		return fmt.Errorf("publisher: parse %s: %w", notePath, err)
	}
	if res.Identifier == "" {
		return fmt.Errorf("publisher: %s: no identifier", notePath)
	}

	// Index before rendering so self-references resolve.
	row := index.NoteRow{
		ID:          res.Identifier,
		Path:        notePath,
		Title:       res.Title,
		Checksum:    checksum.Sum(data),
		Tags:        res.Tags,
		PublishedAt: time.Now(),
	}
	if err := p.db.UpsertNote(row, res.Body, res.References); err != nil {
		return err
	}

	block, err := p.synth.Synthesize(environment(res))
	if err != nil {
		return fmt.Errorf("publisher: front matter for %s: %w", notePath, err)
	}

	body, err := parser.ReplaceReferences(res.Body, func(ref models.Reference) (string, error) {
		raw := ref.Target
		if ref.Query != "" {
			raw += "::" + ref.Query
		}
		return p.links.Render(links.Link{Kind: links.KindInternal, Path: raw}, ref.Label)
	})
	if err != nil {
		return fmt.Errorf("publisher: links in %s: %w", notePath, err)
	}

	return p.dst.Write(p.pagePath(res.Identifier), []byte(block+body))
}

// Retract removes the published page for the note previously stored at
// notePath and drops it from the index. Unknown paths are a no-op.
func (p *Publisher) Retract(notePath string) error {
	id, err := p.db.IDByPath(notePath)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := p.dst.Delete(p.pagePath(id)); err != nil {
		p.log.Warn("retract: delete page failed", slog.String("path", notePath), slog.String("error", err.Error()))
	}
	return p.db.DeleteByPath(notePath)
}

// Apply implements index.Applier for watcher-driven republish.
func (p *Publisher) Apply(notePath string, data []byte) error {
	return p.PublishNote(notePath, data)
}

func (p *Publisher) pagePath(id string) string {
	return path.Join(p.section, id+".md")
}

// environment builds the front-matter metadata snapshot for one parsed
// note. Frontmatter keys outside the well-known set become the generic
// option table.
func environment(res *parser.Result) frontmatter.Environment {
	env := frontmatter.Environment{
		Title:    res.Title,
		Created:  res.CreatedAt,
		Aliases:  res.Aliases,
		Tags:     res.Tags,
		Category: res.Category,
	}
	for k, v := range res.Frontmatter {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		if env.Options == nil {
			env.Options = make(map[string]interface{})
		}
		env.Options[k] = optionValue(v)
	}
	return env
}

// optionValue converts YAML-decoded values into shapes the quoting engine
// accepts.
func optionValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bool:
		// Boolean words stay bare through the scalar pass-through rule.
		return strconv.FormatBool(val)
	case time.Time:
		return `"` + val.Format("2006-01-02") + `"`
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = optionValue(item)
		}
		return out
	default:
		return v
	}
}
