// Package links rewrites internal cross-note references into styled
// hyperlinks for published pages.
package links

import (
	"fmt"
)

// Scheme is the fixed prefix for internal cross-note references.
const Scheme = "denote:"

// Kind tags how a link should be rendered.
type Kind string

const (
	// KindInternal marks a cross-note reference resolved through the index.
	KindInternal Kind = "denote"
	// KindGeneric marks every other link; it passes through untouched.
	KindGeneric Kind = "generic"
)

// Link is one inline reference encountered during body rendering. For
// internal links Path is the raw target without the scheme prefix,
// optionally carrying a ::query suffix.
type Link struct {
	Kind Kind
	Path string
}

// Resolver maps a raw internal link path to its note identifier and
// optional query fragment. Implemented by the note index.
type Resolver interface {
	Resolve(raw string) (id string, query string, err error)
}

// Renderer produces hyperlink markup for inline references. Class is the
// CSS class applied to internal links; Generic handles non-internal kinds
// (defaulting to plain Markdown passthrough).
type Renderer struct {
	Class    string
	Resolver Resolver
	Generic  func(l Link, label string) string
}

// Render returns the markup for l. The display label is the explicit label
// when supplied, otherwise "<id>::<query>" when a query is present,
// otherwise the bare identifier. The destination is the scheme-prefixed
// identifier plus ".html", with the query appended verbatim when present.
func (r *Renderer) Render(l Link, label string) (string, error) {
	if l.Kind != KindInternal {
		if r.Generic != nil {
			return r.Generic(l, label), nil
		}
		return markdownLink(l, label), nil
	}

	id, query, err := r.Resolver.Resolve(l.Path)
	if err != nil {
		return "", fmt.Errorf("links: resolve %q: %w", l.Path, err)
	}

	desc := label
	if desc == "" {
		if query != "" {
			desc = id + "::" + query
		} else {
			desc = id
		}
	}

	dest := Scheme + id + ".html"
	if query != "" {
		dest += query
	}

	return fmt.Sprintf(`<a href="%s" class="%s">%s</a>`, dest, r.Class, desc), nil
}

// markdownLink is the default generic rendering: a plain Markdown link.
func markdownLink(l Link, label string) string {
	if label == "" {
		label = l.Path
	}
	return fmt.Sprintf("[%s](%s)", label, l.Path)
}
