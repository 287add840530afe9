// Package parser extracts metadata and internal references from source notes.
//
// Source notes are Markdown files following the denote naming scheme
// (IDENTIFIER--slug__keyword1_keyword2.md) with an optional YAML
// frontmatter header and inline denote: links in the body.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

var (
	identifierRe = regexp.MustCompile(`^(\d{8}T\d{6})`)
	keywordsRe   = regexp.MustCompile(`__([A-Za-z0-9_-]+)\.[A-Za-z]+$`)
	// [label](denote:IDENTIFIER::query); label and query are optional.
	denoteLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(denote:([^)\s]+)\)`)
)

const identifierLayout = "20060102T150405"

// Result holds the output of parsing a source note.
type Result struct {
	Identifier  string
	Title       string
	CreatedAt   time.Time
	Tags        []string
	Aliases     string
	Category    string
	Frontmatter map[string]interface{}
	Body        string
	References  []models.Reference
}

// Parse extracts metadata, body, and denote references from raw note bytes.
// path is the note's vault-relative path; its file name supplies the
// identifier and fallback keywords.
func Parse(path string, data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	r := &Result{
		Identifier:  deriveIdentifier(name, fm),
		Title:       deriveTitle(fm, body),
		Tags:        deriveTags(name, fm),
		Aliases:     stringField(fm, "aliases"),
		Category:    stringField(fm, "category"),
		Frontmatter: fm,
		Body:        body,
		References:  extractReferences(body),
	}
	r.CreatedAt = deriveCreated(r.Identifier, fm)
	return r, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: fall back to body only.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// deriveIdentifier takes the identifier from the file name prefix, falling
// back to the frontmatter "identifier" field.
func deriveIdentifier(name string, fm map[string]interface{}) string {
	if m := identifierRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return stringField(fm, "identifier")
}

// deriveCreated parses the frontmatter "date" field, falling back to the
// timestamp encoded in the identifier itself. yaml.v3 decodes bare dates
// into time.Time, so both shapes are accepted.
func deriveCreated(identifier string, fm map[string]interface{}) time.Time {
	if fm != nil {
		if t, ok := fm["date"].(time.Time); ok {
			return t
		}
	}
	if raw := stringField(fm, "date"); raw != "" {
		for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	if identifier != "" {
		if t, err := time.Parse(identifierLayout, identifier); err == nil {
			return t
		}
	}
	return time.Time{}
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// deriveTags returns the declared frontmatter tags in declared order,
// falling back to the file name keywords segment (__kw1_kw2).
func deriveTags(name string, fm map[string]interface{}) []string {
	if raw, ok := fm["tags"]; ok {
		if list, ok := raw.([]interface{}); ok {
			var out []string
			for _, item := range list {
				if s, ok := item.(string); ok {
					s = strings.TrimSpace(s)
					if s != "" {
						out = append(out, s)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	if m := keywordsRe.FindStringSubmatch(name); m != nil {
		var out []string
		for _, kw := range strings.Split(m[1], "_") {
			if kw != "" {
				out = append(out, kw)
			}
		}
		return out
	}
	return nil
}

// extractReferences returns every denote link in the body, in order of
// appearance. Duplicates are kept; the publisher rewrites each occurrence.
func extractReferences(body string) []models.Reference {
	matches := denoteLinkRe.FindAllStringSubmatch(body, -1)
	var out []models.Reference
	for _, m := range matches {
		ref := models.Reference{Label: m[1], Target: m[2]}
		if i := strings.Index(ref.Target, "::"); i >= 0 {
			ref.Target, ref.Query = ref.Target[:i], ref.Target[i+2:]
		}
		if ref.Target == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func stringField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
