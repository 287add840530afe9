package frontmatter

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Environment is the read-only metadata snapshot for one note, produced by
// the parser once per publish operation.
type Environment struct {
	Title    string
	Created  time.Time
	Aliases  string // raw annotation, whitespace-separated tokens
	Tags     []string
	Category string // explicit annotation only, never derived
	Options  map[string]interface{}
}

// Synthesizer assembles the front-matter block for the configured fields.
// Fields is the ordered list of field names to emit; order is preserved
// verbatim and duplicates are not deduplicated. Now supplies the wall clock
// for the last_updated_at field.
type Synthesizer struct {
	Fields []string
	Now    func() time.Time
}

// New returns a Synthesizer over the given field list using the real clock.
func New(fields []string) *Synthesizer {
	return &Synthesizer{Fields: fields, Now: time.Now}
}

// Synthesize resolves each configured field against env and returns the
// delimited YAML block. Fields resolving to absent or empty-string values
// emit no line. A malformed sequence field aborts the whole block.
func (s *Synthesizer) Synthesize(env Environment) (string, error) {
	var b strings.Builder
	b.WriteString("---\n")
	for _, field := range s.Fields {
		value := s.resolve(field, env)
		if value == nil {
			continue
		}
		var rendered string
		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			rendered = Quote(v)
		case []interface{}:
			if len(v) == 0 {
				continue
			}
			list, err := SerializeList(field, v)
			if err != nil {
				return "", err
			}
			rendered = list
		default:
			rendered = Quote(v)
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	return b.String(), nil
}

// resolve maps a field name to its value, or nil when absent.
//
// Well-known fields are dispatched explicitly; anything else falls back to
// a case-insensitive lookup in the environment's option table.
func (s *Synthesizer) resolve(field string, env Environment) interface{} {
	switch field {
	case "title":
		if env.Title == "" {
			return nil
		}
		return env.Title
	case "date":
		if env.Created.IsZero() {
			return nil
		}
		// Pre-quoted so the quoting engine passes it through untouched.
		return `"` + env.Created.Format(dateLayout) + `"`
	case "last_updated_at":
		// Always the publish-time wall clock, never read from the note.
		return `"` + s.now().Format(dateLayout) + `"`
	case "aliases":
		tokens := strings.Fields(env.Aliases)
		if len(tokens) == 0 {
			return nil
		}
		items := make([]interface{}, len(tokens))
		for i, tok := range tokens {
			items[i] = tok
		}
		return items
	case "tags":
		if len(env.Tags) == 0 {
			return nil
		}
		items := make([]interface{}, len(env.Tags))
		for i, tag := range env.Tags {
			items[i] = tag
		}
		return items
	case "category":
		// Explicit annotation only; no fallback to file name or path.
		if env.Category == "" {
			return nil
		}
		return env.Category
	default:
		return lookupOption(env.Options, field)
	}
}

func (s *Synthesizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// lookupOption finds field in the option table, matching case-insensitively
// and treating dashes and underscores as equivalent (the table may use the
// host's kebab/upper key convention).
func lookupOption(options map[string]interface{}, field string) interface{} {
	if len(options) == 0 {
		return nil
	}
	if v, ok := options[field]; ok {
		return v
	}
	want := normalizeKey(field)
	for k, v := range options {
		if normalizeKey(k) == want {
			return v
		}
	}
	return nil
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}
