// Package frontmatter synthesizes the YAML metadata block prepended to
// published pages: scalar quoting, inline list serialization, and the
// field-by-field assembly of the delimited block.
package frontmatter

import (
	"regexp"
	"strconv"
	"strings"
)

// Atom is a symbolic (identifier-shaped) value. Atoms are always wrapped
// in double quotes without escaping.
type Atom string

// timestampRe matches a bare date, optionally followed by a time and a
// timezone offset: YYYY-MM-DD[THH:MM:SS[Z|±HH:MM]]. Shared between the
// quoting engine and the date field semantics so the two never drift.
var timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})?)?$`)

// IsTimestamp reports whether s is a timestamp-shaped scalar that is safe
// to emit as a bare YAML value.
func IsTimestamp(s string) bool {
	return timestampRe.MatchString(s)
}

// Quote renders a single metadata value as a YAML-safe scalar literal.
//
//   - nil (absent) renders as an empty string; callers suppress the field.
//   - Numbers render unquoted in their canonical decimal form.
//   - Atoms are wrapped in double quotes unconditionally.
//   - Strings that are already double-quoted, equal true/false, or
//     timestamp-shaped pass through untouched. All other strings have
//     backslashes doubled and quotes escaped, then get wrapped.
//   - Anything else is invalid and degrades to an empty quoted string.
func Quote(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case Atom:
		return `"` + string(val) + `"`
	case string:
		return quoteString(val)
	default:
		return `""`
	}
}

// quoteString applies the string branch of Quote. The pass-through checks
// must run before escaping: a pre-quoted or date-shaped value is already a
// valid YAML scalar and must not be escaped again.
func quoteString(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	if s == "true" || s == "false" {
		return s
	}
	if IsTimestamp(s) {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
