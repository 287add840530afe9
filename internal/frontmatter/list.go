package frontmatter

import (
	"fmt"
	"strings"
)

// InvalidListElementError reports a sequence element that is not a number,
// atom, or non-empty string. A malformed list is a configuration or data
// defect: synthesis of the whole document must abort rather than emit
// partially-correct YAML.
type InvalidListElementError struct {
	Field string
	Value interface{}
}

func (e *InvalidListElementError) Error() string {
	return fmt.Sprintf("frontmatter: field %q: invalid list element %v (%T)", e.Field, e.Value, e.Value)
}

// SerializeList renders items as a YAML inline list, quoting each element
// through the scalar rules. field is used only for diagnostics.
func SerializeList(field string, items []interface{}) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case int, int64, float64, Atom:
			parts = append(parts, Quote(v))
		case string:
			if v == "" {
				return "", &InvalidListElementError{Field: field, Value: item}
			}
			parts = append(parts, Quote(v))
		default:
			return "", &InvalidListElementError{Field: field, Value: item}
		}
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}
