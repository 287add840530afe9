package parser

import (
	"strings"

	"github.com/starford/raido/internal/models"
)

// ReplaceReferences rewrites every denote link in body through fn, leaving
// all other text untouched. The first fn error aborts the rewrite.
func ReplaceReferences(body string, fn func(models.Reference) (string, error)) (string, error) {
	matches := denoteLinkRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		ref := models.Reference{
			Label:  body[m[2]:m[3]],
			Target: body[m[4]:m[5]],
		}
		if i := strings.Index(ref.Target, "::"); i >= 0 {
			ref.Target, ref.Query = ref.Target[:i], ref.Target[i+2:]
		}

		b.WriteString(body[last:start])
		if ref.Target == "" {
			// Malformed link with no identifier: leave as-is.
			b.WriteString(body[start:end])
		} else {
			replaced, err := fn(ref)
			if err != nil {
				return "", err
			}
			b.WriteString(replaced)
		}
		last = end
	}
	b.WriteString(body[last:])
	return b.String(), nil
}
