// Package textmatch provides the text canonicalization and approximate
// string matching primitives used to locate section titles in page text.
package textmatch

import (
	"strings"
	"unicode"
)

// Normalize replaces every maximal run of whitespace (spaces, tabs,
// newlines) with a single space. It performs no other transformation and
// does not trim: a leading or trailing run becomes a single space. The
// same form is applied to titles and page text so byte offsets line up.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inRun = true
			continue
		}
		if inRun {
			b.WriteByte(' ')
			inRun = false
		}
		b.WriteRune(r)
	}
	if inRun {
		b.WriteByte(' ')
	}

	return b.String()
}
