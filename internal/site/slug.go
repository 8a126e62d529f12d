package site

import (
	"strings"
	"unicode"
)

// Slugify derives a filename-safe fragment from free text: lower-case,
// every run of whitespace becomes a single '-', and characters that would
// break a path or a relative URL ('/', '\\', '?', '#', '%', quotes, angle
// brackets, control characters) become '-'. Everything else is kept, so
// "Tech Co." becomes "tech-co.".
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if isUnsafePathRune(r) {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isUnsafePathRune(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	switch r {
	case '/', '\\', '?', '#', '%', '"', '\'', '<', '>', '|', ':', '*':
		return true
	}
	return false
}
