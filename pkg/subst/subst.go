// Package subst replaces tokens in semi-structured text only where they are
// delimited by an allowed boundary on both sides, so that an id such as
// "10" is never rewritten inside "100".
package subst

import (
	"strings"
	"unicode/utf8"
)

// Edge is passed to boundary predicates at the start or end of the text
const Edge rune = -1

// Boundary decides which characters may surround a replaced token
type Boundary struct {
	Before func(r rune) bool
	After  func(r rune) bool
}

// AnyOf accepts the listed characters, and the text edge when edge is true
func AnyOf(chars string, edge bool) func(rune) bool {
	return func(r rune) bool {
		if r == Edge {
			return edge
		}
		return strings.ContainsRune(chars, r)
	}
}

// NotWord accepts the text edge and any character that is neither a letter,
// a digit, an underscore nor one of extra.
func NotWord(extra string) func(rune) bool {
	return func(r rune) bool {
		if r == Edge {
			return true
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return false
		}
		return !strings.ContainsRune(extra, r)
	}
}

// Volume delimits volume identifiers inside a unit definition. A trailing
// dot is rejected so that a bare disk name never rewrites the inside of an
// image file name such as 100/vm-100-disk-0.qcow2.
var Volume = Boundary{Before: NotWord("-"), After: NotWord("-.")}

// Replace substitutes every bounded occurrence of old with new and returns
// the result and the number of replacements. Boundary characters are not
// consumed, so adjacent occurrences sharing a separator are all replaced.
func Replace(s, old, new string, b Boundary) (string, int) {
	if old == "" {
		return s, 0
	}

	var out strings.Builder
	count, last, pos := 0, 0, 0
	for pos <= len(s)-len(old) {
		i := strings.Index(s[pos:], old)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(old)

		before, after := Edge, Edge
		if start > 0 {
			before, _ = utf8.DecodeLastRuneInString(s[:start])
		}
		if end < len(s) {
			after, _ = utf8.DecodeRuneInString(s[end:])
		}

		if b.Before(before) && b.After(after) {
			out.WriteString(s[last:start])
			out.WriteString(new)
			last = end
			pos = end
			count++
			continue
		}
		pos = start + 1
	}
	if count == 0 {
		return s, 0
	}
	out.WriteString(s[last:])
	return out.String(), count
}
