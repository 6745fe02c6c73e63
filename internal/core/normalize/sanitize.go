package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize removes what must never reach the store or a log line:
// NUL and other C0 controls, DEL, C1 controls U+0080..U+009F and invalid UTF-8 bytes.
// '\t', '\n' and '\r' become a single space each so text around a link stays separated.
// Clean input is returned unchanged without allocating
func Sanitize(s string) string {
	i := firstDirty(s)
	if i == len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])

	for i < len(s) {
		c := s[i]
		switch {
		case c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(' ')
			i++
		case c < 0x20 || c == 0x7F:
			i++
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if !(r == utf8.RuneError && size == 1) && !isC1(r) {
				b.WriteString(s[i : i+size])
			}
			i += size
		}
	}
	return b.String()
}

// firstDirty returns the offset of the first byte Sanitize would change, or len(s)
func firstDirty(s string) int {
	for i := 0; i < len(s); {
		c := s[i]
		if c < 0x20 || c == 0x7F {
			return i
		}
		if c < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || isC1(r) {
			return i
		}
		i += size
	}
	return len(s)
}

func isC1(r rune) bool { return r >= 0x80 && r <= 0x9F }
