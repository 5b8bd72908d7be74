package output

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeTerminal replaces control characters and invalid UTF-8 in s with
// visible escapes so that file names and command lines of other processes
// cannot drive the terminal. Tabs and newlines are kept.
//
//	"hi\x1b[31mred" -> `hi\x1b[31mred`
//	"bad:\xff"      -> `bad:\xff`
func SanitizeTerminal(s string) string {
	if isClean(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			appendEscapedByte(&b, s[i])
		case needsEscape(r):
			appendEscapedRune(&b, r)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func isClean(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || needsEscape(r) {
			return false
		}
		i += size
	}
	return true
}

func needsEscape(r rune) bool {
	return r != '\n' && r != '\t' && unicode.IsControl(r)
}

func appendEscapedByte(b *strings.Builder, c byte) {
	fmt.Fprintf(b, `\x%02x`, c)
}

// appendEscapedRune writes r as \xHH, \uHHHH or \UHHHHHHHH depending on
// its size
func appendEscapedRune(b *strings.Builder, r rune) {
	switch {
	case r <= 0xff:
		appendEscapedByte(b, byte(r))
	case r <= 0xffff:
		fmt.Fprintf(b, `\u%04x`, r)
	default:
		fmt.Fprintf(b, `\U%08x`, r)
	}
}
