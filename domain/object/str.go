package object

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"
)

func pickQuote(hasSingle, hasDouble bool) byte {
	if hasSingle && !hasDouble {
		return '"'
	}
	return '\''
}

// quoteStr renders s as a string literal. asciiOnly escapes every non-ASCII
// code point as ascii() does.
func quoteStr(s string, asciiOnly bool) string {
	q := pickQuote(strings.ContainsRune(s, '\''), strings.ContainsRune(s, '"'))
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x7f:
			b.WriteRune(r)
		case !asciiOnly && unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// quoteBytes renders b as a bytes literal.
func quoteBytes(data []byte) string {
	q := pickQuote(strings.IndexByte(string(data), '\'') >= 0, strings.IndexByte(string(data), '"') >= 0)
	var b strings.Builder
	b.WriteByte('b')
	b.WriteByte(q)
	for _, c := range data {
		switch {
		case c == q || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// asciiEscape escapes the non-ASCII code points of an already rendered repr.
func asciiEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	return b.String()
}

// StrFromRunes builds a string from code points, validating the range.
func StrFromRunes(rs []rune) (*Str, error) {
	for _, r := range rs {
		if r < 0 || r > unicode.MaxRune {
			return nil, valueError("character U+%x is not in range [U+0000; U+10ffff]", uint32(r))
		}
	}
	return NewStr(string(rs)), nil
}

func strLen(s string) int {
	return utf8.RuneCountInString(s)
}

// hashBytes is FNV-1a over the raw bytes, kept non-negative.
func hashBytes(data []byte) int64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return int64(h.Sum64() >> 1)
}
