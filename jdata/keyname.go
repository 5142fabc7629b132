package jdata

import (
	"fmt"
	"strconv"
	"strings"
)

// EscapeKey rewrites a record key into an identifier-safe form: a leading
// character that is not an ASCII letter becomes x0xHH_, and any later
// character outside [A-Za-z0-9_] becomes _0xHH_, where HH is the
// hexadecimal code point. Literal text that would itself read as an escape
// is escaped too, so UnescapeKey(EscapeKey(k)) == k for every key.
func EscapeKey(key string) string {
	if key == "" {
		return key
	}
	var sb strings.Builder
	for i, r := range key {
		if i == 0 {
			if !isASCIILetter(r) || hexEscapeAt(key, 0, "x0x") > 0 {
				fmt.Fprintf(&sb, "x0x%X_", r)
			} else {
				sb.WriteRune(r)
			}
			continue
		}
		switch {
		case r == '_' && hexEscapeAt(key, i, "_0x") > 0:
			sb.WriteString("_0x5F_")
		case isASCIILetter(r) || (r >= '0' && r <= '9') || r == '_':
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "_0x%X_", r)
		}
	}
	return sb.String()
}

// UnescapeKey reverses EscapeKey. Text that is not an escape is left as is.
func UnescapeKey(key string) string {
	if !strings.Contains(key, "0x") {
		return key
	}
	var sb strings.Builder
	i := 0
	if n := hexEscapeAt(key, 0, "x0x"); n > 0 {
		sb.WriteRune(decodeHexRune(key[3 : n-1]))
		i = n
	}
	for i < len(key) {
		if key[i] == '_' {
			if n := hexEscapeAt(key, i, "_0x"); n > 0 {
				sb.WriteRune(decodeHexRune(key[i+3 : i+n-1]))
				i += n
				continue
			}
		}
		sb.WriteByte(key[i])
		i++
	}
	return sb.String()
}

// hexEscapeAt returns the byte length of prefix+hexdigits+'_' starting at
// key[i], or 0 when there is no escape there.
func hexEscapeAt(key string, i int, prefix string) int {
	if !strings.HasPrefix(key[i:], prefix) {
		return 0
	}
	j := i + len(prefix)
	start := j
	for j < len(key) && isHexDigit(key[j]) {
		j++
	}
	if j == start || j-start > 6 || j >= len(key) || key[j] != '_' {
		return 0
	}
	return j + 1 - i
}

func decodeHexRune(h string) rune {
	v, _ := strconv.ParseUint(h, 16, 32)
	return rune(v)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
