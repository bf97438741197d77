package encode

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// reserved are the plain scalars the parser reads as something other than a
// string. YAML 1.1 booleans such as yes and n are strings.
var reserved = map[string]bool{
	"null": true, "Null": true, "NULL": true, "~": true,
	"true": true, "True": true, "TRUE": true,
	"false": true, "False": true, "FALSE": true,
	".inf": true, ".Inf": true, ".INF": true,
	"-.inf": true, "-.Inf": true, "-.INF": true,
	".nan": true, ".NaN": true, ".NAN": true,
	"<<": true,
}

// needsQuote reports whether v would not read back as the same plain
// string.
func needsQuote(v string) bool {
	if v == "" {
		return true
	}
	if reserved[v] {
		return true
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return true
	}
	switch v[0] {
	case '-', '?', ':', ',', '[', ']', '{', '}', '#', '&', '*', '!', '|',
		'>', '\'', '"', '%', '@', '`', ' ', '\t', '.', '+',
		'0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	if strings.HasSuffix(v, " ") || strings.HasSuffix(v, ":") {
		return true
	}
	if strings.Contains(v, ": ") || strings.Contains(v, " #") || strings.ContainsAny(v, ",[]{}") {
		return true
	}
	for _, r := range v {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return true
		}
	}
	return false
}

// quote double quotes v with YAML escapes.
func quote(v string) string {
	d := make([]byte, 1, len(v)+2)
	d[0] = '"'
	ucs := []byte{0, 0}
	cps := []byte{0, 0, 0, 0}
	for _, r := range v {
		switch r {
		case '"':
			d = append(d, '\\', '"')
		case '\\':
			d = append(d, '\\', '\\')
		case '\b':
			d = append(d, '\\', 'b')
		case '\f':
			d = append(d, '\\', 'f')
		case '\n':
			d = append(d, '\\', 'n')
		case '\r':
			d = append(d, '\\', 'r')
		case '\t':
			d = append(d, '\\', 't')
		default:
			if unicode.IsControl(r) {
				ucs[0] = byte(r >> 8)
				ucs[1] = byte(r)
				cps = hex.AppendEncode(cps[:0], ucs)
				d = append(d, '\\', 'u', cps[0], cps[1], cps[2], cps[3])
			} else {
				d = utf8.AppendRune(d, r)
			}
		}
	}
	return string(append(d, '"'))
}

func singleQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func plainOrQuoted(v string) string {
	if needsQuote(v) {
		return quote(v)
	}
	return v
}
