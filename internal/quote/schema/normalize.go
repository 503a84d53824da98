package schema

import (
	"strconv"
	"strings"
	"unicode"
)

var widthReplacer = strings.NewReplacer("（", "(", "）", ")", "：", ":")

// NormalizeHeader canonicalizes header or cell text for comparison:
// trims, strips all whitespace and maps full-width （）： to half-width.
// Case is preserved; callers fold case where the comparison needs it.
func NormalizeHeader(v any) string {
	s := CellText(v)
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return widthReplacer.Replace(s)
}

// CellText renders a loosely-typed cell as trimmed text, "" for nil.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// CellValue returns the raw cell value, or nil when the cell is empty or
// holds a serialized null ("none"/"None" artifacts from upstream tooling).
func CellValue(v any) any {
	s := CellText(v)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	return v
}

// Similarity scores two strings 0..100 after normalization: 100 means
// identical, 0 means nothing in common. Symmetric; based on normalized
// Damerau-Levenshtein distance over runes.
func Similarity(a, b string) float64 {
	na := NormalizeHeader(a)
	nb := NormalizeHeader(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	d := damerauLevenshtein(na, nb)
	m := len([]rune(na))
	if mb := len([]rune(nb)); mb > m {
		m = mb
	}
	return (1 - float64(d)/float64(m)) * 100
}
