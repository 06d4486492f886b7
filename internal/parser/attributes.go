package parser

import (
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
)

// parseAttributes reads the body of a directive attribute list:
// `#id`, `.class`, `key`, `key=value`, `key="value"` and `key='value'`,
// separated by whitespace. Repeated keys keep the last value except for
// classes, which accumulate.
func parseAttributes(s string) (doctree.Attributes, bool) {
	var attrs doctree.Attributes
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return attrs, true
		}
		switch s[i] {
		case '#', '.':
			kind := s[i]
			i++
			start := i
			for i < len(s) && !isSpace(s[i]) && s[i] != '#' && s[i] != '.' {
				i++
			}
			if start == i {
				return nil, false
			}
			v := s[start:i]
			if kind == '#' {
				attrs.Set("id", v)
				continue
			}
			if prev, ok := attrs.Get("class"); ok && prev != "" {
				v = prev + " " + v
			}
			attrs.Set("class", v)
		default:
			start := i
			for i < len(s) && !isSpace(s[i]) && s[i] != '=' {
				i++
			}
			key := s[start:i]
			if key == "" || strings.ContainsAny(key, `"'<>`) {
				return nil, false
			}
			if i >= len(s) || s[i] != '=' {
				attrs.Set(key, "")
				continue
			}
			i++
			val, next, ok := attributeValue(s, i)
			if !ok {
				return nil, false
			}
			i = next
			attrs.Set(key, val)
		}
	}
}

func attributeValue(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", i, true
	}
	if q := s[i]; q == '"' || q == '\'' {
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			return "", 0, false
		}
		return s[i+1 : i+1+end], i + end + 2, true
	}
	start := i
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return s[start:i], i, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
