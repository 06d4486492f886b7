package render

import "strings"

// EscapeText escapes the characters of a text value that would otherwise be
// read back as markdown, HTML or directive syntax. atLineStart reports
// whether s begins a line of its block.
//
// Always escaped: `[`, `*`, `_`, `<` and "`". Escaped in context: `\` before
// punctuation, `&` starting an entity, `!` before `[`, `:` before a letter
// (not after another `:`), and at the start of a line `#`, `>`, `-`, `+`,
// `=`, `~` and the delimiter of `N.` or `N)`.
//
// `]` is left alone, so "[bar]" becomes `\[bar]`.
func EscapeText(s string, atLineStart bool) string {
	if !needsEscape(s, atLineStart) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	lineStart := atLineStart
	indent := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		first := lineStart && c != ' ' && c != '\t'
		if lineStart && (c == ' ' || c == '\t') && indent < 3 {
			indent++
			sb.WriteByte(c)
			continue
		}
		lineStart = false

		switch {
		case c == '\n':
			lineStart = true
			indent = 0
		case c == '[' || c == '*' || c == '_' || c == '<' || c == '`':
			sb.WriteByte('\\')
		case c == '\\':
			if i+1 < len(s) && isASCIIPunct(s[i+1]) {
				sb.WriteByte('\\')
			}
		case c == '&':
			if i+1 < len(s) && (s[i+1] == '#' || isASCIILetter(s[i+1])) {
				sb.WriteByte('\\')
			}
		case c == '!':
			if i+1 < len(s) && s[i+1] == '[' {
				sb.WriteByte('\\')
			}
		case c == ':':
			if i+1 < len(s) && isASCIILetter(s[i+1]) && (i == 0 || s[i-1] != ':') {
				sb.WriteByte('\\')
			}
		case first && strings.IndexByte("#>-+=~", c) >= 0:
			sb.WriteByte('\\')
		case first && isDigit(c):
			// Copy the digit run so the delimiter after it can be escaped.
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			sb.WriteString(s[i:j])
			if j-i <= 9 && j < len(s) && (s[j] == '.' || s[j] == ')') && endsListMarker(s, j+1) {
				sb.WriteByte('\\')
			}
			i = j - 1
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func needsEscape(s string, atLineStart bool) bool {
	if strings.ContainsAny(s, "[*_<`\\&!:") {
		return true
	}
	if !atLineStart && !strings.Contains(s, "\n") {
		return false
	}
	return strings.ContainsAny(s, "#>-+=~.)")
}

// endsListMarker reports whether position i ends an ordered list marker.
func endsListMarker(s string, i int) bool {
	return i == len(s) || s[i] == ' ' || s[i] == '\t' || s[i] == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
