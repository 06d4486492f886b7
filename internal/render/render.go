// Package render serializes a doctree back to markdown with directive syntax.
package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
)

// Markdown serializes n followed by a single line terminator.
func Markdown(n *doctree.Node) string {
	if n == nil {
		return "\n"
	}
	if isPhrasing(n) {
		return phrasingAll([]*doctree.Node{n}, true) + "\n"
	}
	return block(n) + "\n"
}

func isPhrasing(n *doctree.Node) bool {
	switch n.Type {
	case doctree.TypeText, doctree.TypeEmphasis, doctree.TypeStrong, doctree.TypeInlineCode,
		doctree.TypeBreak, doctree.TypeLink, doctree.TypeImage, doctree.TypeTextDirective:
		return true
	}
	return false
}

func block(n *doctree.Node) string {
	switch n.Type {
	case doctree.TypeRoot:
		return blocks(n.Children)
	case doctree.TypeParagraph:
		return phrasingAll(n.Children, true)
	case doctree.TypeHeading:
		prefix := strings.Repeat("#", max(1, min(n.Depth, 6)))
		content := phrasingAll(n.Children, false)
		if content == "" {
			return prefix
		}
		return prefix + " " + content
	case doctree.TypeThematicBreak:
		return "***"
	case doctree.TypeCode:
		fence := codeFence(n.Value)
		return fence + n.Lang + "\n" + n.Value + "\n" + fence
	case doctree.TypeHTML:
		return n.Value
	case doctree.TypeYAML:
		if n.Value == "" {
			return "---\n---"
		}
		return "---\n" + n.Value + "\n---"
	case doctree.TypeBlockquote:
		return prefixLines(blocks(n.Children), "> ", ">")
	case doctree.TypeList:
		return list(n)
	case doctree.TypeListItem:
		return blocks(n.Children)
	case doctree.TypeLeafDirective:
		return "::" + n.Name + label(n.Children) + attributes(n.Attributes)
	case doctree.TypeContainerDirective:
		fence := strings.Repeat(":", 3+containerNesting(n.Children))
		open := fence + n.Name + label(n.Label) + attributes(n.Attributes)
		if len(n.Children) == 0 {
			return open + "\n" + fence
		}
		return open + "\n" + blocks(n.Children) + "\n" + fence
	}
	return phrasing(n)
}

func blocks(nodes []*doctree.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, c := range nodes {
		if isPhrasing(c) {
			parts = append(parts, phrasingAll([]*doctree.Node{c}, true))
			continue
		}
		parts = append(parts, block(c))
	}
	return strings.Join(parts, "\n\n")
}

func list(n *doctree.Node) string {
	sep := "\n"
	if n.Spread {
		sep = "\n\n"
	}
	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		marker := "*"
		if n.Ordered {
			marker = strconv.Itoa(max(n.Start, 0)+i) + "."
		}
		indent := strings.Repeat(" ", len(marker)+1)
		body := prefixLines(block(item), indent, "")
		items = append(items, marker+" "+strings.TrimPrefix(body, indent))
	}
	return strings.Join(items, sep)
}

func prefixLines(s, prefix, blankPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = blankPrefix
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func containerNesting(nodes []*doctree.Node) int {
	depth := 0
	for _, c := range nodes {
		if c.Type == doctree.TypeContainerDirective {
			depth = max(depth, 1+containerNesting(c.Children))
			continue
		}
		depth = max(depth, containerNesting(c.Children))
	}
	return depth
}

func codeFence(value string) string {
	longest := 0
	for _, line := range strings.Split(value, "\n") {
		run := len(line) - len(strings.TrimLeft(line, "`"))
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

// phrasingAll serializes inline nodes. Adjacent text nodes are escaped as
// one run so that markers split across substitutions, like "1" followed by
// ". Intro", are still seen at the start of a line.
func phrasingAll(nodes []*doctree.Node, atLineStart bool) string {
	var sb strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		start := (sb.Len() == 0 && atLineStart) || strings.HasSuffix(sb.String(), "\n")
		sb.WriteString(EscapeText(run.String(), start))
		run.Reset()
	}
	for _, c := range nodes {
		if c.Type == doctree.TypeText {
			run.WriteString(c.Value)
			continue
		}
		flush()
		sb.WriteString(phrasing(c))
	}
	flush()
	return sb.String()
}

func phrasing(n *doctree.Node) string {
	switch n.Type {
	case doctree.TypeText:
		return EscapeText(n.Value, false)
	case doctree.TypeEmphasis:
		return "*" + phrasingAll(n.Children, false) + "*"
	case doctree.TypeStrong:
		return "**" + phrasingAll(n.Children, false) + "**"
	case doctree.TypeInlineCode:
		return inlineCode(n.Value)
	case doctree.TypeBreak:
		return "\\\n"
	case doctree.TypeHTML:
		return n.Value
	case doctree.TypeLink:
		return "[" + phrasingAll(n.Children, false) + "](" + destination(n.URL, n.Title) + ")"
	case doctree.TypeImage:
		return "![" + EscapeText(n.Alt, false) + "](" + destination(n.URL, n.Title) + ")"
	case doctree.TypeTextDirective:
		return ":" + n.Name + label(n.Children) + attributes(n.Attributes)
	}
	return phrasingAll(n.Children, false)
}

func inlineCode(value string) string {
	ticks := "`"
	for strings.Contains(value, ticks) {
		ticks += "`"
	}
	if strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") {
		return ticks + " " + value + " " + ticks
	}
	return ticks + value + ticks
}

func destination(url, title string) string {
	if url == "" || strings.ContainsAny(url, " \t\n()") {
		url = "<" + url + ">"
	}
	if title == "" {
		return url
	}
	return url + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func label(children []*doctree.Node) string {
	if len(children) == 0 {
		return ""
	}
	return "[" + phrasingAll(children, false) + "]"
}

func attributes(attrs doctree.Attributes) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		switch {
		case a.Key == "id" && isShorthand(a.Val):
			parts = append(parts, "#"+a.Val)
		case a.Key == "class" && a.Val != "":
			for _, cls := range strings.Fields(a.Val) {
				parts = append(parts, "."+cls)
			}
		case a.Val == "":
			parts = append(parts, a.Key)
		default:
			parts = append(parts, a.Key+`="`+strings.ReplaceAll(a.Val, `"`, "&#x22;")+`"`)
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func isShorthand(v string) bool {
	if v == "" {
		return false
	}
	return !strings.ContainsAny(v, " \t\n\"'=<>`{}#.")
}
