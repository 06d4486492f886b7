package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// markdown is safe for concurrent use.
var markdown = goldmark.New(goldmark.WithExtensions(Directives))

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(src), nil
}

// ParseMarkdown parses markdown source, including directives and a leading
// front matter block, into a document tree.
func ParseMarkdown(src []byte) *doctree.Node {
	root := doctree.NewRoot()
	body := src
	if fm, rest, ok := splitFrontMatter(src); ok {
		root.Children = append(root.Children, &doctree.Node{Type: doctree.TypeYAML, Value: fm})
		body = rest
	}
	doc := markdown.Parser().Parse(text.NewReader(body))
	c := &converter{src: body}
	root.Children = append(root.Children, c.blocks(doc)...)
	return root
}

// ParseInline parses a single line of inline markdown. Source that does not
// parse as one plain paragraph is returned as a single text node.
func ParseInline(src []byte) []*doctree.Node {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil
	}
	doc := markdown.Parser().Parse(text.NewReader(src))
	p := doc.FirstChild()
	if p == nil || p.NextSibling() != nil || p.Kind() != ast.KindParagraph {
		return []*doctree.Node{doctree.NewText(string(src))}
	}
	c := &converter{src: src}
	return c.inlines(p)
}

// splitFrontMatter separates a leading `---` delimited block from the body.
func splitFrontMatter(src []byte) (string, []byte, bool) {
	first, rest, ok := bytes.Cut(src, []byte("\n"))
	if !ok || string(bytes.TrimRight(first, " \t\r")) != "---" {
		return "", src, false
	}
	var lines []string
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = bytes.Cut(rest, []byte("\n"))
		trimmed := string(bytes.TrimRight(line, " \t\r"))
		if trimmed == "---" || trimmed == "..." {
			return strings.Join(lines, "\n"), rest, true
		}
		lines = append(lines, strings.TrimRight(string(line), "\r"))
	}
	return "", src, false
}

// converter turns a goldmark AST into a doctree.
type converter struct {
	src []byte
}

func (c *converter) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) block(n ast.Node) *doctree.Node {
	switch n := n.(type) {
	case *ast.Heading:
		return doctree.NewHeading(n.Level, c.inlines(n)...)
	case *ast.Paragraph, *ast.TextBlock:
		return doctree.NewParagraph(c.inlines(n)...)
	case *ast.ThematicBreak:
		return &doctree.Node{Type: doctree.TypeThematicBreak}
	case *ast.FencedCodeBlock:
		return &doctree.Node{Type: doctree.TypeCode, Lang: string(n.Language(c.src)), Value: c.lines(n)}
	case *ast.CodeBlock:
		return &doctree.Node{Type: doctree.TypeCode, Value: c.lines(n)}
	case *ast.HTMLBlock:
		value := c.lines(n)
		if n.HasClosure() {
			value += "\n" + strings.TrimSuffix(string(n.ClosureLine.Value(c.src)), "\n")
		}
		return &doctree.Node{Type: doctree.TypeHTML, Value: value}
	case *ast.Blockquote:
		return &doctree.Node{Type: doctree.TypeBlockquote, Children: c.blocks(n)}
	case *ast.List:
		return &doctree.Node{
			Type:     doctree.TypeList,
			Ordered:  n.IsOrdered(),
			Start:    n.Start,
			Spread:   !n.IsTight,
			Children: c.blocks(n),
		}
	case *ast.ListItem:
		return &doctree.Node{Type: doctree.TypeListItem, Children: c.blocks(n)}
	case *LeafDirective:
		return &doctree.Node{
			Type:       doctree.TypeLeafDirective,
			Name:       n.Name,
			Attributes: n.Attrs,
			Children:   labelNodes(n.directiveFields),
		}
	case *ContainerDirective:
		return &doctree.Node{
			Type:       doctree.TypeContainerDirective,
			Name:       n.Name,
			Attributes: n.Attrs,
			Label:      labelNodes(n.directiveFields),
			Children:   c.blocks(n),
		}
	}
	return nil
}

func (c *converter) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(c.src))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (c *converter) inlines(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = c.inline(out, n)
	}
	return out
}

func (c *converter) inline(out []*doctree.Node, n ast.Node) []*doctree.Node {
	switch n := n.(type) {
	case *ast.Text:
		value := n.Segment.Value(c.src)
		if !n.IsRaw() {
			value = decodeText(value)
		}
		s := string(value)
		if n.SoftLineBreak() {
			s += "\n"
		}
		out = appendText(out, s)
		if n.HardLineBreak() {
			out = append(out, &doctree.Node{Type: doctree.TypeBreak})
		}
		return out
	case *ast.String:
		return appendText(out, string(n.Value))
	case *ast.CodeSpan:
		var sb strings.Builder
		for t := n.FirstChild(); t != nil; t = t.NextSibling() {
			switch t := t.(type) {
			case *ast.Text:
				sb.Write(t.Segment.Value(c.src))
			case *ast.String:
				sb.Write(t.Value)
			}
		}
		return append(out, &doctree.Node{Type: doctree.TypeInlineCode, Value: sb.String()})
	case *ast.Emphasis:
		typ := doctree.TypeEmphasis
		if n.Level >= 2 {
			typ = doctree.TypeStrong
		}
		return append(out, &doctree.Node{Type: typ, Children: c.inlines(n)})
	case *ast.Link:
		return append(out, &doctree.Node{
			Type:     doctree.TypeLink,
			URL:      string(n.Destination),
			Title:    string(n.Title),
			Children: c.inlines(n),
		})
	case *ast.Image:
		alt := doctree.NewParagraph(c.inlines(n)...).TextContent()
		return append(out, &doctree.Node{
			Type:  doctree.TypeImage,
			URL:   string(n.Destination),
			Title: string(n.Title),
			Alt:   alt,
		})
	case *ast.AutoLink:
		url := string(n.URL(c.src))
		return append(out, &doctree.Node{
			Type:     doctree.TypeLink,
			URL:      url,
			Children: []*doctree.Node{doctree.NewText(string(n.Label(c.src)))},
		})
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(c.src))
		}
		return append(out, &doctree.Node{Type: doctree.TypeHTML, Value: sb.String()})
	case *TextDirective:
		return append(out, &doctree.Node{
			Type:       doctree.TypeTextDirective,
			Name:       n.Name,
			Attributes: n.Attrs,
			Children:   labelNodes(n.directiveFields),
		})
	}
	return append(out, c.inlines(n)...)
}

// decodeText resolves backslash escapes and character references in one
// scan, so an escaped `&` never starts a reference.
func decodeText(b []byte) []byte {
	if bytes.IndexByte(b, '\\') < 0 && bytes.IndexByte(b, '&') < 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		switch c := b[i]; {
		case c == '\\' && i+1 < len(b) && util.IsPunct(b[i+1]):
			out = append(out, b[i+1])
			i++
		case c == '&':
			if end := bytes.IndexByte(b[i:min(len(b), i+33)], ';'); end > 0 {
				ref := b[i : i+end+1]
				if resolved := util.ResolveNumericReferences(util.ResolveEntityNames(ref)); !bytes.Equal(resolved, ref) {
					out = append(out, resolved...)
					i += end
					continue
				}
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func labelNodes(d directiveFields) []*doctree.Node {
	if !d.HasLabel {
		return nil
	}
	return ParseInline(d.Label)
}

// appendText merges s into a trailing text node.
func appendText(out []*doctree.Node, s string) []*doctree.Node {
	if s == "" {
		return out
	}
	if last := len(out) - 1; last >= 0 && out[last].Type == doctree.TypeText {
		out[last].Value += s
		return out
	}
	return append(out, doctree.NewText(s))
}
