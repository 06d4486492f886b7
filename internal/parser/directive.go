package parser

import (
	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	KindTextDirective      = ast.NewNodeKind("TextDirective")
	KindLeafDirective      = ast.NewNodeKind("LeafDirective")
	KindContainerDirective = ast.NewNodeKind("ContainerDirective")
)

// directiveFields is shared by the three directive node kinds. Label holds
// the raw label source; it is parsed as inline markdown on conversion.
type directiveFields struct {
	Name     string
	Label    []byte
	HasLabel bool
	Attrs    doctree.Attributes
}

var (
	_ ast.Node = (*TextDirective)(nil)
	_ ast.Node = (*LeafDirective)(nil)
	_ ast.Node = (*ContainerDirective)(nil)
)

// TextDirective is an inline `:name[label]{attrs}` marker.
type TextDirective struct {
	ast.BaseInline
	directiveFields
}

func (n *TextDirective) Kind() ast.NodeKind { return KindTextDirective }

func (n *TextDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name, "Label": string(n.Label)}, nil)
}

// LeafDirective is a `::name[label]{attrs}` line.
type LeafDirective struct {
	ast.BaseBlock
	directiveFields
}

func (n *LeafDirective) Kind() ast.NodeKind { return KindLeafDirective }

func (n *LeafDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// ContainerDirective is a fenced `:::name{attrs}` block holding other blocks.
type ContainerDirective struct {
	ast.BaseBlock
	directiveFields
	fence int
}

func (n *ContainerDirective) Kind() ast.NodeKind { return KindContainerDirective }

func (n *ContainerDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// Directives is a goldmark extension recognizing generic directive syntax.
var Directives goldmark.Extender = &directiveExtension{}

type directiveExtension struct{}

func (e *directiveExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		gparser.WithBlockParsers(util.Prioritized(&directiveBlockParser{}, 750)),
		gparser.WithInlineParsers(util.Prioritized(&textDirectiveParser{}, 199)),
	)
}

type textDirectiveParser struct{}

func (p *textDirectiveParser) Trigger() []byte { return []byte{':'} }

func (p *textDirectiveParser) Parse(parent ast.Node, block text.Reader, pc gparser.Context) ast.Node {
	if block.PrecendingCharacter() == ':' {
		return nil
	}
	line, _ := block.PeekLine()
	d, n, ok := scanDirective(line, 1)
	if !ok {
		return nil
	}
	block.Advance(n)
	return &TextDirective{directiveFields: d}
}

type directiveBlockParser struct{}

func (p *directiveBlockParser) Trigger() []byte { return []byte{':'} }

func (p *directiveBlockParser) Open(parent ast.Node, reader text.Reader, pc gparser.Context) (ast.Node, gparser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, gparser.NoChildren
	}
	colons := countByte(line[pos:], ':')
	if colons < 2 {
		return nil, gparser.NoChildren
	}
	d, n, ok := scanDirective(line[pos:], colons)
	if !ok || !util.IsBlank(line[pos+n:]) {
		return nil, gparser.NoChildren
	}
	reader.Advance(lineContentLen(line))
	if colons == 2 {
		return &LeafDirective{directiveFields: d}, gparser.NoChildren
	}
	return &ContainerDirective{directiveFields: d, fence: colons}, gparser.HasChildren
}

func (p *directiveBlockParser) Continue(node ast.Node, reader text.Reader, pc gparser.Context) gparser.State {
	c, ok := node.(*ContainerDirective)
	if !ok {
		return gparser.Close
	}
	line, _ := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		n := countByte(line[pos:], ':')
		if n >= c.fence && util.IsBlank(line[pos+n:]) {
			reader.Advance(lineContentLen(line))
			return gparser.Close
		}
	}
	return gparser.Continue | gparser.HasChildren
}

func (p *directiveBlockParser) Close(node ast.Node, reader text.Reader, pc gparser.Context) {}

func (p *directiveBlockParser) CanInterruptParagraph() bool { return true }

func (p *directiveBlockParser) CanAcceptIndentedLine() bool { return false }

// scanDirective reads `name[label]{attrs}` after the given number of leading
// colons and reports how many bytes were consumed.
func scanDirective(line []byte, colons int) (directiveFields, int, bool) {
	var d directiveFields
	i := colons
	start := i
	if i >= len(line) || !isNameStart(line[i]) {
		return d, 0, false
	}
	for i < len(line) && isNameChar(line[i]) {
		i++
	}
	d.Name = string(line[start:i])

	if i < len(line) && line[i] == '[' {
		end, ok := matchBracket(line, i, '[', ']')
		if !ok {
			return d, 0, false
		}
		d.Label = append([]byte(nil), line[i+1:end]...)
		d.HasLabel = true
		i = end + 1
	}
	if i < len(line) && line[i] == '{' {
		end, ok := matchBracket(line, i, '{', '}')
		if !ok {
			return d, 0, false
		}
		attrs, ok := parseAttributes(string(line[i+1 : end]))
		if !ok {
			return d, 0, false
		}
		d.Attrs = attrs
		i = end + 1
	}
	return d, i, true
}

// matchBracket finds the bracket closing the one at line[open], honouring
// nesting and backslash escapes.
func matchBracket(line []byte, open int, left, right byte) (int, bool) {
	depth := 0
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '\n':
			return 0, false
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func countByte(b []byte, c byte) int {
	n := 0
	for n < len(b) && b[n] == c {
		n++
	}
	return n
}

// lineContentLen is the length of line without its line terminator.
func lineContentLen(line []byte) int {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return n
}
