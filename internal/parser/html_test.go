package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docnum/internal/doctree"
)

func TestHTMLParser_HeadingsAndParagraphs(t *testing.T) {
	input := `<html><head><title>T</title><style>p{}</style></head><body>
<nav>menu</nav>
<h1>Intro</h1>
<p>See figure :num[fig].</p>
<h2>Details</h2>
<ul><li>one</li><li>two</li></ul>
</body></html>`
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 5 {
		t.Fatalf("expected 5 children, got %d", len(tree.Children))
	}
	if h := tree.Children[0]; h.Type != doctree.TypeHeading || h.Depth != 1 || h.TextContent() != "Intro" {
		t.Errorf("unexpected first heading %+v", h)
	}
	if h := tree.Children[2]; h.Type != doctree.TypeHeading || h.Depth != 2 {
		t.Errorf("expected depth 2 heading, got %+v", h)
	}
	refs := doctree.Find(tree, func(n *doctree.Node) bool { return n.Type == doctree.TypeTextDirective })
	if len(refs) != 1 || refs[0].TextContent() != "fig" {
		t.Errorf("expected one fig reference, got %d", len(refs))
	}
}

func TestPDFTree_SplitsPagesAndParagraphs(t *testing.T) {
	tree := pdfTree("page one\n\nstill one\fpage two")
	if len(tree.Children) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(tree.Children))
	}
	if got := tree.Children[2].TextContent(); got != "page two" {
		t.Errorf("expected %q, got %q", "page two", got)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(strings.NewReader("not a zip"), "bad.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}
