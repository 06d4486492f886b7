package doctree

import "strings"

// NodeType identifies the kind of a Node.
type NodeType string

const (
	TypeRoot               NodeType = "root"
	TypeParagraph          NodeType = "paragraph"
	TypeHeading            NodeType = "heading"
	TypeText               NodeType = "text"
	TypeEmphasis           NodeType = "emphasis"
	TypeStrong             NodeType = "strong"
	TypeInlineCode         NodeType = "inlineCode"
	TypeCode               NodeType = "code"
	TypeBreak              NodeType = "break"
	TypeThematicBreak      NodeType = "thematicBreak"
	TypeBlockquote         NodeType = "blockquote"
	TypeList               NodeType = "list"
	TypeListItem           NodeType = "listItem"
	TypeLink               NodeType = "link"
	TypeImage              NodeType = "image"
	TypeHTML               NodeType = "html"
	TypeYAML               NodeType = "yaml"
	TypeTextDirective      NodeType = "textDirective"
	TypeLeafDirective      NodeType = "leafDirective"
	TypeContainerDirective NodeType = "containerDirective"
)

// Node is a single node of a parsed document. Which fields are meaningful
// depends on Type.
type Node struct {
	Type NodeType

	Value string // text, inlineCode, code, html, yaml
	Depth int    // heading level (1-6)

	// Directives.
	Name       string
	Attributes Attributes
	Label      []*Node // container directive label (text/leaf directives keep it in Children)

	// Links and images.
	URL   string
	Title string
	Alt   string

	Lang    string // code
	Ordered bool   // list
	Start   int    // list
	Spread  bool   // list

	Children []*Node
}

// Attribute is a single directive attribute. Val is empty for flags.
type Attribute struct {
	Key string
	Val string
}

// Attributes keeps directive attributes in source order.
type Attributes []Attribute

// Get returns the value of key and whether it is present.
func (a Attributes) Get(key string) (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Key == key {
			return a[i].Val, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set replaces the value of key or appends it.
func (a *Attributes) Set(key, val string) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Val = val
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Val: val})
}

// NewRoot returns an empty document root.
func NewRoot(children ...*Node) *Node {
	return &Node{Type: TypeRoot, Children: children}
}

// NewText returns a text leaf.
func NewText(value string) *Node {
	return &Node{Type: TypeText, Value: value}
}

// NewParagraph returns a paragraph holding children.
func NewParagraph(children ...*Node) *Node {
	return &Node{Type: TypeParagraph, Children: children}
}

// NewHeading returns a heading of the given depth.
func NewHeading(depth int, children ...*Node) *Node {
	return &Node{Type: TypeHeading, Depth: depth, Children: children}
}

// NewTextDirective returns an inline directive.
func NewTextDirective(name string, attrs Attributes, label ...*Node) *Node {
	return &Node{Type: TypeTextDirective, Name: name, Attributes: attrs, Children: label}
}

// NewContainerDirective returns a block directive wrapping children.
func NewContainerDirective(name string, attrs Attributes, children ...*Node) *Node {
	return &Node{Type: TypeContainerDirective, Name: name, Attributes: attrs, Children: children}
}

// IsDirective reports whether n is any kind of directive.
func (n *Node) IsDirective() bool {
	switch n.Type {
	case TypeTextDirective, TypeLeafDirective, TypeContainerDirective:
		return true
	}
	return false
}

// IsLeaf reports whether n never has children.
func (n *Node) IsLeaf() bool {
	switch n.Type {
	case TypeText, TypeInlineCode, TypeCode, TypeBreak, TypeThematicBreak, TypeHTML, TypeYAML, TypeImage:
		return true
	}
	return false
}

// Clone returns a deep copy of n. The copy shares nothing with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Attributes != nil {
		c.Attributes = make(Attributes, len(n.Attributes))
		copy(c.Attributes, n.Attributes)
	}
	c.Label = cloneNodes(n.Label)
	c.Children = cloneNodes(n.Children)
	return &c
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, child := range nodes {
		out[i] = child.Clone()
	}
	return out
}

// TextContent concatenates the values of all text-like descendants.
func (n *Node) TextContent() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Type {
		case TypeText, TypeInlineCode:
			sb.WriteString(n.Value)
		case TypeImage:
			sb.WriteString(n.Alt)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
