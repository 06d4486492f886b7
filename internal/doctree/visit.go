package doctree

// Action tells Visit how to proceed after a node has been visited.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// Skip leaves the node's children unvisited.
	Skip
	// Exit stops the traversal.
	Exit
)

// Test selects the nodes handed to a Visitor. A nil Test selects every node.
type Test func(n *Node) bool

// Visitor is called for every node selected by a Test.
type Visitor func(c *Cursor) Action

// Cursor describes the node being visited and allows the visitor to edit
// the node's position in its parent.
type Cursor struct {
	node    *Node
	parents []*Node
	index   int

	replaced int // number of nodes written in place of node, -1 if untouched
}

// Node returns the current node.
func (c *Cursor) Node() *Node { return c.node }

// Parents returns the ancestors of the current node, root first.
func (c *Cursor) Parents() []*Node { return c.parents }

// Parent returns the direct parent, or nil for the root.
func (c *Cursor) Parent() *Node {
	if len(c.parents) == 0 {
		return nil
	}
	return c.parents[len(c.parents)-1]
}

// Index returns the position of the current node in its parent's children.
func (c *Cursor) Index() int { return c.index }

// Replace substitutes nodes for the current node. The substitutes are not
// visited. Replacing the root is a no-op.
func (c *Cursor) Replace(nodes ...*Node) {
	parent := c.Parent()
	if parent == nil || c.replaced >= 0 {
		return
	}
	rest := append([]*Node{}, parent.Children[c.index+1:]...)
	parent.Children = append(append(parent.Children[:c.index], nodes...), rest...)
	c.replaced = len(nodes)
}

// Delete removes the current node from its parent.
func (c *Cursor) Delete() { c.Replace() }

// Is reports whether n matches test.
func (t Test) Is(n *Node) bool {
	return t == nil || t(n)
}

// Visit walks the tree rooted at root depth-first in document order,
// calling visit for every node selected by test.
func Visit(root *Node, test Test, visit Visitor) {
	if root == nil {
		return
	}
	walk(&Cursor{node: root, index: -1, replaced: -1}, test, visit)
}

// walk reports whether the traversal must stop.
func walk(c *Cursor, test Test, visit Visitor) bool {
	n := c.node
	if test.Is(n) {
		switch visit(c) {
		case Exit:
			return true
		case Skip:
			return false
		}
	}
	if c.replaced >= 0 {
		return false
	}

	chain := make([]*Node, len(c.parents), len(c.parents)+1)
	copy(chain, c.parents)
	chain = append(chain, n)

	for i := 0; i < len(n.Children); {
		cc := &Cursor{node: n.Children[i], parents: chain, index: i, replaced: -1}
		if walk(cc, test, visit) {
			return true
		}
		if cc.replaced >= 0 {
			i += cc.replaced
		} else {
			i++
		}
	}
	return false
}

// Find returns every node under root matched by test, in document order.
func Find(root *Node, test Test) []*Node {
	var out []*Node
	Visit(root, test, func(c *Cursor) Action {
		out = append(out, c.Node())
		return Continue
	})
	return out
}
