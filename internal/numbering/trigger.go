package numbering

import "github.com/dgallion1/docnum/internal/doctree"

// Trigger names a structural node class. A node matches when it is a direct
// child of the document root with the same type and depth.
type Trigger struct {
	Type  doctree.NodeType
	Depth int
}

// TriggerOf returns the trigger a node would match.
func TriggerOf(n *doctree.Node) Trigger {
	return Trigger{Type: n.Type, Depth: n.Depth}
}

// Triggers is a multiset of triggers. Duplicates are kept.
type Triggers []Trigger

// Add appends t.
func (ts *Triggers) Add(t Trigger) {
	*ts = append(*ts, t)
}

// Delete removes every entry equal to t.
func (ts *Triggers) Delete(t Trigger) {
	kept := (*ts)[:0]
	for _, e := range *ts {
		if e != t {
			kept = append(kept, e)
		}
	}
	*ts = kept
}

// Matches reports whether n is a direct child of the root (parents holds
// only the root) and equals one of the triggers.
func (ts Triggers) Matches(n *doctree.Node, parents []*doctree.Node) bool {
	if len(parents) != 1 {
		return false
	}
	t := TriggerOf(n)
	for _, e := range ts {
		if e == t {
			return true
		}
	}
	return false
}
