package numbering

import (
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
)

type formatEntry struct {
	template *doctree.Node
	required []string
}

// ConditionalFormat holds format templates for a series. The most recently
// added template whose required counters are all positive is used.
type ConditionalFormat struct {
	entries []formatEntry
}

// Add registers a template built from a marker label. Markers in the label
// that name a counter become requirements for the template.
func (f *ConditionalFormat) Add(label []*doctree.Node) {
	children := make([]*doctree.Node, len(label))
	for i, n := range label {
		children[i] = n.Clone()
	}
	tmpl := doctree.NewParagraph(children...)

	var required []string
	doctree.Visit(tmpl, isCounterReference, func(c *doctree.Cursor) doctree.Action {
		required = append(required, strings.TrimPrefix(c.Node().Children[0].Value, counterPrefix))
		return doctree.Skip
	})
	f.entries = append([]formatEntry{{template: tmpl, required: required}}, f.entries...)
}

// Len returns the number of registered templates.
func (f *ConditionalFormat) Len() int { return len(f.entries) }

// Get returns a copy of the first applicable template with every bare
// placeholder replaced by value, or nil when no template applies.
func (f *ConditionalFormat) Get(value int, counters *CounterRegistry) *doctree.Node {
	for _, e := range f.entries {
		if !satisfied(e.required, counters) {
			continue
		}
		out := e.template.Clone()
		doctree.Visit(out, isPlaceholder, func(c *doctree.Cursor) doctree.Action {
			c.Replace(valueText(value))
			return doctree.Continue
		})
		return out
	}
	return nil
}

func satisfied(required []string, counters *CounterRegistry) bool {
	for _, name := range required {
		if v, ok := counters.Look(name); !ok || v <= 0 {
			return false
		}
	}
	return true
}
