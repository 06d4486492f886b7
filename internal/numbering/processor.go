// Package numbering replaces num markers in a document tree with counter
// values and assigned numbers.
package numbering

import (
	"log/slog"

	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/dgallion1/docnum/internal/parser"
)

// Options configures a Processor.
type Options struct {
	// Templates are markdown fragments whose num containers are registered
	// before every document. The built-in template is used when empty.
	Templates []string
	// KeepDefaultTemplate registers the built-in template ahead of Templates.
	KeepDefaultTemplate bool
	// GroupField is the front matter field selecting the format group.
	GroupField string
}

// Stats summarizes one Process call.
type Stats struct {
	Definitions      int    `json:"definitions"`
	Substitutions    int    `json:"substitutions"`
	AssignReferences int    `json:"assign_references"`
	Unresolved       int    `json:"unresolved"`
	Group            string `json:"group,omitempty"`
}

// Processor numbers documents. It holds only parsed templates, so one
// Processor may serve concurrent Process calls.
type Processor struct {
	templates  []*doctree.Node
	groupField string
	log        *slog.Logger
}

// New parses the configured templates. A template without num containers
// is kept but registers nothing.
func New(opts Options, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sources := opts.Templates
	if len(sources) == 0 {
		sources = []string{DefaultTemplate}
	} else if opts.KeepDefaultTemplate {
		sources = append([]string{DefaultTemplate}, sources...)
	}

	p := &Processor{groupField: opts.GroupField, log: log}
	if p.groupField == "" {
		p.groupField = DefaultGroupField
	}
	for i, src := range sources {
		tree := parser.ParseMarkdown([]byte(src))
		if len(doctree.Find(tree, isContainerMarker)) == 0 {
			log.Debug("template has no containers", "template", i)
		}
		p.templates = append(p.templates, tree)
	}
	return p
}

// Process rewrites root in place. Registries are created per call.
func (p *Processor) Process(root *doctree.Node) Stats {
	r := &run{
		counters: NewCounterRegistry(),
		assigns:  NewAssignRegistry(),
		log:      p.log,
	}

	group, err := extractGroup(root, p.groupField)
	if err != nil {
		p.log.Debug("front matter not parsed", "error", err)
	}
	r.group = group
	r.stats.Group = group

	for _, t := range p.templates {
		r.register(t.Clone())
	}
	r.register(root)
	r.resolve(root)
	r.resolveAssigns(root)
	return r.stats
}

// run is the state of one Process call.
type run struct {
	counters *CounterRegistry
	assigns  *AssignRegistry
	group    string
	stats    Stats
	log      *slog.Logger
}

func isContainerMarker(n *doctree.Node) bool {
	return n.Type == doctree.TypeContainerDirective && n.Name == DirectiveName
}

// register consumes num containers: counter containers first, then assign
// containers. Each recognized container is removed from the tree.
func (r *run) register(tree *doctree.Node) {
	doctree.Visit(tree, isContainerMarker, func(c *doctree.Cursor) doctree.Action {
		n := c.Node()
		m := markerOf(n)
		switch {
		case m.counter && m.hasReset:
			r.resetCounters(n)
			c.Delete()
		case m.counter && m.increment:
			if errs := r.incrementCounters(n); len(errs) > 0 {
				c.Replace(errs...)
			} else {
				c.Delete()
			}
		default:
			return doctree.Continue
		}
		return doctree.Skip
	})

	doctree.Visit(tree, isContainerMarker, func(c *doctree.Cursor) doctree.Action {
		n := c.Node()
		m := markerOf(n)
		switch {
		case m.assign && m.hasReset:
			r.resetAssigns(n, m.delete)
		case m.assign && m.format:
			r.formats(n, m.name)
		default:
			return doctree.Continue
		}
		c.Delete()
		return doctree.Skip
	})
}

// resetCounters defines the counters named in a reset container. Markers in
// headings reset at that heading; markers in paragraphs only define.
func (r *run) resetCounters(container *doctree.Node) {
	for _, ch := range container.Children {
		for _, d := range doctree.Find(ch, isTextMarker) {
			id := markerOf(d).id
			if id == "" {
				continue
			}
			switch ch.Type {
			case doctree.TypeHeading:
				r.counters.Define(id, TriggerOf(ch))
			case doctree.TypeParagraph:
				r.counters.Define(id)
			}
		}
	}
}

// incrementCounters registers heading increment triggers and returns error
// paragraphs for counters that are not defined.
func (r *run) incrementCounters(container *doctree.Node) []*doctree.Node {
	var errs []*doctree.Node
	for _, ch := range container.Children {
		if ch.Type != doctree.TypeHeading {
			continue
		}
		for _, d := range doctree.Find(ch, isTextMarker) {
			id := markerOf(d).id
			if id == "" {
				continue
			}
			if !r.counters.AddIncrementTrigger(id, TriggerOf(ch)) {
				r.log.Debug("increment of undefined counter", "counter", id)
				r.stats.Unresolved++
				errs = append(errs, doctree.NewParagraph(ReferenceError(id)))
			}
		}
	}
	return errs
}

func (r *run) resetAssigns(container *doctree.Node, remove bool) {
	for _, ch := range container.Children {
		if ch.Type != doctree.TypeHeading || len(doctree.Find(ch, isTextMarker)) == 0 {
			continue
		}
		if remove {
			r.assigns.DeleteResetTrigger(TriggerOf(ch))
			continue
		}
		r.assigns.AddResetTrigger(TriggerOf(ch))
	}
}

// formats registers series templates. A named block applies only when its
// name is the active group.
func (r *run) formats(container *doctree.Node, name string) {
	if name != "" && name != r.group {
		r.log.Debug("format group skipped", "group", name, "active", r.group)
		return
	}
	for _, ch := range container.Children {
		if ch.Type != doctree.TypeParagraph {
			continue
		}
		for _, d := range ch.Children {
			if !isTextMarker(d) {
				continue
			}
			series, ok := d.Attributes.Get("series")
			if !ok {
				continue
			}
			r.assigns.SetFormat(series, d.Children)
		}
	}
}

// resolve is the main pass. Structural triggers fire at every node before
// the node itself is handled. Counter references resolve immediately;
// references that are not counters are left for resolveAssigns.
func (r *run) resolve(root *doctree.Node) {
	doctree.Visit(root, nil, func(c *doctree.Cursor) doctree.Action {
		n := c.Node()
		r.counters.Trigger(n, c.Parents())
		r.assigns.Reset(n, c.Parents())
		if !isTextMarker(n) {
			return doctree.Continue
		}

		m := markerOf(n)
		switch {
		case m.id != "" && m.hasReset:
			r.counters.Define(m.id)
			r.counters.Set(m.id, safeInteger(m.reset))
			r.stats.Definitions++
			c.Delete()
		case m.id != "":
			c.Replace(doctree.NewText(r.assigns.Define(m.id, r.counters)))
			r.stats.Definitions++
		case m.look != "":
			r.lookCounter(c, m.look)
		default:
			ref := reference(n, counterPrefix)
			forced := ref != ""
			if !forced {
				ref = reference(n, "")
			}
			switch {
			case ref == "":
			case m.up:
				r.upCounter(c, ref)
			case forced || hasLookFlag(n):
				r.lookCounter(c, ref)
			default:
				if v, ok := r.counters.Look(ref); ok {
					c.Replace(valueText(v))
					r.stats.Substitutions++
				}
			}
		}
		return doctree.Skip
	})
}

func (r *run) upCounter(c *doctree.Cursor, name string) {
	v, ok := r.counters.Up(name)
	if !ok {
		r.unresolved(c, name)
		return
	}
	c.Replace(valueText(v))
	r.stats.Substitutions++
}

func (r *run) lookCounter(c *doctree.Cursor, name string) {
	v, ok := r.counters.Look(name)
	if !ok {
		r.unresolved(c, name)
		return
	}
	c.Replace(valueText(v))
	r.stats.Substitutions++
}

// resolveAssigns is the post pass: remaining references resolve against
// assigned identifiers, which are all known by now.
func (r *run) resolveAssigns(root *doctree.Node) {
	doctree.Visit(root, isTextMarker, func(c *doctree.Cursor) doctree.Action {
		n := c.Node()
		ref := reference(n, assignPrefix)
		if ref == "" {
			ref = reference(n, "")
		}
		if ref == "" {
			return doctree.Skip
		}
		if v, ok := r.assigns.Look(ref); ok {
			c.Replace(doctree.NewText(v))
			r.stats.AssignReferences++
			return doctree.Skip
		}
		r.unresolved(c, ref)
		return doctree.Skip
	})
}

func (r *run) unresolved(c *doctree.Cursor, name string) {
	r.log.Debug("reference not defined", "name", name)
	r.stats.Unresolved++
	c.Replace(ReferenceError(name))
}
