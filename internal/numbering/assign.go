package numbering

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
	"github.com/dgallion1/docnum/internal/render"
)

// seriesDelimiter separates a series name from the rest of an identifier.
const seriesDelimiter = "-"

// SeriesName returns the part of id before the first delimiter, or "" (the
// global series) when id has none.
func SeriesName(id string) string {
	prefix, _, ok := strings.Cut(id, seriesDelimiter)
	if !ok {
		return ""
	}
	return prefix
}

// Series is the ordinal counter shared by identifiers with the same prefix.
type Series struct {
	value  int
	resets Triggers
	format ConditionalFormat
}

// AddResetTrigger registers a structure that restarts the series.
func (s *Series) AddResetTrigger(t Trigger) { s.resets.Add(t) }

// Reset zeroes the series when n matches a reset trigger.
func (s *Series) Reset(n *doctree.Node, parents []*doctree.Node) bool {
	if !s.resets.Matches(n, parents) {
		return false
	}
	s.value = 0
	return true
}

// Up increments by one and returns the new value.
func (s *Series) Up() int {
	s.value++
	return s.value
}

// Look returns the current value.
func (s *Series) Look() int { return s.value }

// Format exposes the series' conditional format templates.
func (s *Series) Format() *ConditionalFormat { return &s.format }

// FormattedUp increments the series and formats the new value. When no
// template applies the node is nil and text holds the plain number.
func (s *Series) FormattedUp(counters *CounterRegistry) (formatted *doctree.Node, text string) {
	v := s.Up()
	if n := s.format.Get(v, counters); n != nil {
		return n, ""
	}
	return nil, strconv.Itoa(v)
}

// AssignRegistry numbers identifiers per series and records the formatted
// value of each identifier.
type AssignRegistry struct {
	series   map[string]*Series
	resolved map[string]string
	resets   Triggers
}

// NewAssignRegistry returns an empty registry.
func NewAssignRegistry() *AssignRegistry {
	return &AssignRegistry{
		series:   make(map[string]*Series),
		resolved: make(map[string]string),
	}
}

// Series returns the series called name, creating it with the pending reset
// triggers when needed.
func (a *AssignRegistry) Series(name string) *Series {
	s, ok := a.series[name]
	if !ok {
		s = &Series{}
		for _, t := range a.resets {
			s.AddResetTrigger(t)
		}
		a.series[name] = s
	}
	return s
}

// Define advances the series of id and stores the formatted value for id,
// overwriting any earlier value. Counter references in the chosen template
// are resolved against the current counter values.
func (a *AssignRegistry) Define(id string, counters *CounterRegistry) string {
	formatted, text := a.Series(SeriesName(id)).FormattedUp(counters)
	if formatted != nil {
		text = formatLook(formatted, counters)
	}
	a.resolved[id] = text
	return text
}

// Look returns the text assigned to id.
func (a *AssignRegistry) Look(id string) (string, bool) {
	v, ok := a.resolved[id]
	return v, ok
}

// AddResetTrigger records t for series created from now on.
func (a *AssignRegistry) AddResetTrigger(t Trigger) {
	a.resets.Add(t)
}

// DeleteResetTrigger removes t from the pending triggers and from every
// existing series.
func (a *AssignRegistry) DeleteResetTrigger(t Trigger) {
	a.resets.Delete(t)
	for _, s := range a.series {
		s.resets.Delete(t)
	}
}

// Reset applies n to the reset triggers of every series.
func (a *AssignRegistry) Reset(n *doctree.Node, parents []*doctree.Node) {
	for _, s := range a.series {
		s.Reset(n, parents)
	}
}

// SetFormat adds a format template for the series.
func (a *AssignRegistry) SetFormat(series string, label []*doctree.Node) {
	a.Series(series).format.Add(label)
}

// formatLook replaces counter references in n with their current values and
// serializes the result without its trailing line terminator.
func formatLook(n *doctree.Node, counters *CounterRegistry) string {
	doctree.Visit(n, isTextMarker, func(c *doctree.Cursor) doctree.Action {
		ref := reference(c.Node(), counterPrefix)
		if ref == "" {
			ref = reference(c.Node(), "")
		}
		if ref == "" {
			return doctree.Continue
		}
		if v, ok := counters.Look(ref); ok {
			c.Replace(valueText(v))
		} else {
			c.Replace(ReferenceError(ref))
		}
		return doctree.Skip
	})
	return strings.TrimSuffix(render.Markdown(n), "\n")
}
