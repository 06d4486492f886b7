package numbering

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/docnum/internal/doctree"
)

// DirectiveName is the directive name reserved for numbering markers.
const DirectiveName = "num"

const (
	counterPrefix = "%"
	assignPrefix  = "$"
)

// maxSafeInteger is the largest integer a reset value may take.
const maxSafeInteger = 1<<53 - 1

// marker is the typed view of a num directive's attributes.
type marker struct {
	id       string
	reset    string
	hasReset bool
	up       bool
	look     string
	series   string
	name     string

	// Container roles.
	counter   bool
	increment bool
	assign    bool
	format    bool
	delete    bool
}

func isMarker(n *doctree.Node) bool {
	return n.IsDirective() && n.Name == DirectiveName
}

func isTextMarker(n *doctree.Node) bool {
	return n.Type == doctree.TypeTextDirective && n.Name == DirectiveName
}

func markerOf(n *doctree.Node) marker {
	var m marker
	for _, a := range n.Attributes {
		switch a.Key {
		case "id":
			m.id = a.Val
		case "reset":
			m.reset, m.hasReset = a.Val, true
		case "up":
			m.up = true
		case "look":
			m.look = a.Val
		case "series":
			m.series = a.Val
		case "name":
			m.name = a.Val
		case "counter":
			m.counter = true
		case "increment":
			m.increment = true
		case "assign":
			m.assign = true
		case "format":
			m.format = true
		case "delete":
			m.delete = true
		}
	}
	return m
}

// hasLookFlag reports whether the look attribute is present at all.
func hasLookFlag(n *doctree.Node) bool {
	return n.Attributes.Has("look")
}

// reference returns the name carried by a marker whose only child is text.
// With a prefix, the text must start with it and the prefix is stripped.
func reference(n *doctree.Node, prefix string) string {
	if len(n.Children) != 1 || n.Children[0].Type != doctree.TypeText {
		return ""
	}
	ref := n.Children[0].Value
	if prefix == "" {
		return ref
	}
	if !strings.HasPrefix(ref, prefix) {
		return ""
	}
	return strings.TrimPrefix(ref, prefix)
}

// isCounterReference reports whether n names a counter in a format template.
func isCounterReference(n *doctree.Node) bool {
	return isTextMarker(n) && len(n.Children) == 1 && n.Children[0].Type == doctree.TypeText
}

// isPlaceholder reports whether n is a bare marker standing for the series
// value.
func isPlaceholder(n *doctree.Node) bool {
	return isTextMarker(n) && len(n.Children) == 0 && len(n.Attributes) == 0
}

// ReferenceError returns the text left in place of an unresolved reference.
func ReferenceError(name string) *doctree.Node {
	return doctree.NewText(`(ReferenceError: "` + name + `" is not defined)`)
}

func valueText(v int) *doctree.Node {
	return doctree.NewText(strconv.Itoa(v))
}

// safeInteger converts a reset attribute to a counter value. Input that is
// not a number yields 0, fractions truncate and the result is clamped to
// [0, 2^53-1].
func safeInteger(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		i, ierr := strconv.ParseInt(s, 0, 64)
		if ierr != nil {
			return 0
		}
		f = float64(i)
	}
	if math.IsNaN(f) {
		return 0
	}
	f = math.Trunc(f)
	switch {
	case f <= 0:
		return 0
	case f >= maxSafeInteger:
		return maxSafeInteger
	}
	return int(f)
}
