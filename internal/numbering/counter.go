package numbering

import "github.com/dgallion1/docnum/internal/doctree"

// ScopedCounter is a named integer counter that resets and increments on
// structural triggers. Its value never drops below zero.
type ScopedCounter struct {
	value      int
	resets     Triggers
	increments Triggers
}

// AddResetTrigger registers a structure that zeroes the counter.
func (c *ScopedCounter) AddResetTrigger(t Trigger) { c.resets.Add(t) }

// AddIncrementTrigger registers a structure that steps the counter.
func (c *ScopedCounter) AddIncrementTrigger(t Trigger) { c.increments.Add(t) }

// Set overwrites the value. Negative values clamp to zero.
func (c *ScopedCounter) Set(v int) {
	c.value = max(v, 0)
}

// Reset zeroes the counter when n matches a reset trigger.
func (c *ScopedCounter) Reset(n *doctree.Node, parents []*doctree.Node) bool {
	if !c.resets.Matches(n, parents) {
		return false
	}
	c.value = 0
	return true
}

// Increment steps the counter when n matches an increment trigger.
func (c *ScopedCounter) Increment(n *doctree.Node, parents []*doctree.Node) bool {
	if !c.increments.Matches(n, parents) {
		return false
	}
	c.Up()
	return true
}

// Up increments by one and returns the new value.
func (c *ScopedCounter) Up() int {
	c.value++
	return c.value
}

// Look returns the current value.
func (c *ScopedCounter) Look() int { return c.value }

// CounterRegistry maps counter names to counters. Accessors report unknown
// names with a false flag instead of failing.
type CounterRegistry struct {
	counters map[string]*ScopedCounter
	names    []string // definition order
}

// NewCounterRegistry returns an empty registry.
func NewCounterRegistry() *CounterRegistry {
	return &CounterRegistry{counters: make(map[string]*ScopedCounter)}
}

// Define creates name if it does not exist and registers triggers as reset
// triggers. Repeated calls accumulate triggers.
func (r *CounterRegistry) Define(name string, triggers ...Trigger) {
	c, ok := r.counters[name]
	if !ok {
		c = &ScopedCounter{}
		r.counters[name] = c
		r.names = append(r.names, name)
	}
	for _, t := range triggers {
		c.AddResetTrigger(t)
	}
}

// Defined reports whether name has been defined.
func (r *CounterRegistry) Defined(name string) bool {
	_, ok := r.counters[name]
	return ok
}

// AddIncrementTrigger fails when name is undefined.
func (r *CounterRegistry) AddIncrementTrigger(name string, t Trigger) bool {
	c, ok := r.counters[name]
	if !ok {
		return false
	}
	c.AddIncrementTrigger(t)
	return true
}

// Set is a no-op for undefined names.
func (r *CounterRegistry) Set(name string, v int) {
	if c, ok := r.counters[name]; ok {
		c.Set(v)
	}
}

// Up increments name and returns its new value.
func (r *CounterRegistry) Up(name string) (int, bool) {
	c, ok := r.counters[name]
	if !ok {
		return 0, false
	}
	return c.Up(), true
}

// Look returns the current value of name.
func (r *CounterRegistry) Look(name string) (int, bool) {
	c, ok := r.counters[name]
	if !ok {
		return 0, false
	}
	return c.Look(), true
}

// Trigger evaluates every counter's reset triggers and then every counter's
// increment triggers against n.
func (r *CounterRegistry) Trigger(n *doctree.Node, parents []*doctree.Node) {
	for _, name := range r.names {
		r.counters[name].Reset(n, parents)
	}
	for _, name := range r.names {
		r.counters[name].Increment(n, parents)
	}
}
