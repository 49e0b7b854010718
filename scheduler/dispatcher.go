// Package scheduler implements the dependency-ordered dispatcher (C14):
// a tag graph, per-system before/after edges (explicit or derived from
// access conflicts), and a topological sort into a compiled linear
// order. Grounded on
// fdadba29_Salamander5876-AnimoEngine's SystemManager.AddSystem, whose
// sort-by-priority is replaced here by a real topological sort with
// conflict serialization.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/system"
)

// Tag is a scheduling label attached to systems and used to order groups
// of them, a plain value type — Go has no macro system, so a named
// string is the idiomatic stand-in for a compile-time tag declaration.
type Tag string

// NewTag returns the tag named name.
func NewTag(name string) Tag { return Tag(name) }

// Condition is a no-argument predicate gating a system's execution.
type Condition func() bool

type entry struct {
	def       *system.Definition
	tags      map[Tag]bool
	before    []Tag
	after     []Tag
	condition Condition
	access    *system.Access
	index     int
}

// Option configures a system registration.
type Option func(*entry)

// WithTags attaches tags to the system.
func WithTags(tags ...Tag) Option {
	return func(e *entry) {
		for _, t := range tags {
			e.tags[t] = true
		}
	}
}

// Before requires the system to run before every system carrying any of
// the given tags.
func Before(tags ...Tag) Option {
	return func(e *entry) { e.before = append(e.before, tags...) }
}

// After requires the system to run after every system carrying any of
// the given tags.
func After(tags ...Tag) Option {
	return func(e *entry) { e.after = append(e.after, tags...) }
}

// When attaches a condition gating the system's execution at run time.
func When(cond Condition) Option {
	return func(e *entry) { e.condition = cond }
}

// Dispatcher is one of the two independent instances an application
// runs (startup, main): a set of systems with footprints, tags and
// conditions, compiled on demand into a linear run order.
type Dispatcher struct {
	mu        sync.RWMutex
	entries   []*entry
	tagBefore map[Tag][]Tag

	compiled []*entry
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{tagBefore: make(map[Tag][]Tag)}
}

// AddSystem registers def, invalidating any previous compilation.
func (d *Dispatcher) AddSystem(def *system.Definition, opts ...Option) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e := &entry{def: def, tags: make(map[Tag]bool), access: def.Access(), index: len(d.entries)}
	for _, opt := range opts {
		opt(e)
	}
	d.entries = append(d.entries, e)
	d.compiled = nil
}

// OrderTags declares that every system tagged before must run before
// every system tagged after.
func (d *Dispatcher) OrderTags(before, after Tag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tagBefore[before] = append(d.tagBefore[before], after)
	d.compiled = nil
}

// Compile builds the linear run order. Missing tag references, cycles in
// the tag graph and impossible orderings are fatal here rather than at
// run time.
func (d *Dispatcher) Compile() {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.entries)
	declared := make(map[Tag]bool)
	for _, e := range d.entries {
		for t := range e.tags {
			declared[t] = true
		}
	}
	checkDeclared := func(t Tag) {
		if !declared[t] {
			panic(bark.AddTrace(fmt.Errorf("scheduler: tag %q is referenced but never attached to a system", t)))
		}
	}
	for before, afters := range d.tagBefore {
		checkDeclared(before)
		for _, after := range afters {
			checkDeclared(after)
		}
	}
	for _, e := range d.entries {
		for _, t := range e.before {
			checkDeclared(t)
		}
		for _, t := range e.after {
			checkDeclared(t)
		}
	}

	edges := make([][]bool, n)
	for i := range edges {
		edges[i] = make([]bool, n)
	}
	addEdge := func(i, j int) {
		if i != j {
			edges[i][j] = true
		}
	}

	tagMembers := func(t Tag) []int {
		var members []int
		for i, e := range d.entries {
			if e.tags[t] {
				members = append(members, i)
			}
		}
		return members
	}

	for before, afters := range d.tagBefore {
		for _, after := range afters {
			for _, i := range tagMembers(before) {
				for _, j := range tagMembers(after) {
					addEdge(i, j)
				}
			}
		}
	}
	for i, e := range d.entries {
		for _, t := range e.before {
			for _, j := range tagMembers(t) {
				addEdge(i, j)
			}
		}
		for _, t := range e.after {
			for _, j := range tagMembers(t) {
				addEdge(j, i)
			}
		}
	}

	reachable := transitiveClosure(edges, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if reachable[i][j] || reachable[j][i] {
				continue
			}
			if d.entries[i].access.ConflictsWith(d.entries[j].access) {
				addEdge(i, j)
			}
		}
	}

	order, err := topoSort(edges, n)
	if err != nil {
		panic(bark.AddTrace(err))
	}

	compiled := make([]*entry, n)
	for pos, idx := range order {
		compiled[pos] = d.entries[idx]
	}
	d.compiled = compiled
}

func transitiveClosure(edges [][]bool, n int) [][]bool {
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = append([]bool{}, edges[i]...)
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}
	return reach
}

// topoSort runs Kahn's algorithm, breaking ties among ready nodes by
// ascending insertion index so that systems with no declared ordering
// keep registration order, matching SystemManager's stable priority sort.
func topoSort(edges [][]bool, n int) ([]int, error) {
	indegree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if edges[i][j] {
				indegree[j]++
			}
		}
	}

	var order []int
	done := make([]bool, n)
	for len(order) < n {
		ready := -1
		for i := 0; i < n; i++ {
			if done[i] || indegree[i] != 0 {
				continue
			}
			if ready == -1 || i < ready {
				ready = i
			}
		}
		if ready == -1 {
			return nil, fmt.Errorf("scheduler: the system/tag ordering constraints contain a cycle")
		}
		order = append(order, ready)
		done[ready] = true
		for j := 0; j < n; j++ {
			if edges[ready][j] {
				indegree[j]--
			}
		}
	}
	return order, nil
}

// Run executes the compiled order sequentially, evaluating each system's
// condition immediately before it. Compile must have
// succeeded first.
func (d *Dispatcher) Run(ctx *system.Context) {
	d.mu.RLock()
	compiled := make([]*entry, len(d.compiled))
	copy(compiled, d.compiled)
	d.mu.RUnlock()

	for _, e := range compiled {
		if e.condition != nil && !e.condition() {
			continue
		}
		e.def.Invoke(ctx)
	}
}

// Names returns the compiled order's system names, for tests and
// diagnostics.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.compiled))
	for i, e := range d.compiled {
		names[i] = e.def.Name
	}
	return names
}
