// Package archetype implements the archetype graph (C4) and archetype
// tables (C5): a memoized graph whose nodes are component-id sets and
// whose edges are single-component add/remove transitions, plus the
// per-archetype column storage built on github.com/TheBitDrifter/table.
package archetype

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"

	"github.com/cubos-go/ecscore/column"
)

type node struct {
	id           ID
	mask         mask.Mask
	components   []column.ElementType
	table        *Table
	edgeAdd      map[uint32]ID
	edgeRemove   map[uint32]ID
}

// Graph is the memoized archetype graph for one World: looking up
// withAdded/withRemoved with the same (archetype, component) pair always
// returns the same neighbor.
type Graph struct {
	schema     table.Schema
	entryIndex table.EntryIndex
	events     table.TableEvents

	nodes    []*node
	byMask   map[mask.Mask]ID
	history  []ID // creation order, for the Collect stream
}

// NewGraph creates a graph with its reserved empty archetype (ID 0)
// already materialized.
func NewGraph(schema table.Schema, entryIndex table.EntryIndex, events table.TableEvents) (*Graph, error) {
	g := &Graph{
		schema:     schema,
		entryIndex: entryIndex,
		events:     events,
		byMask:     make(map[mask.Mask]ID),
	}
	if _, err := g.newNode(mask.Mask{}, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// Empty returns the reserved empty archetype's id.
func (g *Graph) Empty() ID { return 0 }

func (g *Graph) newNode(m mask.Mask, components []column.ElementType) (ID, error) {
	id := ID(len(g.nodes))

	elementTypes := make([]table.ElementType, len(components))
	for i, c := range components {
		elementTypes[i] = c
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(g.schema).
		WithEntryIndex(g.entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(g.events).
		Build()
	if err != nil {
		return 0, fmt.Errorf("archetype: failed to build table: %w", err)
	}

	n := &node{
		id:         id,
		mask:       m,
		components: components,
		table:      &Table{id: id, components: components, tbl: tbl},
		edgeAdd:    make(map[uint32]ID),
		edgeRemove: make(map[uint32]ID),
	}
	g.nodes = append(g.nodes, n)
	g.byMask[m] = id
	g.history = append(g.history, id)
	return id, nil
}

// Table returns the column table owned by archetype id.
func (g *Graph) Table(id ID) *Table { return g.nodes[id].table }

// Components lists the component set of archetype id.
func (g *Graph) Components(id ID) []column.ElementType { return g.nodes[id].components }

// Contains reports whether archetype id carries every component in want.
func (g *Graph) Contains(id ID, want mask.Mask) bool {
	return g.nodes[id].mask.ContainsAll(want)
}

// Mask returns the component-set bitmask for archetype id.
func (g *Graph) Mask(id ID) mask.Mask { return g.nodes[id].mask }

// WithAdded returns the archetype containing from's components plus c,
// creating the node and the memoized edge if this is the first time the
// transition is requested. Adding a component already present is a no-op
// that returns from unchanged.
func (g *Graph) WithAdded(from ID, c column.ElementType) (ID, error) {
	bit := g.schema.RowIndexFor(c)
	fromNode := g.nodes[from]

	if fromNode.mask.Contains(bit) {
		return from, nil
	}
	if to, ok := fromNode.edgeAdd[bit]; ok {
		return to, nil
	}

	newMask := fromNode.mask
	newMask.Mark(bit)
	if existing, ok := g.byMask[newMask]; ok {
		fromNode.edgeAdd[bit] = existing
		g.nodes[existing].edgeRemove[bit] = from
		return existing, nil
	}

	newComponents := append(append([]column.ElementType{}, fromNode.components...), c)
	to, err := g.newNode(newMask, newComponents)
	if err != nil {
		return 0, err
	}
	fromNode.edgeAdd[bit] = to
	g.nodes[to].edgeRemove[bit] = from
	return to, nil
}

// WithRemoved is the inverse of WithAdded: it returns the archetype
// containing from's components minus c. Removing an absent component is
// fatal, mirroring spec's InvalidUse error kind for "removing an absent
// component".
func (g *Graph) WithRemoved(from ID, c column.ElementType) (ID, error) {
	bit := g.schema.RowIndexFor(c)
	fromNode := g.nodes[from]

	if !fromNode.mask.Contains(bit) {
		panic(bark.AddTrace(fmt.Errorf("archetype: cannot remove component not present on archetype %d", from)))
	}
	if to, ok := fromNode.edgeRemove[bit]; ok {
		return to, nil
	}

	newMask := fromNode.mask
	newMask.Unmark(bit)
	if existing, ok := g.byMask[newMask]; ok {
		fromNode.edgeRemove[bit] = existing
		g.nodes[existing].edgeAdd[bit] = from
		return existing, nil
	}

	newComponents := make([]column.ElementType, 0, len(fromNode.components)-1)
	for _, comp := range fromNode.components {
		if g.schema.RowIndexFor(comp) != bit {
			newComponents = append(newComponents, comp)
		}
	}
	to, err := g.newNode(newMask, newComponents)
	if err != nil {
		return 0, err
	}
	fromNode.edgeRemove[bit] = to
	g.nodes[to].edgeAdd[bit] = from
	return to, nil
}

// Collect returns every archetype whose mask is a superset of base's,
// discovered since the cursor previously returned by Collect (0 on first
// call), plus the new cursor to pass next time. This lets a query filter
// incrementally extend its matched-archetype set without rescanning nodes
// it has already seen.
func (g *Graph) Collect(base mask.Mask, since int) (matches []ID, cursor int) {
	for i := since; i < len(g.history); i++ {
		id := g.history[i]
		if g.nodes[id].mask.ContainsAll(base) {
			matches = append(matches, id)
		}
	}
	return matches, len(g.history)
}

// Len returns the number of archetypes materialized so far.
func (g *Graph) Len() int { return len(g.nodes) }
