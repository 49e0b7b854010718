package query

import (
	"fmt"
	"sort"

	"github.com/TheBitDrifter/mask"

	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/ecs"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/relation"
)

const (
	maxTargets = 2
	maxLinks   = 1
)

type targetState struct {
	base     mask.Mask
	exclude  mask.Mask
	optional []*coreReflect.Type

	archetypes []archetype.ID
	cursor     int
}

// Filter is the resolved, world-bound shape of a set of terms: per
// target, a base archetype mask and the incrementally maintained list of
// archetypes that satisfy it, plus (if the terms include one) the
// relation tables the link resolves to.
type Filter struct {
	world *ecs.World
	terms []Term
	link  *Term

	// linkSymmetric records whether link's relation type is registered
	// symmetric, so linkTables/nextLinked know a table may need to be
	// read in the reverse (To,From) orientation too.
	linkSymmetric bool

	targets map[int]*targetState
}

// New builds a Filter for terms against w, rejecting more than 2 targets
// or more than 1 relation term (the hard cap on query shape).
func New(w *ecs.World, terms []Term) (*Filter, error) {
	f := &Filter{world: w, terms: terms, targets: make(map[int]*targetState)}

	for _, t := range terms {
		switch t.Kind {
		case EntityKind, ComponentKind:
			f.ensureTarget(t.Target)
		case RelationKind:
			if f.link != nil {
				return nil, fmt.Errorf("query: at most %d relation term is allowed per query", maxLinks)
			}
			tCopy := t
			f.link = &tCopy
			f.ensureTarget(t.FromTarget)
			f.ensureTarget(t.ToTarget)
		}
	}
	if len(f.targets) > maxTargets {
		return nil, fmt.Errorf("query: at most %d targets are allowed per query, got %d", maxTargets, len(f.targets))
	}

	for _, t := range terms {
		if t.Kind != ComponentKind {
			continue
		}
		ts := f.targets[t.Target]
		elementType := w.ElementTypeFor(t.ComponentType)
		bit := w.Schema().RowIndexFor(elementType)
		switch {
		case t.Without:
			ts.exclude.Mark(bit)
		case t.Optional:
			ts.optional = append(ts.optional, t.ComponentType)
		default:
			ts.base.Mark(bit)
		}
	}

	if f.link != nil {
		flags := w.FlagsOf(f.link.RelationType)
		if !flags.Tree && f.link.TraversalKind != Random {
			return nil, fmt.Errorf("query: traversal %v is only valid on tree relations", f.link.TraversalKind)
		}
		f.linkSymmetric = flags.Symmetric
	}

	f.Refresh()
	return f, nil
}

func (f *Filter) ensureTarget(target int) {
	if _, ok := f.targets[target]; !ok {
		f.targets[target] = &targetState{}
	}
}

// Refresh extends every target's matched-archetype list with any
// archetype created since the last call, via the archetype graph's
// incremental Collect.
func (f *Filter) Refresh() {
	graph := f.world.Archetypes()
	for _, ts := range f.targets {
		matches, cursor := graph.Collect(ts.base, ts.cursor)
		ts.cursor = cursor
		for _, m := range matches {
			if graph.Mask(m).ContainsAny(ts.exclude) {
				continue
			}
			ts.archetypes = append(ts.archetypes, m)
		}
	}
}

// linkTables resolves the relation term's sparse tables, intersecting
// against the current per-target archetype sets. Relate canonicalizes a
// symmetric pair by entity index, not by which query target the From/To
// component lives on, so a table whose key is oriented (To,From) relative
// to this query's targets is still a candidate match for a symmetric
// relation; nextLinked resolves each row's actual orientation and swaps
// From/To when it matches in reverse. For a Down/Up traversal the
// matching keys are also ordered by depth so relation rows are visited
// parent-before-child (Down) or child-before-parent (Up).
func (f *Filter) linkTables() ([]*relation.Table, map[archetype.ID]bool, map[archetype.ID]bool) {
	if f.link == nil {
		return nil, nil, nil
	}
	dataType := f.world.DataTypeFor(f.link.RelationType)
	fromSet := archetypeSet(f.targets[f.link.FromTarget].archetypes)
	toSet := archetypeSet(f.targets[f.link.ToTarget].archetypes)

	var keys []relation.Key
	for _, key := range f.world.Relations().KeysForRelation(dataType) {
		forward := fromSet[key.From] && toSet[key.To]
		reverse := f.linkSymmetric && fromSet[key.To] && toSet[key.From]
		if forward || reverse {
			keys = append(keys, key)
		}
	}

	switch f.link.TraversalKind {
	case Down:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Depth < keys[j].Depth })
	case Up:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Depth > keys[j].Depth })
	}

	tables := make([]*relation.Table, 0, len(keys))
	for _, key := range keys {
		if tbl, ok := f.world.Relations().Lookup(key); ok {
			tables = append(tables, tbl)
		}
	}
	return tables, fromSet, toSet
}

func archetypeSet(ids []archetype.ID) map[archetype.ID]bool {
	set := make(map[archetype.ID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Link reports whether the filter has a relation term and, if so, its
// traversal kind.
func (f *Filter) Link() (*Term, bool) {
	return f.link, f.link != nil
}

