package query

import (
	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/entity"
	"github.com/cubos-go/ecscore/relation"
)

// View is a Filter refined by zero or more pinned targets:
// pinning a target turns iteration over that slot into a membership test
// against the pinned entity.
type View struct {
	filter *Filter
	pins   map[int]entity.ID
}

// View returns the unpinned view over f.
func (f *Filter) View() *View {
	return &View{filter: f, pins: map[int]entity.ID{}}
}

// Pin returns a new view identical to v but with target additionally
// constrained to e.
func (v *View) Pin(target int, e entity.ID) *View {
	next := &View{filter: v.filter, pins: make(map[int]entity.ID, len(v.pins)+1)}
	for k, val := range v.pins {
		next.pins[k] = val
	}
	next.pins[target] = e
	return next
}

// Cursor returns a fresh iterator over v, after refreshing the underlying
// filter's archetype sets.
func (v *View) Cursor() *Cursor {
	v.filter.Refresh()
	c := &Cursor{view: v}
	if v.filter.link != nil {
		c.tables, c.fromSet, c.toSet = v.filter.linkTables()
	}
	return c
}

// Cursor iterates the matches of a View: for an archetype-only query, one
// row per matching archetype table, in archetype-then-row order; for a
// one-link query, one row per matching relation table, in table-then-row
// order, skipping empty tables and rows whose endpoints are no longer
// alive.
type Cursor struct {
	view *View

	archIdx int
	row     int

	tables   []*relation.Table
	tableIdx int
	linkRow  int

	// fromSet/toSet are the archetype sets FromTarget/ToTarget currently
	// match, used to resolve each row's orientation: a symmetric
	// relation's storage-canonical (From,To) pair may hold this query's
	// endpoints in either order.
	fromSet map[archetype.ID]bool
	toSet   map[archetype.ID]bool

	current map[int]entity.ID
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor) Next() bool {
	if c.view.filter.link != nil {
		return c.nextLinked()
	}
	return c.nextPlain()
}

func (c *Cursor) nextPlain() bool {
	f := c.view.filter
	ts := f.targets[0]
	w := f.world

	for c.archIdx < len(ts.archetypes) {
		archID := ts.archetypes[c.archIdx]
		tbl := w.Archetypes().Table(archID)
		length := tbl.Len()

		for c.row < length {
			row := c.row
			c.row++
			e, ok := w.EntityAt(tbl.Raw(), row)
			if !ok {
				continue
			}
			if pinned, isPinned := c.view.pins[0]; isPinned && pinned != e {
				continue
			}
			c.current = map[int]entity.ID{0: e}
			return true
		}
		c.archIdx++
		c.row = 0
	}
	return false
}

func (c *Cursor) nextLinked() bool {
	f := c.view.filter
	w := f.world
	link := f.link

	for c.tableIdx < len(c.tables) {
		rows := c.tables[c.tableIdx].All()

		for c.linkRow < len(rows) {
			row := rows[c.linkRow]
			c.linkRow++

			a := w.EntityManager().CurrentID(row.From)
			b := w.EntityManager().CurrentID(row.To)
			if !w.IsAlive(a) || !w.IsAlive(b) {
				continue
			}

			archA := archetype.ID(w.EntityManager().ArchetypeOf(a))
			archB := archetype.ID(w.EntityManager().ArchetypeOf(b))

			var fromEntity, toEntity entity.ID
			switch {
			case c.fromSet[archA] && c.toSet[archB]:
				fromEntity, toEntity = a, b
			case f.linkSymmetric && c.fromSet[archB] && c.toSet[archA]:
				fromEntity, toEntity = b, a
			default:
				continue
			}

			if pinned, ok := c.view.pins[link.FromTarget]; ok && pinned != fromEntity {
				continue
			}
			if pinned, ok := c.view.pins[link.ToTarget]; ok && pinned != toEntity {
				continue
			}

			c.current = map[int]entity.ID{link.FromTarget: fromEntity, link.ToTarget: toEntity}
			return true
		}
		c.tableIdx++
		c.linkRow = 0
	}
	return false
}

// Entity returns the current match's entity at target. Valid only after a
// call to Next returned true.
func (c *Cursor) Entity(target int) entity.ID {
	return c.current[target]
}
