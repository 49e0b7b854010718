// Package relation implements sparse relation tables (C6): per-(relation
// type, from-archetype, to-archetype, depth) tables of ordered (from, to,
// value) rows, indexed by a hash map for O(1) pair lookup and threaded
// with doubly-linked per-from and per-to lists so that every relation
// touching a given index can be enumerated in O(degree).
package relation

const sentinel = -1

// Row is one relation record: the endpoint indices (not full entity ids —
// generation is checked by the caller, the way archetype tables only ever
// store row positions) plus the two link fields that thread it into its
// from-list and to-list.
type Row struct {
	From, To           uint32
	fromPrev, fromNext int
	toPrev, toNext     int
}

type list struct {
	head, tail int
}

// Table stores the rows for one (relation type, from-archetype,
// to-archetype, depth) key. Values are stored type-erased as any,
// parallel to rows by index.
type Table struct {
	rows   []Row
	values []any

	byPair map[[2]uint32]int
	from   map[uint32]list
	to     map[uint32]list
}

// NewTable returns an empty relation table.
func NewTable() *Table {
	return &Table{
		byPair: make(map[[2]uint32]int),
		from:   make(map[uint32]list),
		to:     make(map[uint32]list),
	}
}

// Len returns the number of rows currently stored.
func (t *Table) Len() int { return len(t.rows) }

// Contains reports whether a row exists for (from, to). Callers are
// responsible for normalizing symmetric pairs before calling.
func (t *Table) Contains(from, to uint32) bool {
	_, ok := t.byPair[[2]uint32{from, to}]
	return ok
}

// Get returns the value stored for (from, to), if any.
func (t *Table) Get(from, to uint32) (any, bool) {
	idx, ok := t.byPair[[2]uint32{from, to}]
	if !ok {
		return nil, false
	}
	return t.values[idx], true
}

// Insert stores value for (from, to), overwriting in place if the pair
// already exists (idempotent-with-overwrite) or
// appending a new row linked at the tail of both lists otherwise.
func (t *Table) Insert(from, to uint32, value any) {
	key := [2]uint32{from, to}
	if idx, ok := t.byPair[key]; ok {
		t.values[idx] = value
		return
	}

	idx := len(t.rows)
	row := Row{From: from, To: to, fromPrev: sentinel, fromNext: sentinel, toPrev: sentinel, toNext: sentinel}

	if fl, ok := t.from[from]; !ok {
		t.from[from] = list{head: idx, tail: idx}
	} else {
		row.fromPrev = fl.tail
		t.rows[fl.tail].fromNext = idx
		fl.tail = idx
		t.from[from] = fl
	}

	if tl, ok := t.to[to]; !ok {
		t.to[to] = list{head: idx, tail: idx}
	} else {
		row.toPrev = tl.tail
		t.rows[tl.tail].toNext = idx
		tl.tail = idx
		t.to[to] = tl
	}

	t.rows = append(t.rows, row)
	t.values = append(t.values, value)
	t.byPair[key] = idx
}

// Erase removes the row for (from, to), unlinking it from both lists and
// swap-removing it from the backing slices. A no-op if the pair is absent.
func (t *Table) Erase(from, to uint32) {
	key := [2]uint32{from, to}
	idx, ok := t.byPair[key]
	if !ok {
		return
	}
	t.unlink(idx)
	t.swapRemove(idx)
	delete(t.byPair, key)
}

// EraseFrom removes every row whose From equals from.
func (t *Table) EraseFrom(from uint32) {
	for {
		fl, ok := t.from[from]
		if !ok || len(t.rows) == 0 {
			return
		}
		row := t.rows[fl.head]
		t.Erase(row.From, row.To)
	}
}

// EraseTo removes every row whose To equals to.
func (t *Table) EraseTo(to uint32) {
	for {
		tl, ok := t.to[to]
		if !ok || len(t.rows) == 0 {
			return
		}
		row := t.rows[tl.head]
		t.Erase(row.From, row.To)
	}
}

// ViewFrom returns every row whose From equals from, in insertion order.
func (t *Table) ViewFrom(from uint32) []Row {
	fl, ok := t.from[from]
	if !ok {
		return nil
	}
	var out []Row
	for i := fl.head; i != sentinel; {
		r := t.rows[i]
		out = append(out, r)
		i = r.fromNext
	}
	return out
}

// ViewTo returns every row whose To equals to, in insertion order.
func (t *Table) ViewTo(to uint32) []Row {
	tl, ok := t.to[to]
	if !ok {
		return nil
	}
	var out []Row
	for i := tl.head; i != sentinel; {
		r := t.rows[i]
		out = append(out, r)
		i = r.toNext
	}
	return out
}

// All returns every row in storage order, for full-table iteration.
func (t *Table) All() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// ValueAt returns the value stored for the (from, to) endpoints of a Row
// returned by All/ViewFrom/ViewTo, which carry endpoints but not values.
func (t *Table) ValueAt(from, to uint32) (any, bool) {
	return t.Get(from, to)
}

func (t *Table) unlink(idx int) {
	row := t.rows[idx]

	if row.fromPrev == sentinel {
		fl := t.from[row.From]
		fl.head = row.fromNext
		if fl.head == sentinel {
			delete(t.from, row.From)
		} else {
			t.from[row.From] = fl
		}
	} else {
		t.rows[row.fromPrev].fromNext = row.fromNext
	}
	if row.fromNext != sentinel {
		t.rows[row.fromNext].fromPrev = row.fromPrev
	} else if row.fromPrev != sentinel {
		fl := t.from[row.From]
		fl.tail = row.fromPrev
		t.from[row.From] = fl
	}

	if row.toPrev == sentinel {
		tl := t.to[row.To]
		tl.head = row.toNext
		if tl.head == sentinel {
			delete(t.to, row.To)
		} else {
			t.to[row.To] = tl
		}
	} else {
		t.rows[row.toPrev].toNext = row.toNext
	}
	if row.toNext != sentinel {
		t.rows[row.toNext].toPrev = row.toPrev
	} else if row.toPrev != sentinel {
		tl := t.to[row.To]
		tl.tail = row.toPrev
		t.to[row.To] = tl
	}
}

// swapRemove pops the last row into idx's slot and repairs every link and
// map entry that referenced the old last index, the same arena+index
// discipline archetype tables use for entity rows.
func (t *Table) swapRemove(idx int) {
	last := len(t.rows) - 1
	if idx == last {
		t.rows = t.rows[:last]
		t.values = t.values[:last]
		return
	}

	moved := t.rows[last]
	t.rows[idx] = moved
	t.values[idx] = t.values[last]
	t.rows = t.rows[:last]
	t.values = t.values[:last]

	t.byPair[[2]uint32{moved.From, moved.To}] = idx

	if moved.fromPrev == sentinel {
		fl := t.from[moved.From]
		fl.head = idx
		t.from[moved.From] = fl
	} else {
		t.rows[moved.fromPrev].fromNext = idx
	}
	if moved.fromNext == sentinel {
		fl := t.from[moved.From]
		fl.tail = idx
		t.from[moved.From] = fl
	} else {
		t.rows[moved.fromNext].fromPrev = idx
	}

	if moved.toPrev == sentinel {
		tl := t.to[moved.To]
		tl.head = idx
		t.to[moved.To] = tl
	} else {
		t.rows[moved.toPrev].toNext = idx
	}
	if moved.toNext == sentinel {
		tl := t.to[moved.To]
		tl.tail = idx
		t.to[moved.To] = tl
	} else {
		t.rows[moved.toNext].toPrev = idx
	}
}
