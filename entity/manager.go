// Package entity implements the sparse-set entity identifier manager
// described by the CORE's data model: entities are (index, generation)
// pairs, slots are recycled through a free-list, and a destroyed
// identifier's generation changes before its index is reused.
package entity

import "math"

// Null is the sentinel entity identifier: no live entity ever has this
// index. The zero value ID{} is not null: it is index 0, generation 0.
var Null = ID{Index: math.MaxUint32}

// ID identifies an ECS entity. It is comparable and hashable; equality
// requires both fields to match, so a recycled index never compares equal
// to the identifier that previously occupied it.
type ID struct {
	Index      uint32
	Generation uint32
}

// IsNull reports whether id is the null sentinel.
func (id ID) IsNull() bool { return id.Index == Null.Index }

type slot struct {
	generation uint32
	alive      bool
	archetype  uint32
}

// Manager allocates and recycles entity identifiers and tracks, per slot,
// the archetype the entity currently belongs to.
type Manager struct {
	slots    []slot
	freeList []uint32
}

// NewManager returns an empty entity manager.
func NewManager() *Manager {
	return &Manager{}
}

// Create allocates a new entity identifier, reusing a freed slot when one
// is available. The entity starts out assigned to archetype 0 (the
// reserved empty archetype).
func (m *Manager) Create() ID {
	if n := len(m.freeList); n > 0 {
		idx := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		s := &m.slots[idx]
		s.alive = true
		s.archetype = 0
		return ID{Index: idx, Generation: s.generation}
	}

	idx := uint32(len(m.slots))
	m.slots = append(m.slots, slot{generation: 0, alive: true, archetype: 0})
	return ID{Index: idx, Generation: 0}
}

// Destroy marks id's slot dead and bumps its generation so the identifier
// can never be observed alive again, then returns the index to the
// free-list for reuse. A no-op if id is not currently alive.
func (m *Manager) Destroy(id ID) {
	if !m.IsAlive(id) {
		return
	}
	s := &m.slots[id.Index]
	s.alive = false
	s.generation++
	m.freeList = append(m.freeList, id.Index)
}

// IsAlive reports whether id refers to a currently live entity.
func (m *Manager) IsAlive(id ID) bool {
	if id.IsNull() || int(id.Index) >= len(m.slots) {
		return false
	}
	s := m.slots[id.Index]
	return s.alive && s.generation == id.Generation
}

// ArchetypeOf returns the archetype id currently associated with id's slot.
// Callers must ensure id is alive; behavior for a dead slot is unspecified
// (it returns whatever archetype the slot last held).
func (m *Manager) ArchetypeOf(id ID) uint32 {
	return m.slots[id.Index].archetype
}

// SetArchetypeOf records the archetype id's slot now belongs to, following
// an archetype transition.
func (m *Manager) SetArchetypeOf(id ID, archetype uint32) {
	m.slots[id.Index].archetype = archetype
}

// Len returns the number of slots ever allocated (alive + recycled).
func (m *Manager) Len() int { return len(m.slots) }

// CurrentID returns the live identifier currently occupying index, for
// callers (query iteration) that discover an entity by its row position
// and need to recover the full (index, generation) pair. Behavior for an
// index with no live slot is unspecified.
func (m *Manager) CurrentID(index uint32) ID {
	return ID{Index: index, Generation: m.slots[index].generation}
}
