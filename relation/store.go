package relation

import (
	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/types"
)

// Key identifies one sparse relation table: a relation type together with
// the archetypes of its endpoints and a traversal depth. Tree relations
// key rows by the child's depth (root's children are depth 1, computed by
// walking the parent's own outgoing edge at relate time) so Down/Up query
// traversal can visit tables in depth order; non-tree relations always
// use depth 0. Re-parenting an entity that already has descendants does
// not retroactively update their stored depth.
type Key struct {
	Relation types.DataTypeId
	From     archetype.ID
	To       archetype.ID
	Depth    int
}

// Store owns every relation table for a World, created lazily on first
// relate into a given Key and never destroyed during the run.
type Store struct {
	tables map[Key]*Table
}

// NewStore returns an empty relation store.
func NewStore() *Store {
	return &Store{tables: make(map[Key]*Table)}
}

// Table returns the table for key, creating it if this is the first time
// it has been touched.
func (s *Store) Table(key Key) *Table {
	t, ok := s.tables[key]
	if !ok {
		t = NewTable()
		s.tables[key] = t
	}
	return t
}

// Lookup returns the table for key without creating it.
func (s *Store) Lookup(key Key) (*Table, bool) {
	t, ok := s.tables[key]
	return t, ok
}

// Keys returns every key with a materialized table, for query planning
// (C11's link resolution intersects a relation's tables against the
// current per-target archetype sets).
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.tables))
	for k := range s.tables {
		keys = append(keys, k)
	}
	return keys
}

// KeysForRelation returns every materialized key for the given relation
// type, regardless of depth or endpoint archetypes.
func (s *Store) KeysForRelation(rel types.DataTypeId) []Key {
	var keys []Key
	for k := range s.tables {
		if k.Relation == rel {
			keys = append(keys, k)
		}
	}
	return keys
}

// OutgoingFrom returns the single To endpoint of rel's outgoing edge from
// from, if one exists (tree relations keep at most one per source).
func (s *Store) OutgoingFrom(rel types.DataTypeId, from uint32) (uint32, bool) {
	for _, key := range s.KeysForRelation(rel) {
		rows := s.tables[key].ViewFrom(from)
		if len(rows) > 0 {
			return rows[0].To, true
		}
	}
	return 0, false
}

// FindContaining searches every table registered for rel for a row
// matching (from, to), returning it if found. Insertion always targets the
// table keyed by the endpoints' archetypes at relate time; lookups fall
// back to scanning every table for the relation type so that a later
// archetype transition on either endpoint (which this reference
// implementation does not migrate relation rows across) never makes an
// existing relation invisible to Unrelate/Related.
func (s *Store) FindContaining(rel types.DataTypeId, from, to uint32) (*Table, bool) {
	for _, key := range s.KeysForRelation(rel) {
		tbl := s.tables[key]
		if tbl.Contains(from, to) {
			return tbl, true
		}
	}
	return nil, false
}

// EraseOutgoingEverywhere removes every row with the given From across
// every table registered for rel, used to enforce the tree-relation
// invariant (at most one outgoing row per source) regardless of which
// to-archetype table the prior row landed in.
func (s *Store) EraseOutgoingEverywhere(rel types.DataTypeId, from uint32) {
	for _, key := range s.KeysForRelation(rel) {
		s.tables[key].EraseFrom(from)
	}
}
