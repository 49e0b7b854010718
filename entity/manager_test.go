package entity_test

import (
	"testing"

	"github.com/cubos-go/ecscore/entity"
)

func TestCreateDestroyAliveness(t *testing.T) {
	m := entity.NewManager()
	e := m.Create()

	if !m.IsAlive(e) {
		t.Fatal("expected freshly created entity to be alive")
	}
	m.Destroy(e)
	if m.IsAlive(e) {
		t.Fatal("expected destroyed entity to no longer be alive")
	}
}

func TestDestroyedIdentifierNeverReused(t *testing.T) {
	m := entity.NewManager()
	seen := make(map[entity.ID]bool)

	for i := 0; i < 1000; i++ {
		e := m.Create()
		if seen[e] {
			t.Fatalf("identifier %+v returned twice", e)
		}
		seen[e] = true
		if i%3 == 0 {
			m.Destroy(e)
		}
	}
}

func TestRecycledSlotBumpsGeneration(t *testing.T) {
	m := entity.NewManager()
	first := m.Create()
	m.Destroy(first)
	second := m.Create()

	if second.Index != first.Index {
		t.Fatalf("expected slot reuse, first=%d second=%d", first.Index, second.Index)
	}
	if second.Generation == first.Generation {
		t.Fatal("expected generation to change on reuse")
	}
	if m.IsAlive(first) {
		t.Fatal("old identifier must not read as alive after reuse")
	}
}

func TestArchetypeBookkeeping(t *testing.T) {
	m := entity.NewManager()
	e := m.Create()
	if m.ArchetypeOf(e) != 0 {
		t.Fatal("expected new entity to start in archetype 0")
	}
	m.SetArchetypeOf(e, 7)
	if m.ArchetypeOf(e) != 7 {
		t.Fatal("expected archetype update to stick")
	}
}
