package archetype

import (
	"github.com/TheBitDrifter/table"

	"github.com/cubos-go/ecscore/column"
)

// ID identifies a unique set of component types within one World. ID 0 is
// reserved for the empty archetype (no components), matching the data
// model's requirement that it always exist.
type ID uint32

// Table is one column table for a single archetype: one table.Table column
// per component in the archetype, with rows mapped to entities by the
// underlying table package's entry index.
type Table struct {
	id         ID
	components []column.ElementType
	tbl        table.Table
}

// ID returns the owning archetype's identifier.
func (t *Table) ID() ID { return t.id }

// Components lists the component identities this archetype carries.
func (t *Table) Components() []column.ElementType { return t.components }

// Raw exposes the underlying table.Table for column accessors.
func (t *Table) Raw() table.Table { return t.tbl }

// Len returns the current row count, the invariant every column's length
// must match.
func (t *Table) Len() int { return t.tbl.Length() }

// Has reports whether this archetype carries the given component.
func (t *Table) Has(c column.ElementType) bool { return t.tbl.Contains(c) }

// Push appends a row for a freshly created entry, returning the new
// table.Entry. Column values start uninitialized; callers must set every
// column immediately, per the Column contract in the data model.
func (t *Table) Push() (table.Entry, error) {
	entries, err := t.tbl.NewEntries(1)
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

// SwapEraseRow removes row by moving the table's last row into its place.
// The caller is responsible for notifying the entity manager that the
// moved entity's row changed.
func (t *Table) SwapEraseRow(id int) error {
	_, err := t.tbl.DeleteEntries(id)
	return err
}

// MoveRowTo move-constructs row's shared columns into dest and then
// swap-erases row from t, implementing an archetype transition's column
// migration in one step (table.Table.TransferEntries already performs the
// shared-column move; columns unique to dest are left for the caller to
// populate).
func (t *Table) MoveRowTo(dest *Table, row int) error {
	return t.tbl.TransferEntries(dest.tbl, row)
}

// Entry returns the table.Entry describing the entity at row.
func (t *Table) Entry(row int) (table.Entry, error) {
	return t.tbl.Entry(row)
}
