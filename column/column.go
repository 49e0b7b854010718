// Package column adapts github.com/TheBitDrifter/table's type-erased
// element storage for the CORE's Column: it provides per-component element
// types, typed row accessors (get/set through a pointer) and the schema.
// It has no push, pop, swap-erase or clear operations of its own; row
// allocation and removal go through archetype.Table and the underlying
// table.Table.
package column

import (
	"github.com/TheBitDrifter/table"
)

// ElementType identifies a component's slot in a table.Schema, the same
// role Component plays in warehouse.
type ElementType = table.ElementType

// NewElementType allocates a fresh component identity for T, the way
// warehouse.FactoryNewComponent does before wrapping it with an Accessor.
func NewElementType[T any]() table.ElementType {
	return table.FactoryNewElementType[T]()
}

// Accessor reaches into a table.Table to read or write a T value for a
// given row, and to test whether the table carries T at all.
type Accessor[T any] struct {
	elementType table.ElementType
	table.Accessor[T]
}

// NewAccessor builds an Accessor bound to the given element type.
func NewAccessor[T any](elementType table.ElementType) Accessor[T] {
	return Accessor[T]{
		elementType: elementType,
		Accessor:    table.FactoryNewAccessor[T](elementType),
	}
}

// ElementType returns the component identity this accessor was built for.
func (a Accessor[T]) ElementType() table.ElementType { return a.elementType }

// GetRow returns a pointer to the T value at row within tbl. The caller
// must have already confirmed (via Check) that tbl carries this column.
func (a Accessor[T]) GetRow(row int, tbl table.Table) *T {
	return a.Get(row, tbl)
}

// Schema is the set of component identities registered for a storage
// instance; every archetype table draws its columns from it.
type Schema = table.Schema

// NewSchema creates an empty schema.
func NewSchema() table.Schema {
	return table.Factory.NewSchema()
}
