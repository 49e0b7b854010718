package reflect

// Constructible bundles the four lifecycle operations the column and
// blueprint layers need for a type-erased value: default/copy/move
// construction and destruction. Any of the three constructors may be nil
// (absent); a nil Default means the type declares no default constructor
// (the World does not consult this trait), a nil CopyCtor or MoveCtor
// means the type cannot be stored in a blueprint (see spec invariant 7).
// Destruct may also be nil (Go's GC handles the common case; Destruct
// exists for types that hold external resources).
type Constructible struct {
	Size      uintptr
	Align     uintptr
	Default   func() any
	CopyCtor  func(src any) any
	MoveCtor  func(src any) any
	Destruct  func(v any)
}

// CanCopy reports whether a value of this type can be copy-constructed,
// the precondition blueprints place on component/relation values.
func (c Constructible) CanCopy() bool { return c.CopyCtor != nil }

// CanMove reports whether a value of this type can be move-constructed.
func (c Constructible) CanMove() bool { return c.MoveCtor != nil }

// Field describes one named field of a Fields-trait type.
type Field struct {
	Name string
	Type *Type
	// AddressOf returns a pointer to the field within instance, which must
	// be a pointer to the owning struct. The returned pointer aliases
	// instance's memory.
	AddressOf func(instance any) any
}

// Fields lists, in declaration order, the named fields of a struct type.
type Fields struct {
	List []Field
}

// ByName finds a field by name, or ok=false if absent.
func (f Fields) ByName(name string) (Field, bool) {
	for _, field := range f.List {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Array describes a homogeneous, index-addressable collection.
type Array struct {
	Element       *Type
	Length        func(instance any) int
	Get           func(instance any, i int) any
	Resize        func(instance any, n int) bool
	InsertDefault func(instance any, i int) bool
	Erase         func(instance any, i int) bool
}

// Resizable reports whether the Array supports Resize.
func (a Array) Resizable() bool { return a.Resize != nil }

// DictionaryIterator walks key/value pairs of a Dictionary-trait instance.
type DictionaryIterator struct {
	Key     func() any
	Value   func() any
	Advance func() bool
	Stopped func() bool
}

// Dictionary describes a homogeneous key/value collection.
type Dictionary struct {
	Key           *Type
	Value         *Type
	Iter          func(instance any) DictionaryIterator
	InsertDefault func(instance any, key any) bool
	InsertCopy    func(instance any, key any, value any) bool
	InsertMove    func(instance any, key any, value any) bool
	Erase         func(instance any, key any) bool
}

// EnumOption is one named variant of an Enum-trait type.
type EnumOption struct {
	Name string
	Test func(instance any) bool
	Set  func(instance any)
}

// Enum lists the named variants of an enumeration type, in declaration
// order (the source models this as a linked list; a slice preserves the
// same order without pointer chasing).
type Enum struct {
	Options []EnumOption
}

// Current returns the active option's name, or ok=false if none test true.
func (e Enum) Current(instance any) (string, bool) {
	for _, opt := range e.Options {
		if opt.Test(instance) {
			return opt.Name, true
		}
	}
	return "", false
}

// MaskBit is one named bit of a Mask-trait type.
type MaskBit struct {
	Name  string
	Test  func(instance any) bool
	Set   func(instance any)
	Clear func(instance any)
}

// Mask lists the named bits of a bitmask type.
type Mask struct {
	Bits []MaskBit
}

// StringConversion converts a value to/from its textual representation.
type StringConversion struct {
	To   func(instance any) string
	From func(instance any, s string) bool
}

// Nullable lets a value represent an explicit "no value" state.
type Nullable struct {
	IsNull    func(instance any) bool
	SetToNull func(instance any)
}
