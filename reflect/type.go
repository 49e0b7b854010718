package reflect

import (
	"fmt"
	goreflect "reflect"
	"strings"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// Type is an immutable descriptor for a reflected Go type. Identity is by
// pointer: two Types describe the same underlying Go type iff they are the
// same *Type value.
type Type struct {
	name      string
	shortName string
	size      uintptr
	align     uintptr
	goType    goreflect.Type

	traits map[string]any
}

// Name returns the fully qualified name the type was registered with.
func (t *Type) Name() string { return t.name }

// ShortName returns Name with template-style type arguments stripped, e.g.
// "Grid<Cell>" becomes "Grid".
func (t *Type) ShortName() string { return t.shortName }

// Size returns the size in bytes of one value of the type.
func (t *Type) Size() uintptr { return t.size }

// Align returns the alignment in bytes of the type.
func (t *Type) Align() uintptr { return t.align }

// GoType exposes the underlying Go reflect.Type this descriptor was built
// from, for collaborators (e.g. the table/column layer) that need it.
func (t *Type) GoType() goreflect.Type { return t.goType }

// Is reports whether this Type was built from the Go type T.
func Is[T any](t *Type) bool {
	return t != nil && t.goType == goreflect.TypeOf((*T)(nil)).Elem()
}

var (
	registryMu sync.RWMutex
	byGoType   = map[goreflect.Type]*Type{}
	byName     = map[string]*Type{}
)

// Builder constructs a Type by attaching traits. Each trait kind may be
// attached at most once; attaching a duplicate, or finishing with a name
// already registered under a different Go type, is fatal.
type Builder struct {
	t *Type
}

// NewBuilder starts building a Type descriptor for the given Go type, name
// and size/alignment. Names must be unique across the process registry.
func NewBuilder(goType goreflect.Type, name string, size, align uintptr) *Builder {
	return &Builder{
		t: &Type{
			name:      name,
			shortName: stripTemplateArgs(name),
			size:      size,
			align:     align,
			goType:    goType,
			traits:    make(map[string]any, 4),
		},
	}
}

func stripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func traitKey(trait any) string {
	return goreflect.TypeOf(trait).String()
}

// With attaches a trait to the type under construction. Panics (with a
// stack trace) if the same trait kind is attached twice.
func (b *Builder) With(trait any) *Builder {
	key := traitKey(trait)
	if _, exists := b.t.traits[key]; exists {
		panic(bark.AddTrace(fmt.Errorf("reflect: trait %s already attached to type %q", key, b.t.name)))
	}
	b.t.traits[key] = trait
	return b
}

// Build finalizes and registers the Type in the process-wide registry.
func (b *Builder) Build() *Type {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := byName[b.t.name]; ok && existing.goType != b.t.goType {
		panic(bark.AddTrace(fmt.Errorf("reflect: duplicate type name %q", b.t.name)))
	}
	byName[b.t.name] = b.t
	byGoType[b.t.goType] = b.t
	return b.t
}

// Trait fetches a previously attached trait by example value, e.g.
//
//	f, ok := reflect.Trait[Fields](t)
func Trait[T any](t *Type) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	key := goreflect.TypeOf(zero).String()
	v, ok := t.traits[key]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Register builds and caches the Type descriptor for T, running build the
// first time T is seen. It is the Go-native replacement for the source
// engine's CUBOS_REFLECT/CUBOS_REFLECT_IMPL macro pair: call it once, from
// an init() function, per reflected type.
func Register[T any](name string, build func(*Builder)) *Type {
	goType := goreflect.TypeOf((*T)(nil)).Elem()

	registryMu.RLock()
	if existing, ok := byGoType[goType]; ok {
		registryMu.RUnlock()
		return existing
	}
	registryMu.RUnlock()

	b := NewBuilder(goType, name, goType.Size(), uintptr(goType.Align()))
	if build != nil {
		build(b)
	}
	return b.Build()
}

// Reflect returns the process-wide Type descriptor for T, registering it
// with its Go type name and no traits if it has not been explicitly
// registered yet. Fatal (per spec) cases — a type declared for reflection
// but never given a Register call — cannot be detected at this boundary in
// Go the way a missing link-time symbol is in C++; callers that require a
// trait should check with Trait and fail loudly if absent.
func Reflect[T any]() *Type {
	goType := goreflect.TypeOf((*T)(nil)).Elem()

	registryMu.RLock()
	existing, ok := byGoType[goType]
	registryMu.RUnlock()
	if ok {
		return existing
	}
	return Register[T](goType.String(), nil)
}

// Lookup finds a previously registered Type by name.
func Lookup(name string) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := byName[name]
	return t, ok
}
