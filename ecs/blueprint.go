package ecs

import (
	"fmt"
	"regexp"
	goreflect "reflect"
	"sort"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/types"
)

var blueprintNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Blueprint is a prefab: a self-contained little world with named entities
// used as a template for repeated instantiation into a real World. It
// does not belong to any particular World — component and relation
// types are keyed by their process-wide *reflect.Type.
type Blueprint struct {
	names  map[entity.ID]string
	byName map[string]entity.ID
	next   uint32
	order  []entity.ID // creation order, for deterministic Instantiate

	components map[*coreReflect.Type]map[entity.ID]any
	relations  map[*coreReflect.Type]map[entity.ID]map[entity.ID]any
}

// NewBlueprint returns an empty blueprint.
func NewBlueprint() *Blueprint {
	return &Blueprint{
		names:      make(map[entity.ID]string),
		byName:     make(map[string]entity.ID),
		components: make(map[*coreReflect.Type]map[entity.ID]any),
		relations:  make(map[*coreReflect.Type]map[entity.ID]map[entity.ID]any),
	}
}

// Create appends a new named local entity. Names must match [a-z0-9-]+ and
// be unique within the blueprint; violating either is fatal (InvalidUse).
func (b *Blueprint) Create(name string) entity.ID {
	if !blueprintNamePattern.MatchString(name) {
		panic(bark.AddTrace(fmt.Errorf("ecs: invalid blueprint entity name %q", name)))
	}
	if _, exists := b.byName[name]; exists {
		panic(bark.AddTrace(fmt.Errorf("ecs: duplicate blueprint entity name %q", name)))
	}

	e := entity.ID{Index: b.next}
	b.next++
	b.names[e] = name
	b.byName[name] = e
	b.order = append(b.order, e)
	return e
}

// Entity looks up a local entity by name.
func (b *Blueprint) Entity(name string) (entity.ID, bool) {
	e, ok := b.byName[name]
	return e, ok
}

// requireBlueprintable enforces data model invariant 7: a value stored in
// a blueprint must be copy- and move-constructible, since Instantiate
// (and Merge, which calls back through Add/Relate) may produce any number
// of independent copies of it across freshly created entities. A type
// with no registered Constructible trait is an ordinary Go value type,
// copyable by assignment by default, so only a type that explicitly
// registers Constructible and declares itself non-copyable or
// non-movable is rejected here.
func requireBlueprintable(rt *coreReflect.Type) {
	c, ok := coreReflect.Trait[coreReflect.Constructible](rt)
	if !ok {
		return
	}
	if !c.CanCopy() || !c.CanMove() {
		panic(bark.AddTrace(fmt.Errorf("ecs: %q cannot be stored in a blueprint without copy and move constructors", rt.Name())))
	}
}

// Add attaches a component value of the type rt describes to e,
// overwriting any prior value for that type.
func (b *Blueprint) Add(e entity.ID, value any, rt *coreReflect.Type) {
	requireBlueprintable(rt)
	m, ok := b.components[rt]
	if !ok {
		m = make(map[entity.ID]any)
		b.components[rt] = m
	}
	m[e] = value
}

// Relate stores value for (from, to) under relation type rt, overwriting
// any existing value. Tree relations first clear any prior outgoing edge
// from "from", mirroring World.Relate's override semantics. An ephemeral
// relation is never reachable here: it cannot be part of a reusable
// prefab (invariant 7), so storing one is fatal.
func (b *Blueprint) Relate(from, to entity.ID, value any, rt *coreReflect.Type) {
	requireBlueprintable(rt)
	flags, _ := types.FlagsOf(rt)
	if flags.Ephemeral {
		panic(bark.AddTrace(fmt.Errorf("ecs: relation %q is ephemeral and cannot be stored in a blueprint", rt.Name())))
	}
	m, ok := b.relations[rt]
	if !ok {
		m = make(map[entity.ID]map[entity.ID]any)
		b.relations[rt] = m
	}
	if flags.Tree {
		delete(m, from)
	}
	inner, ok := m[from]
	if !ok {
		inner = make(map[entity.ID]any)
		m[from] = inner
	}
	inner[to] = value
}

// Merge imports other's entities, components and relations into b,
// prefixing every imported name with prefix + ".".
func (b *Blueprint) Merge(prefix string, other *Blueprint) {
	remap := make(map[entity.ID]entity.ID, len(other.order))
	for _, local := range other.order {
		newName := prefix + "." + other.names[local]
		remap[local] = b.Create(newName)
	}
	for rt, byEntity := range other.components {
		for local, value := range byEntity {
			b.Add(remap[local], value, rt)
		}
	}
	for rt, byFrom := range other.relations {
		for from, byTo := range byFrom {
			for to, value := range byTo {
				b.Relate(remap[from], remap[to], value, rt)
			}
		}
	}
}

// Callbacks groups the three user-supplied functions Instantiate drives.
type Callbacks struct {
	Create func(name string) entity.ID
	Add    func(e entity.ID, value any, rt *coreReflect.Type)
	Relate func(from, to entity.ID, value any, rt *coreReflect.Type)
}

// Instantiate walks the blueprint deterministically: entities are created
// in declaration order, then components and relations are applied in a
// fixed (type, then entity) order, with every Entity-typed field inside a
// value rewritten to point at the freshly created entities instead of
// blueprint-local identifiers. A reference to an entity not present in
// this blueprint's bimap is fatal (InvalidUse); a null reference is left
// null.
func (b *Blueprint) Instantiate(cb Callbacks) {
	remap := make(map[entity.ID]entity.ID, len(b.order))
	for _, local := range b.order {
		remap[local] = cb.Create(b.names[local])
	}

	for _, rt := range sortedTypes(b.components) {
		byEntity := b.components[rt]
		for _, local := range b.order {
			value, ok := byEntity[local]
			if !ok {
				continue
			}
			rewritten := rewriteEntityRefs(value, remap)
			cb.Add(remap[local], rewritten, rt)
		}
	}

	for _, rt := range sortedTypes(b.relations) {
		byFrom := b.relations[rt]
		for _, fromLocal := range b.order {
			byTo, ok := byFrom[fromLocal]
			if !ok {
				continue
			}
			for _, toLocal := range b.order {
				value, ok := byTo[toLocal]
				if !ok {
					continue
				}
				rewritten := rewriteEntityRefs(value, remap)
				cb.Relate(remap[fromLocal], remap[toLocal], rewritten, rt)
			}
		}
	}
}

func sortedTypes[V any](m map[*coreReflect.Type]V) []*coreReflect.Type {
	out := make([]*coreReflect.Type, 0, len(m))
	for rt := range m {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

var entityIDType = goreflect.TypeOf(entity.ID{})

// rewriteEntityRefs returns a copy of value with every entity.ID field
// (searched recursively through structs, slices, arrays, map values and
// pointers) replaced by its counterpart in remap. Slices, maps and pointees
// are copied before rewriting, so the blueprint's stored value is left
// unchanged. Fields holding the null entity are left untouched; a non-null
// reference missing from remap is fatal.
func rewriteEntityRefs(value any, remap map[entity.ID]entity.ID) any {
	original := goreflect.ValueOf(value)
	copyPtr := goreflect.New(original.Type())
	copyPtr.Elem().Set(original)

	walkRewrite(copyPtr.Elem(), remap)
	return copyPtr.Elem().Interface()
}

func walkRewrite(v goreflect.Value, remap map[entity.ID]entity.ID) {
	switch v.Kind() {
	case goreflect.Struct:
		if v.Type() == entityIDType {
			e := v.Interface().(entity.ID)
			if e.IsNull() {
				return
			}
			newE, ok := remap[e]
			if !ok {
				panic(bark.AddTrace(fmt.Errorf("ecs: blueprint entity reference %+v is not in this blueprint", e)))
			}
			v.Set(goreflect.ValueOf(newE))
			return
		}
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.CanSet() {
				walkRewrite(field, remap)
			}
		}
	case goreflect.Slice, goreflect.Array:
		if v.Kind() == goreflect.Slice && !v.IsNil() {
			fresh := goreflect.MakeSlice(v.Type(), v.Len(), v.Len())
			goreflect.Copy(fresh, v)
			v.Set(fresh)
		}
		for i := 0; i < v.Len(); i++ {
			walkRewrite(v.Index(i), remap)
		}
	case goreflect.Map:
		if v.IsNil() {
			return
		}
		fresh := goreflect.MakeMapWithSize(v.Type(), v.Len())
		for _, key := range v.MapKeys() {
			val := v.MapIndex(key)
			tmp := goreflect.New(val.Type()).Elem()
			tmp.Set(val)
			walkRewrite(tmp, remap)
			fresh.SetMapIndex(key, tmp)
		}
		v.Set(fresh)
	case goreflect.Ptr:
		if !v.IsNil() {
			fresh := goreflect.New(v.Elem().Type())
			fresh.Elem().Set(v.Elem())
			v.Set(fresh)
			walkRewrite(fresh.Elem(), remap)
		}
	}
}
