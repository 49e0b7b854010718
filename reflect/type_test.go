package reflect_test

import (
	"testing"

	"github.com/cubos-go/ecscore/reflect"
)

type fruit struct {
	Name  string
	Grams float64
}

func TestRegisterIsIdempotent(t *testing.T) {
	build := func(b *reflect.Builder) {
		b.With(reflect.Fields{List: []reflect.Field{
			{Name: "Name", Type: reflect.Reflect[string]()},
			{Name: "Grams", Type: reflect.Reflect[float64]()},
		}})
	}

	first := reflect.Register[fruit]("demo.Fruit", build)
	second := reflect.Reflect[fruit]()

	if first != second {
		t.Fatalf("expected the same *Type instance across calls, got %p and %p", first, second)
	}
	if first.Name() != "demo.Fruit" {
		t.Fatalf("unexpected name %q", first.Name())
	}
}

func TestBuilderRejectsDuplicateTrait(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate trait attachment")
		}
	}()

	goType := reflect.NewBuilder(nil, "demo.Dup", 0, 0)
	goType.With(reflect.Fields{}).With(reflect.Fields{})
}

func TestShortNameStripsTemplateArguments(t *testing.T) {
	type gridOfCell struct{}
	ty := reflect.Register[gridOfCell]("demo.Grid<Cell>", nil)
	if ty.ShortName() != "demo.Grid" {
		t.Fatalf("expected short name demo.Grid, got %q", ty.ShortName())
	}
}

func TestFieldsAddressOf(t *testing.T) {
	f := fruit{Name: "apple", Grams: 150}
	fields := reflect.Fields{
		List: []reflect.Field{
			{Name: "Name", AddressOf: func(instance any) any { return &instance.(*fruit).Name }},
			{Name: "Grams", AddressOf: func(instance any) any { return &instance.(*fruit).Grams }},
		},
	}
	field, ok := fields.ByName("Grams")
	if !ok {
		t.Fatal("expected Grams field to be found")
	}
	ptr := field.AddressOf(&f).(*float64)
	if *ptr != 150 {
		t.Fatalf("expected 150, got %v", *ptr)
	}
	*ptr = 200
	if f.Grams != 200 {
		t.Fatal("expected AddressOf to alias the original struct's memory")
	}
}
