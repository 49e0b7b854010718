package system

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/query"
)

// QueryFetcher declares a query argument: its terms contribute to the
// access footprint directly (component/relation types are already
// World-independent *reflect.Type values), and it builds the query.Filter
// against the bound World once Fetch runs.
type QueryFetcher struct {
	Terms []query.Term
}

func (q QueryFetcher) Analyze(access *Access) {
	for _, t := range q.Terms {
		switch t.Kind {
		case query.ComponentKind:
			if t.Write {
				access.WriteComponent(t.ComponentType)
			} else {
				access.ReadComponent(t.ComponentType)
			}
		case query.RelationKind:
			if t.Write {
				access.WriteComponent(t.RelationType)
			} else {
				access.ReadComponent(t.RelationType)
			}
		}
	}
}

func (q QueryFetcher) Fetch(ctx *Context) any {
	f, err := query.New(ctx.World, q.Terms)
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("system: failed to build query: %w", err)))
	}
	return f.View()
}
