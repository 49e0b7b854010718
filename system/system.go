package system

// Definition is one system: its declared argument fetchers (from which
// its footprint is derived) and the function that runs once all fetchers
// have produced their values.
type Definition struct {
	Name     string
	Fetchers []Fetcher
	Run      func(ctx *Context, args []any)
}

// New builds a Definition from its fetchers and run function.
func New(name string, run func(ctx *Context, args []any), fetchers ...Fetcher) *Definition {
	return &Definition{Name: name, Fetchers: fetchers, Run: run}
}

// Access aggregates every fetcher's footprint.
func (d *Definition) Access() *Access {
	access := NewAccess()
	for _, f := range d.Fetchers {
		f.Analyze(access)
	}
	return access
}

// Invoke fetches every argument from ctx, runs the system body, then
// releases every argument that has a Release method (resource handles),
// so the body itself must not release them.
func (d *Definition) Invoke(ctx *Context) {
	args := make([]any, len(d.Fetchers))
	for i, f := range d.Fetchers {
		args[i] = f.Fetch(ctx)
	}
	defer func() {
		for _, arg := range args {
			if r, ok := arg.(interface{ Release() }); ok {
				r.Release()
			}
		}
	}()
	d.Run(ctx, args)
}
