package platform

import "fmt"

// Registry resolves adapters by platform name. Iteration order is
// registration order, which keeps selection among equal offers stable.
type Registry struct {
	order    []string
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		name := a.Name()
		if name == "" {
			return nil, fmt.Errorf("adapter with empty name")
		}
		if _, dup := r.adapters[name]; dup {
			return nil, fmt.Errorf("duplicate adapter %q", name)
		}
		r.adapters[name] = a
		r.order = append(r.order, name)
	}
	return r, nil
}

// Lookup returns the adapter owning the given platform name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Names returns the platform names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
