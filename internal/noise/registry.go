package noise

import (
	"fmt"
	"sort"
)

type Registry struct {
	samplers map[string]func(Params) Sampler
}

func NewRegistry() *Registry {
	r := &Registry{
		samplers: make(map[string]func(Params) Sampler),
	}

	r.samplers["perlin"] = func(p Params) Sampler { return NewPerlin(p) }
	r.samplers["simplex"] = func(p Params) Sampler { return NewSimplex(p) }
	r.samplers["flat"] = func(p Params) Sampler { return Constant(0) }

	return r
}

// Register adds or replaces a named sampler constructor.
func (r *Registry) Register(name string, fn func(Params) Sampler) {
	r.samplers[name] = fn
}

func (r *Registry) Get(name string, params Params) (Sampler, error) {
	fn, ok := r.samplers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSampler, name)
	}
	return fn(params), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.samplers))
	for name := range r.samplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
