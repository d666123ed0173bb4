package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
)

// Registry maps user-facing names to shapes and schemes.
type Registry struct {
	shapes  map[string]func() potential.Shape
	schemes map[string]shooting.Scheme
}

func NewRegistry() *Registry {
	r := &Registry{
		shapes:  make(map[string]func() potential.Shape),
		schemes: make(map[string]shooting.Scheme),
	}

	for _, name := range potential.Shapes() {
		r.shapes[name] = func() potential.Shape { return potential.Parse(name) }
	}

	r.schemes["euler"] = shooting.Euler
	r.schemes["rk4"] = shooting.RK4
	r.schemes["verlet"] = shooting.Verlet

	return r
}

// GetShape accepts canonical names, aliases and display names.
func (r *Registry) GetShape(name string) (potential.Shape, error) {
	s := potential.Parse(name)
	if _, ok := r.shapes[s.Name()]; !ok {
		return s, fmt.Errorf("%w: unknown potential %q", potential.ErrUnresolvedShape, name)
	}
	return r.shapes[s.Name()](), nil
}

func (r *Registry) GetScheme(name string) (shooting.Scheme, error) {
	s, err := shooting.ParseScheme(name)
	if err != nil {
		return 0, err
	}
	if _, ok := r.schemes[s.String()]; !ok {
		return 0, fmt.Errorf("unknown integration scheme: %s", name)
	}
	return s, nil
}

func (r *Registry) ListShapes() []string {
	return potential.Shapes()
}

func (r *Registry) ListSchemes() []string {
	names := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
