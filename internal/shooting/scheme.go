package shooting

import (
	"fmt"
	"strings"

	"github.com/san-kum/schrodsim/internal/dynamo"
	"github.com/san-kum/schrodsim/internal/integrators"
)

// Scheme selects the step rule used to march ψ across the grid.
type Scheme int

const (
	Euler Scheme = iota
	RK4
	Verlet
)

var schemeNames = map[Scheme]string{
	Euler:  "euler",
	RK4:    "rk4",
	Verlet: "verlet",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

func ParseScheme(name string) (Scheme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range schemeNames {
		if n == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown integration scheme: %s", name)
}

func Schemes() []string {
	return []string{Euler.String(), RK4.String(), Verlet.String()}
}

func (s Scheme) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Scheme) integrator() (dynamo.Integrator, error) {
	switch s {
	case Euler:
		return integrators.NewEuler(), nil
	case RK4:
		return integrators.NewRK4(), nil
	case Verlet:
		return integrators.NewVerlet(), nil
	}
	return nil, fmt.Errorf("unknown integration scheme: %d", int(s))
}
