package geometry

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// DefaultQuadSegments is the number of segments used to approximate a quarter
// circle when an engine has to build round joins. Matches the GEOS default.
const DefaultQuadSegments = 8

// Engine is the geometry capability set required by the erosion solver.
// Implementations must be safe for concurrent use and must never mutate their
// inputs.
type Engine interface {
	// Area returns the non-negative planar area of g.
	Area(g *geom.MultiPolygon) float64
	// InwardOffset moves the boundary of g inward by distance (a negative
	// buffer). The result may be empty when g collapses.
	InwardOffset(g *geom.MultiPolygon, distance float64) (*geom.MultiPolygon, error)
	// Repair resolves self-intersections and degenerate parts.
	Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error)
	// IsValid reports whether g is topologically valid.
	IsValid(g *geom.MultiPolygon) bool
}

// Options configures an engine.
type Options struct {
	QuadSegments int `yaml:"quad_segments" mapstructure:"quad_segments"`
}

func (o Options) withDefaults() Options {
	if o.QuadSegments <= 0 {
		o.QuadSegments = DefaultQuadSegments
	}
	return o
}

// Factory builds an engine from options.
type Factory func(opts Options) (Engine, error)

// registry maps engine names to their factories.
type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var engines = &registry{factories: make(map[string]Factory)}

// Register makes an engine available by name. Registering the same name twice
// replaces the earlier factory.
func Register(name string, f Factory) {
	engines.mu.Lock()
	defer engines.mu.Unlock()
	engines.factories[name] = f
}

// Open builds the named engine.
func Open(name string, opts Options) (Engine, error) {
	engines.mu.RLock()
	f, ok := engines.factories[name]
	engines.mu.RUnlock()
	if !ok {
		return nil, eris.Errorf("geometry: unknown engine %q (available: %v)", name, Names())
	}

	e, err := f(opts.withDefaults())
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open engine %s", name)
	}
	return e, nil
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	engines.mu.RLock()
	defer engines.mu.RUnlock()

	names := make([]string, 0, len(engines.factories))
	for name := range engines.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(PlanarEngineName, func(opts Options) (Engine, error) {
		return NewPlanar(opts), nil
	})
}
