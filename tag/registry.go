package tag

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/tagtools/tagfile"
)

// Schema describes an asset type: the body of its tag files for each layout.
type Schema struct {
	Group tagfile.Code
	Name  string
	// Version is the format version written to the header of new trees.
	Version uint16
	Bodies  map[Layout]*Struct
}

// NewSchema returns a Schema without any bodies.
func NewSchema(group, name string, version uint16) *Schema {
	return &Schema{
		Group:   tagfile.MakeCode(group),
		Name:    name,
		Version: version,
		Bodies:  map[Layout]*Struct{},
	}
}

// WithBody sets body as the body of each of the given layouts.
func (s *Schema) WithBody(body *Struct, layouts ...Layout) *Schema {
	for _, l := range layouts {
		s.Bodies[l] = body
	}
	return s
}

// Registry maps engine tags to dialects, and tag groups to schemas. A Registry
// is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[tagfile.Code]Dialect
	schemas map[tagfile.Code]*Schema
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: map[tagfile.Code]Dialect{},
		schemas: map[tagfile.Code]*Schema{},
	}
}

// RegisterEngine adds a dialect. Returns an error if the engine tag is already
// registered.
func (r *Registry) RegisterEngine(d Dialect) error {
	if d.Order == nil {
		return fmt.Errorf("engine %q: no byte order", d.Engine.String())
	}
	if _, ok := layoutStrings[d.Layout]; !ok {
		return fmt.Errorf("engine %q: invalid layout", d.Engine.String())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[d.Engine]; ok {
		return fmt.Errorf("engine %q already registered", d.Engine.String())
	}
	r.engines[d.Engine] = d
	return nil
}

// Register adds a schema. Returns an error if the group is already
// registered.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("nil schema")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[s.Group]; ok {
		return fmt.Errorf("group %q already registered", s.Group.String())
	}
	r.schemas[s.Group] = s
	return nil
}

// MustRegister is like Register, but panics on error.
func (r *Registry) MustRegister(s ...*Schema) {
	for _, s := range s {
		if err := r.Register(s); err != nil {
			panic("tag: " + err.Error())
		}
	}
}

// Dialect returns the dialect of an engine tag. Returns
// UnsupportedSchemaVersion if the engine tag is not registered.
func (r *Registry) Dialect(engine tagfile.Code) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.engines[engine]
	if !ok {
		return Dialect{}, UnsupportedSchemaVersion{Engine: engine}
	}
	return d, nil
}

// Schema returns the schema of a group, or nil.
func (r *Registry) Schema(group tagfile.Code) *Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemas[group]
}

// Body returns the body of a group for a dialect. Returns
// UnsupportedSchemaVersion if the group is not registered, or if it has no
// body for the layout of the dialect.
func (r *Registry) Body(group tagfile.Code, d Dialect) (*Struct, error) {
	s := r.Schema(group)
	if s == nil {
		return nil, UnsupportedSchemaVersion{Group: group, Engine: d.Engine, Layout: d.Layout}
	}
	body := s.Bodies[d.Layout]
	if body == nil {
		return nil, UnsupportedSchemaVersion{Group: group, Engine: d.Engine, Layout: d.Layout}
	}
	return body, nil
}

// Groups returns the registered groups, sorted.
func (r *Registry) Groups() []tagfile.Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]tagfile.Code, 0, len(r.schemas))
	for g := range r.schemas {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return string(groups[i][:]) < string(groups[j][:])
	})
	return groups
}

// Engines returns the registered dialects, sorted by engine tag.
func (r *Registry) Engines() []Dialect {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engines := make([]Dialect, 0, len(r.engines))
	for _, d := range r.engines {
		engines = append(engines, d)
	}
	sort.Slice(engines, func(i, j int) bool {
		return string(engines[i].Engine[:]) < string(engines[j].Engine[:])
	})
	return engines
}

// Engine tags of the shipped dialects.
var (
	EngineClassic      = tagfile.MakeCode("blam")
	EngineLegacy       = tagfile.MakeCode("ambl")
	EngineIntermediate = tagfile.MakeCode("LAMB")
	EngineLate         = tagfile.MakeCode("MLAB")
	EngineRetail       = tagfile.MakeCode("BLM!")
)

// Dialects returns the shipped dialects.
func Dialects() []Dialect {
	return []Dialect{
		{Engine: EngineClassic, Order: binary.BigEndian, Layout: LayoutClassic, TerminatedNames: true},
		{Engine: EngineLegacy, Order: binary.LittleEndian, Layout: LayoutLegacy},
		{Engine: EngineIntermediate, Order: binary.LittleEndian, Layout: LayoutIntermediate},
		{Engine: EngineLate, Order: binary.LittleEndian, Layout: LayoutIntermediate},
		{Engine: EngineRetail, Order: binary.LittleEndian, Layout: LayoutRetail},
	}
}

// DefaultRegistry holds the shipped dialects. Schemas are added to it by the
// defs package.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range Dialects() {
		if err := r.RegisterEngine(d); err != nil {
			panic("tag: " + err.Error())
		}
	}
	return r
}
