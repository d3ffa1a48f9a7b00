package skematic

import (
	"sort"
	"sync"
)

// AliasProperty is the synthetic property name a non-object schema is wrapped
// in when registered.
const AliasProperty = "value"

// Registry maps schema names to their property lists and owns the compiled
// validators built from them. Registration is idempotent: re-registering a
// name overwrites the previous schema and discards its compiled validator.
// Lookups are safe for concurrent use with registration.
type Registry struct {
	mu       sync.RWMutex
	schemas  map[string][]Property
	compiled map[string]*Compiled
}

// NewRegistry returns an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:  make(map[string][]Property),
		compiled: make(map[string]*Compiled),
	}
}

// Register installs an object schema under name.
func (r *Registry) Register(name string, props []Property) {
	r.mu.Lock()
	r.schemas[name] = props
	delete(r.compiled, name)
	r.mu.Unlock()
}

// RegisterAlias installs a non-object schema under name by wrapping it in a
// single synthetic "value" property. References to an alias delegate directly
// to the wrapped descriptor.
func (r *Registry) RegisterAlias(name string, d *Descriptor) {
	r.Register(name, []Property{{Name: AliasProperty, Type: d}})
}

// Resolve returns the property list registered under name.
func (r *Registry) Resolve(name string) ([]Property, bool) {
	r.mu.RLock()
	props, ok := r.schemas[name]
	r.mu.RUnlock()
	return props, ok
}

// aliasOf reports the wrapped descriptor when the schema is an alias: a
// single property named "value" holding a non-object descriptor.
func aliasOf(props []Property) (*Descriptor, bool) {
	if len(props) == 1 && props[0].Name == AliasProperty && props[0].Type != nil && props[0].Type.Kind != KindObject {
		return props[0].Type, true
	}
	return nil, false
}

// Names returns the registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clear removes every schema and compiled validator.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.schemas = make(map[string][]Property)
	r.compiled = make(map[string]*Compiled)
	r.mu.Unlock()
}

// Size reports the number of registered schemas.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
