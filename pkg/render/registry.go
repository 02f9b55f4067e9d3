package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/surface"
)

// Handler renders one field onto a surface under the supplied control id and
// reports the kind of control it produced.
type Handler func(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error)

// Registry maps every known field type to exactly one handler. Unknown types
// never reach the registry: callers resolve them to the text family first.
type Registry struct {
	mu       sync.RWMutex
	handlers map[schema.FieldType]Handler
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[schema.FieldType]Handler),
	}
}

// Register binds a handler to a known field type, replacing any previous
// handler for that type.
func (r *Registry) Register(fieldType schema.FieldType, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("render: handler for %q is nil", fieldType)
	}
	if !fieldType.Known() {
		return fmt.Errorf("render: field type %q is not part of the schema vocabulary", fieldType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[fieldType] = handler
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(fieldType schema.FieldType, handler Handler) {
	if err := r.Register(fieldType, handler); err != nil {
		panic(err)
	}
}

// Get retrieves the handler bound to a field type.
func (r *Registry) Get(fieldType schema.FieldType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[fieldType]
	return handler, ok
}

// List returns the registered field types sorted by name.
func (r *Registry) List() []schema.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]schema.FieldType, 0, len(r.handlers))
	for fieldType := range r.handlers {
		types = append(types, fieldType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Clone returns a copy so callers can override handlers without affecting the
// original registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for fieldType, handler := range r.handlers {
		cloned.handlers[fieldType] = handler
	}
	return cloned
}
