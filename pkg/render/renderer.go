package render

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/surface"
)

// RenderedField records the control produced for one schema field. The set
// of rendered fields is owned by the FormRenderer and replaced on every
// RenderForm call.
type RenderedField struct {
	Name string
	ID   string
	Type schema.FieldType
	Kind surface.Kind
}

// Option configures a FormRenderer.
type Option func(*FormRenderer)

// WithRegistry overrides the handler registry.
func WithRegistry(registry *Registry) Option {
	return func(r *FormRenderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithLogger attaches a logger used for per-field diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *FormRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// FormRenderer renders schemas onto a surface. RenderField is the single
// field renderer; RenderForm replaces the whole surface.
type FormRenderer struct {
	surface  surface.Surface
	registry *Registry
	logger   *zap.Logger

	mu     sync.RWMutex
	fields []RenderedField
}

// New constructs a renderer bound to a surface.
func New(target surface.Surface, options ...Option) (*FormRenderer, error) {
	if target == nil {
		return nil, errors.New("render: surface is required")
	}
	r := &FormRenderer{
		surface:  target,
		registry: NewDefaultRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Surface returns the surface the renderer draws on.
func (r *FormRenderer) Surface() surface.Surface {
	return r.surface
}

// RenderField renders one field. Dispatch is on the resolved field type, so
// unknown types render as text inputs instead of failing.
func (r *FormRenderer) RenderField(field schema.FieldSpec) (RenderedField, error) {
	resolved := field.Type.Resolve()
	handler, ok := r.registry.Get(resolved)
	if !ok {
		handler, ok = r.registry.Get(schema.FieldTypeText)
	}
	if !ok {
		return RenderedField{}, fmt.Errorf("render: no handler for field %q (type %q)", field.Name, field.Type)
	}
	if resolved != field.Type {
		r.logger.Debug("unknown field type rendered as text",
			zap.String("field", field.Name),
			zap.String("type", string(field.Type)))
	}

	id := ControlID(field.Name)
	kind, err := handler(r.surface, field, id)
	if err != nil {
		return RenderedField{}, fmt.Errorf("render: field %q: %w", field.Name, err)
	}
	return RenderedField{
		Name: field.Name,
		ID:   id,
		Type: field.Type,
		Kind: kind,
	}, nil
}

// RenderForm discards every previously rendered control and renders the
// schema's fields in order.
func (r *FormRenderer) RenderForm(s schema.Schema) ([]RenderedField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.surface.Clear()
	r.fields = nil

	rendered := make([]RenderedField, 0, len(s.Fields))
	for _, field := range s.Fields {
		out, err := r.RenderField(field)
		if err != nil {
			r.fields = rendered
			return slices.Clone(rendered), err
		}
		rendered = append(rendered, out)
	}
	r.fields = rendered

	r.logger.Debug("form rendered", zap.Int("fields", len(rendered)))
	return slices.Clone(rendered), nil
}

// Fields returns the fields rendered by the latest RenderForm call.
func (r *FormRenderer) Fields() []RenderedField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.fields)
}
