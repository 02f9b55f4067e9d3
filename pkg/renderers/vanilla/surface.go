// Package vanilla renders forms as plain HTML. Surface records controls the
// same way the in-memory surface does and serialises them as escaped markup;
// posted form values are bound back onto it before collection.
package vanilla

import (
	"errors"
	"html"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formflow/pkg/surface"
)

// Option configures a Surface.
type Option func(*Surface)

// WithClasses overrides the chrome classes.
func WithClasses(classes Classes) Option {
	return func(s *Surface) {
		s.classes = classes.withDefaults()
	}
}

// Surface is an HTML surface. Control state lives in the embedded memory
// surface; HTML reflects it.
type Surface struct {
	*surface.Memory
	classes Classes
}

var _ surface.Surface = (*Surface)(nil)

// New constructs an empty HTML surface.
func New(options ...Option) *Surface {
	s := &Surface{
		Memory:  surface.NewMemory(),
		classes: Classes{}.withDefaults(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// HTML renders the controls in creation order. Every label, hint, option and
// value is escaped.
func (s *Surface) HTML() string {
	var builder strings.Builder
	for _, entry := range s.Layout() {
		switch {
		case entry.Control != nil:
			state, _ := s.ReadControl(entry.Control.ID)
			s.writeControl(&builder, *entry.Control, state)
		case entry.Group != nil:
			chosen, _ := s.ReadGroup(entry.Group.Name)
			s.writeGroup(&builder, *entry.Group, entry.Peers, chosen)
		}
	}
	return builder.String()
}

// Bind applies posted form values: text controls take the posted text,
// checkboxes are checked when their name is present, selects fall back to the
// placeholder for unknown options and groups switch to the posted value.
func (s *Surface) Bind(values url.Values) error {
	var errs []error
	for _, entry := range s.Layout() {
		switch {
		case entry.Control != nil:
			errs = append(errs, s.bindControl(*entry.Control, values))
		case entry.Group != nil:
			value := values.Get(entry.Group.Name)
			if value == "" {
				continue
			}
			if err := s.Choose(entry.Group.Name, value); err != nil && !errors.Is(err, surface.ErrUnknownOption) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Surface) bindControl(ctrl surface.Control, values url.Values) error {
	if ctrl.ID == "" {
		return nil
	}
	switch ctrl.Kind {
	case surface.KindInput, surface.KindTextArea:
		return s.SetText(ctrl.ID, values.Get(ctrl.ID))
	case surface.KindCheckbox:
		return s.SetChecked(ctrl.ID, values.Has(ctrl.ID))
	case surface.KindSelect:
		value := values.Get(ctrl.ID)
		if !slices.Contains(ctrl.Options, value) {
			value = ""
		}
		return s.SelectOption(ctrl.ID, value)
	}
	return nil
}

func (s *Surface) writeControl(b *strings.Builder, ctrl surface.Control, state surface.State) {
	b.WriteString(`<div`)
	attr(b, "class", s.classes.Field)
	attr(b, "data-kind", ctrl.Kind.String())
	b.WriteString(">\n")

	if ctrl.Kind != surface.KindCheckbox {
		s.writeLabel(b, ctrl.ID, ctrl.Label)
	}

	switch ctrl.Kind {
	case surface.KindInput:
		b.WriteString(`  <input`)
		s.controlAttrs(b, ctrl)
		attr(b, "type", ctrl.InputType)
		if ctrl.Placeholder != "" {
			attr(b, "placeholder", ctrl.Placeholder)
		}
		attr(b, "value", state.Text)
		b.WriteString(">\n")

	case surface.KindTextArea:
		b.WriteString(`  <textarea`)
		s.controlAttrs(b, ctrl)
		if ctrl.Placeholder != "" {
			attr(b, "placeholder", ctrl.Placeholder)
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(state.Text))
		b.WriteString("</textarea>\n")

	case surface.KindSelect:
		b.WriteString(`  <select`)
		s.controlAttrs(b, ctrl)
		b.WriteString(">\n")
		b.WriteString(`    <option value=""`)
		if state.Text == "" {
			b.WriteString(" selected")
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(ctrl.PlaceholderOption))
		b.WriteString("</option>\n")
		for _, option := range ctrl.Options {
			b.WriteString(`    <option`)
			attr(b, "value", option)
			if option == state.Text {
				b.WriteString(" selected")
			}
			b.WriteString(">")
			b.WriteString(html.EscapeString(option))
			b.WriteString("</option>\n")
		}
		b.WriteString("  </select>\n")

	case surface.KindCheckbox:
		b.WriteString(`  <label`)
		attr(b, "class", s.classes.Choice)
		b.WriteString(`><input`)
		s.controlAttrs(b, ctrl)
		attr(b, "type", "checkbox")
		if state.Checked {
			b.WriteString(" checked")
		}
		b.WriteString("> ")
		b.WriteString(html.EscapeString(ctrl.Label))
		b.WriteString("</label>\n")
	}

	s.writeHint(b, ctrl.Hint)
	b.WriteString("</div>\n")
}

func (s *Surface) writeGroup(b *strings.Builder, group surface.Group, peers []surface.Control, chosen string) {
	b.WriteString(`<fieldset`)
	attr(b, "class", s.classes.Fieldset)
	attr(b, "id", group.Name)
	b.WriteString(">\n  <legend")
	attr(b, "class", s.classes.Label)
	b.WriteString(">")
	b.WriteString(html.EscapeString(group.Label))
	b.WriteString("</legend>\n")
	for _, peer := range peers {
		b.WriteString(`  <label`)
		attr(b, "class", s.classes.Choice)
		b.WriteString(`><input`)
		if peer.ID != "" {
			attr(b, "id", peer.ID)
		}
		attr(b, "name", group.Name)
		attr(b, "type", "radio")
		attr(b, "value", peer.Value)
		if chosen != "" && peer.Value == chosen {
			b.WriteString(" checked")
		}
		b.WriteString("> ")
		b.WriteString(html.EscapeString(peer.Label))
		b.WriteString("</label>\n")
	}
	s.writeHint(b, group.Hint)
	b.WriteString("</fieldset>\n")
}

func (s *Surface) writeLabel(b *strings.Builder, id, label string) {
	b.WriteString(`  <label`)
	attr(b, "for", id)
	attr(b, "class", s.classes.Label)
	b.WriteString(">")
	b.WriteString(html.EscapeString(label))
	b.WriteString("</label>\n")
}

func (s *Surface) writeHint(b *strings.Builder, hint string) {
	if strings.TrimSpace(hint) == "" {
		return
	}
	b.WriteString(`  <small`)
	attr(b, "class", s.classes.Hint)
	b.WriteString(">")
	b.WriteString(html.EscapeString(hint))
	b.WriteString("</small>\n")
}

func (s *Surface) controlAttrs(b *strings.Builder, ctrl surface.Control) {
	attr(b, "id", ctrl.ID)
	attr(b, "name", ctrl.ID)
	attr(b, "class", s.classes.Control)
}

func attr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}

// FormClass is the class the enclosing form element should carry.
func (s *Surface) FormClass() string {
	return s.classes.Form
}
