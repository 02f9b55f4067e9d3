package surface

import (
	"fmt"
	"slices"
	"sync"
)

// Entry is one top-level element of a memory surface layout: either a
// standalone control or a group with its radio peers.
type Entry struct {
	Control *Control
	Group   *Group
	Peers   []Control
}

// Memory is an in-process Surface. It backs the terminal renderer and tests,
// and exposes the interactions a user would perform (typing, checking,
// choosing) as methods.
type Memory struct {
	mu       sync.RWMutex
	layout   []Entry
	controls map[string]Control
	states   map[string]State
	groups   map[string]int
	chosen   map[string]string
}

var _ Surface = (*Memory)(nil)

// NewMemory constructs an empty memory surface.
func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.layout = nil
	m.controls = make(map[string]Control)
	m.states = make(map[string]State)
	m.groups = make(map[string]int)
	m.chosen = make(map[string]string)
}

// Clear implements Surface.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// CreateControl implements Surface. Duplicate ids keep the first control so
// lookups stay deterministic.
func (m *Memory) CreateControl(ctrl Control) error {
	ctrl.Options = slices.Clone(ctrl.Options)

	m.mu.Lock()
	defer m.mu.Unlock()

	if ctrl.Kind == KindRadio {
		idx, ok := m.groups[ctrl.Group]
		if !ok {
			return fmt.Errorf("surface: radio %q references undeclared group %q", ctrl.ID, ctrl.Group)
		}
		m.layout[idx].Peers = append(m.layout[idx].Peers, ctrl)
	} else {
		entry := ctrl
		m.layout = append(m.layout, Entry{Control: &entry})
	}

	if ctrl.ID != "" {
		if _, exists := m.controls[ctrl.ID]; !exists {
			m.controls[ctrl.ID] = ctrl
			m.states[ctrl.ID] = State{}
		}
	}
	return nil
}

// SetGroup implements Surface.
func (m *Memory) SetGroup(group Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.groups[group.Name]; exists {
		return nil
	}
	entry := group
	m.layout = append(m.layout, Entry{Group: &entry})
	m.groups[group.Name] = len(m.layout) - 1
	return nil
}

// ReadControl implements Surface.
func (m *Memory) ReadControl(id string) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[id]
	return state, ok
}

// ReadGroup implements Surface.
func (m *Memory) ReadGroup(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.groups[name]; !ok {
		return "", false
	}
	return m.chosen[name], true
}

// Layout returns a copy of the rendered entries in creation order.
func (m *Memory) Layout() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.layout))
	for idx, entry := range m.layout {
		clone := Entry{Peers: slices.Clone(entry.Peers)}
		if entry.Control != nil {
			ctrl := *entry.Control
			clone.Control = &ctrl
		}
		if entry.Group != nil {
			group := *entry.Group
			clone.Group = &group
		}
		out[idx] = clone
	}
	return out
}

// Control returns the descriptor of a created control.
func (m *Memory) Control(id string) (Control, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl, ok := m.controls[id]
	return ctrl, ok
}

// SetText types text into an input or textarea.
func (m *Memory) SetText(id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controls[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	if ctrl.Kind != KindInput && ctrl.Kind != KindTextArea {
		return fmt.Errorf("%w: cannot type into %s %q", ErrKindMismatch, ctrl.Kind, id)
	}
	m.states[id] = State{Text: text}
	return nil
}

// SetChecked toggles a checkbox.
func (m *Memory) SetChecked(id string, checked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controls[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	if ctrl.Kind != KindCheckbox {
		return fmt.Errorf("%w: cannot check %s %q", ErrKindMismatch, ctrl.Kind, id)
	}
	m.states[id] = State{Checked: checked}
	return nil
}

// SelectOption chooses an option of a select control. The empty string
// re-selects the placeholder.
func (m *Memory) SelectOption(id, option string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.controls[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	if ctrl.Kind != KindSelect {
		return fmt.Errorf("%w: cannot select on %s %q", ErrKindMismatch, ctrl.Kind, id)
	}
	if option != "" && !slices.Contains(ctrl.Options, option) {
		return fmt.Errorf("%w: %q for %q", ErrUnknownOption, option, id)
	}
	m.states[id] = State{Text: option}
	return nil
}

// Choose activates the peer carrying value inside a group, deactivating the
// previously active one.
func (m *Memory) Choose(group, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.groups[group]
	if !ok {
		return fmt.Errorf("%w: group %q", ErrUnknownControl, group)
	}

	peers := m.layout[idx].Peers
	active := slices.IndexFunc(peers, func(peer Control) bool { return peer.Value == value })
	if active < 0 {
		return fmt.Errorf("%w: %q in group %q", ErrUnknownOption, value, group)
	}
	for i, peer := range peers {
		if peer.ID != "" {
			m.states[peer.ID] = State{Checked: i == active}
		}
	}
	m.chosen[group] = value
	return nil
}

// ClearGroup deactivates every peer of a group so it reads as unchosen.
func (m *Memory) ClearGroup(group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.groups[group]
	if !ok {
		return fmt.Errorf("%w: group %q", ErrUnknownControl, group)
	}
	for _, peer := range m.layout[idx].Peers {
		if peer.ID != "" {
			m.states[peer.ID] = State{}
		}
	}
	delete(m.chosen, group)
	return nil
}
