package session

import (
	"github.com/goliatone/go-formflow/pkg/present"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Phase is the orchestrator's current step.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseGenerating
	PhaseReady
	PhaseSubmitting
	PhaseRecovering
	PhaseRefreshingAnalytics
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseGenerating:
		return "generating"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseRecovering:
		return "recovering"
	case PhaseRefreshingAnalytics:
		return "refreshing-analytics"
	default:
		return "unknown"
	}
}

// Channel names a status line.
type Channel string

const (
	// ChannelGenerate reports generation progress.
	ChannelGenerate Channel = "generate"
	// ChannelSubmit reports submit and recovery progress.
	ChannelSubmit Channel = "submit"
	// ChannelAnalytics reports analytics refresh failures.
	ChannelAnalytics Channel = "analytics"
)

// Status strings written by the orchestrator.
const (
	StatusBlankDescription = "Please enter a description."
	StatusGenerating       = "Generating..."
	StatusDone             = "Done."
	StatusValidating       = "Validating..."
	StatusValid            = "Valid ✅"
	StatusInvalid          = "Invalid ❌"
	StatusRecovering       = "Recovering suggestions..."
	StatusSuggestionsReady = "Suggestions ready."
)

// State is a copy of everything a UI needs to draw the session. Version
// increases on every change so views can drop out-of-order updates.
type State struct {
	Version      uint64
	Phase        Phase
	FormID       schema.FormID
	Generation   uint64
	FormVisible  bool
	Summary      present.FormSummary
	Fields       []render.RenderedField
	Status       map[Channel]string
	Output       []present.Part
	Analytics    present.AnalyticsView
	HasAnalytics bool
}

// StatusText returns the text of one status line.
func (s State) StatusText(channel Channel) string {
	return s.Status[channel]
}

// View receives state updates. Implementations must not block for long; they
// are called synchronously from the operation that changed the state.
type View interface {
	Update(State)
}

// ViewFunc adapts a function to View.
type ViewFunc func(State)

// Update implements View.
func (f ViewFunc) Update(state State) {
	f(state)
}
