package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/present"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	// ErrBlankDescription is returned by Generate when the description is
	// empty or whitespace. No request is made.
	ErrBlankDescription = errors.New("session: description is required")
	// ErrNoSession is returned by Submit, Recover and RefreshAnalytics before
	// any form has been generated. Nothing happens in that case.
	ErrNoSession = errors.New("session: no form generated yet")
	// ErrSuperseded is returned when an operation finished after a newer form
	// replaced the session it started with. Its result was dropped.
	ErrSuperseded = errors.New("session: result superseded by a newer form")
)

// Backend is the remote collaborator the orchestrator drives.
type Backend interface {
	CreateForm(ctx context.Context, description string) (schema.CreateFormResult, error)
	Validate(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.ValidationResult, error)
	Recover(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.Recovery, error)
	Analytics(ctx context.Context, id schema.FormID) (schema.Analytics, error)
}

// Renderer renders schemas and collects submissions from the rendered surface.
type Renderer interface {
	RenderForm(sch schema.Schema) ([]render.RenderedField, error)
	Collect(sch schema.Schema) schema.Submission
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger for transition and failure diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithView registers a view notified after every state change.
func WithView(view View) Option {
	return func(o *Orchestrator) {
		if view != nil {
			o.views = append(o.views, view)
		}
	}
}

// WithStore shares a session store.
func WithStore(store *Store) Option {
	return func(o *Orchestrator) {
		if store != nil {
			o.store = store
		}
	}
}

// Orchestrator sequences generate, submit, recover and analytics refresh
// around the single current-form session.
type Orchestrator struct {
	backend  Backend
	renderer Renderer
	store    *Store
	block    *present.Block
	logger   *zap.Logger
	views    []View

	// surfaceMu serialises rendering and collection on the shared surface.
	surfaceMu sync.Mutex

	mu    sync.RWMutex
	state State
}

// New constructs an orchestrator.
func New(backend Backend, renderer Renderer, options ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, errors.New("session: backend is required")
	}
	if renderer == nil {
		return nil, errors.New("session: renderer is required")
	}
	o := &Orchestrator{
		backend:  backend,
		renderer: renderer,
		store:    NewStore(),
		block:    present.NewBlock(),
		logger:   zap.NewNop(),
		state: State{
			Phase:  PhaseEmpty,
			Status: map[Channel]string{},
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o, nil
}

// Snapshot returns the current session.
func (o *Orchestrator) Snapshot() Snapshot {
	return o.store.Current()
}

// State returns a copy of the UI state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.copyStateLocked()
}

// Generate asks the backend for a new form. On success the session is
// replaced, the form rendered and analytics refreshed; on failure the session
// is left as it was.
func (o *Orchestrator) Generate(ctx context.Context, description string) error {
	if strings.TrimSpace(description) == "" {
		o.update(func(st *State) {
			st.Status[ChannelGenerate] = StatusBlankDescription
		})
		return ErrBlankDescription
	}

	base := o.store.Current()
	o.update(func(st *State) {
		st.Phase = PhaseGenerating
		st.Status[ChannelGenerate] = StatusGenerating
	})
	o.logger.Debug("generate started", zap.Uint64("generation", base.Generation))

	result, err := o.backend.CreateForm(ctx, description)
	if err != nil {
		o.logger.Warn("generate failed", zap.Error(err))
		o.applyIfCurrent(base, "generate", func(st *State) {
			st.Phase = settledPhase(base)
			st.Status[ChannelGenerate] = err.Error()
		})
		return fmt.Errorf("session: generate: %w", err)
	}

	o.surfaceMu.Lock()
	snap, ok := o.store.ReplaceIf(base.Generation, result.FormID, result.Schema)
	if !ok {
		o.surfaceMu.Unlock()
		o.logger.Info("generate result dropped",
			zap.String("form_id", result.FormID.String()),
			zap.Uint64("started_at", base.Generation),
			zap.Uint64("current", snap.Generation))
		return ErrSuperseded
	}
	fields, renderErr := o.renderer.RenderForm(snap.Schema)
	o.block.Reset()
	state := o.commitLocked(func(st *State) {
		st.Phase = PhaseReady
		st.FormID = snap.FormID
		st.Generation = snap.Generation
		st.FormVisible = true
		st.Summary = present.NewFormSummary(snap.FormID, snap.Schema)
		st.Fields = fields
		st.Output = nil
		st.Analytics = present.AnalyticsView{}
		st.HasAnalytics = false
		st.Status[ChannelSubmit] = ""
		st.Status[ChannelAnalytics] = ""
		if renderErr != nil {
			st.Status[ChannelGenerate] = renderErr.Error()
		} else {
			st.Status[ChannelGenerate] = StatusDone
		}
	})
	o.surfaceMu.Unlock()
	o.notify(state)

	o.logger.Debug("form generated",
		zap.String("form_id", snap.FormID.String()),
		zap.Int("fields", len(fields)),
		zap.Uint64("generation", snap.Generation))
	if renderErr != nil {
		o.logger.Warn("render failed", zap.Error(renderErr))
		return fmt.Errorf("session: render: %w", renderErr)
	}

	_ = o.refresh(ctx, snap)
	return nil
}

// Submit collects the rendered form and asks the backend to validate it, then
// refreshes analytics regardless of the verdict.
func (o *Orchestrator) Submit(ctx context.Context) error {
	snap := o.store.Current()
	if snap.Empty() {
		return ErrNoSession
	}

	if !o.applyIfCurrent(snap, "submit", func(st *State) {
		st.Phase = PhaseSubmitting
		st.Status[ChannelSubmit] = StatusValidating
	}) {
		return ErrSuperseded
	}

	submission, err := o.collect(snap)
	if err != nil {
		return err
	}
	result, err := o.backend.Validate(ctx, snap.FormID, submission)
	if err != nil {
		return o.fail(snap, "submit", err)
	}

	if !o.applyIfCurrent(snap, "submit", func(st *State) {
		o.block.ShowValidation(result)
		st.Output = o.block.Parts()
		st.Phase = PhaseReady
		if result.Valid {
			st.Status[ChannelSubmit] = StatusValid
		} else {
			st.Status[ChannelSubmit] = StatusInvalid
		}
	}) {
		return ErrSuperseded
	}
	o.logger.Debug("submission validated",
		zap.String("form_id", snap.FormID.String()),
		zap.Bool("valid", result.Valid),
		zap.Int("errors", len(result.Errors)))

	_ = o.refresh(ctx, snap)
	return nil
}

// Recover collects the rendered form and appends the backend's suggestions to
// the output block. Analytics are not refreshed.
func (o *Orchestrator) Recover(ctx context.Context) error {
	snap := o.store.Current()
	if snap.Empty() {
		return ErrNoSession
	}

	if !o.applyIfCurrent(snap, "recover", func(st *State) {
		st.Phase = PhaseRecovering
		st.Status[ChannelSubmit] = StatusRecovering
	}) {
		return ErrSuperseded
	}

	submission, err := o.collect(snap)
	if err != nil {
		return err
	}
	recovery, err := o.backend.Recover(ctx, snap.FormID, submission)
	if err != nil {
		return o.fail(snap, "recover", err)
	}

	if !o.applyIfCurrent(snap, "recover", func(st *State) {
		o.block.AppendSuggestions(recovery.Suggestions)
		st.Output = o.block.Parts()
		st.Phase = PhaseReady
		st.Status[ChannelSubmit] = StatusSuggestionsReady
	}) {
		return ErrSuperseded
	}
	return nil
}

// RefreshAnalytics fetches insights for the form that is current at call
// time.
func (o *Orchestrator) RefreshAnalytics(ctx context.Context) error {
	snap := o.store.Current()
	if snap.Empty() {
		return ErrNoSession
	}
	return o.refresh(ctx, snap)
}

func (o *Orchestrator) refresh(ctx context.Context, snap Snapshot) error {
	if !o.applyIfCurrent(snap, "analytics", func(st *State) {
		st.Phase = PhaseRefreshingAnalytics
	}) {
		return ErrSuperseded
	}

	analytics, err := o.backend.Analytics(ctx, snap.FormID)
	if err != nil {
		o.logger.Warn("analytics refresh failed",
			zap.String("form_id", snap.FormID.String()),
			zap.Error(err))
		if !o.applyIfCurrent(snap, "analytics", func(st *State) {
			st.Phase = PhaseReady
			st.Status[ChannelAnalytics] = err.Error()
		}) {
			return ErrSuperseded
		}
		return fmt.Errorf("session: analytics: %w", err)
	}

	if !o.applyIfCurrent(snap, "analytics", func(st *State) {
		st.Phase = PhaseReady
		st.Analytics = present.NewAnalyticsView(analytics)
		st.HasAnalytics = true
		st.Status[ChannelAnalytics] = ""
	}) {
		return ErrSuperseded
	}
	return nil
}

func (o *Orchestrator) collect(snap Snapshot) (schema.Submission, error) {
	o.surfaceMu.Lock()
	defer o.surfaceMu.Unlock()
	if !o.store.IsCurrent(snap) {
		return nil, ErrSuperseded
	}
	return o.renderer.Collect(snap.Schema), nil
}

func (o *Orchestrator) fail(snap Snapshot, op string, err error) error {
	o.logger.Warn(op+" failed",
		zap.String("form_id", snap.FormID.String()),
		zap.Error(err))
	if !o.applyIfCurrent(snap, op, func(st *State) {
		st.Phase = PhaseReady
		st.Status[ChannelSubmit] = err.Error()
	}) {
		return ErrSuperseded
	}
	return fmt.Errorf("session: %s: %w", op, err)
}

// applyIfCurrent runs mutate only when snap is still the live session.
// Superseded results are logged and dropped.
func (o *Orchestrator) applyIfCurrent(snap Snapshot, op string, mutate func(*State)) bool {
	o.surfaceMu.Lock()
	if !o.store.IsCurrent(snap) {
		o.surfaceMu.Unlock()
		o.logger.Info("stale result dropped",
			zap.String("operation", op),
			zap.String("form_id", snap.FormID.String()),
			zap.Uint64("generation", snap.Generation))
		return false
	}
	state := o.commitLocked(mutate)
	o.surfaceMu.Unlock()

	o.notify(state)
	return true
}

func (o *Orchestrator) update(mutate func(*State)) {
	o.notify(o.commitLocked(mutate))
}

// commitLocked applies mutate to the UI state and returns a copy. Callers
// that also touch the surface hold surfaceMu around it.
func (o *Orchestrator) commitLocked(mutate func(*State)) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.state)
	o.state.Version++
	return o.copyStateLocked()
}

func (o *Orchestrator) notify(state State) {
	for _, view := range o.views {
		view.Update(state)
	}
}

func (o *Orchestrator) copyStateLocked() State {
	out := o.state
	out.Status = maps.Clone(o.state.Status)
	out.Fields = slices.Clone(o.state.Fields)
	out.Output = slices.Clone(o.state.Output)
	return out
}

func settledPhase(snap Snapshot) Phase {
	if snap.Empty() {
		return PhaseEmpty
	}
	return PhaseReady
}
