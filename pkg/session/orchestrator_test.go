package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/client"
	"github.com/goliatone/go-formflow/pkg/present"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/surface"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	backend *testsupport.Backend
	surface *surface.Memory
	orch    *session.Orchestrator
	states  chan session.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := surface.NewMemory()
	renderer, err := render.New(mem)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	h := &harness{
		backend: testsupport.NewBackend(),
		surface: mem,
		states:  make(chan session.State, 256),
	}
	h.orch, err = session.New(h.backend, renderer, session.WithView(session.ViewFunc(func(st session.State) {
		select {
		case h.states <- st:
		default:
		}
	})))
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return h
}

func waitArrival(t *testing.T, backend *testsupport.Backend, op string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-backend.Arrived():
			if got == op {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", op)
		}
	}
}

func TestGenerateRequiresDescription(t *testing.T) {
	h := newHarness(t)

	err := h.orch.Generate(context.Background(), "   ")
	if !errors.Is(err, session.ErrBlankDescription) {
		t.Fatalf("expected ErrBlankDescription, got %v", err)
	}
	if len(h.backend.Calls()) != 0 {
		t.Fatalf("no request expected, got %v", h.backend.Ops())
	}
	state := h.orch.State()
	if state.StatusText(session.ChannelGenerate) != session.StatusBlankDescription {
		t.Fatalf("unexpected status %q", state.StatusText(session.ChannelGenerate))
	}
	if state.FormVisible || !h.orch.Snapshot().Empty() {
		t.Fatalf("session must stay empty")
	}
}

func TestOperationsAreNoOpsWithoutSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for name, op := range map[string]func(context.Context) error{
		"submit":  h.orch.Submit,
		"recover": h.orch.Recover,
		"refresh": h.orch.RefreshAnalytics,
	} {
		if err := op(ctx); !errors.Is(err, session.ErrNoSession) {
			t.Fatalf("%s: expected ErrNoSession, got %v", name, err)
		}
	}
	if len(h.backend.Calls()) != 0 {
		t.Fatalf("no request expected, got %v", h.backend.Ops())
	}
	if h.orch.State().Version != 0 {
		t.Fatalf("state must not change")
	}
}

func TestContactFormScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", `{"fields":[{"name":"email","type":"email","required":true}]}`), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: false, Errors: schema.FieldErrors{{Field: "email", Message: "required"}}}, nil, nil).
		OnAnalytics(schema.Analytics{TotalSubmissions: 1, Insights: schema.NewValue([]byte(`{"avgTime":12}`))}, nil, nil)

	if err := h.orch.Generate(ctx, "contact form"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	state := h.orch.State()
	if !state.FormVisible || state.Phase != session.PhaseReady {
		t.Fatalf("form should be visible and ready, got %+v", state)
	}
	if state.StatusText(session.ChannelGenerate) != session.StatusDone {
		t.Fatalf("unexpected generate status %q", state.StatusText(session.ChannelGenerate))
	}
	if len(state.Fields) != 1 || state.Fields[0].Kind != surface.KindInput {
		t.Fatalf("expected one input, got %+v", state.Fields)
	}
	if state.Summary.Meta != "form_id: f1" {
		t.Fatalf("unexpected meta %q", state.Summary.Meta)
	}

	if err := h.orch.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	calls := h.backend.Calls()
	if diff := cmp.Diff([]string{"create_form", "analytics", "validate_submission", "analytics"}, h.backend.Ops()); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(schema.Submission{"email": ""}, calls[2].Submission); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if calls[2].FormID != "f1" || calls[3].FormID != "f1" {
		t.Fatalf("requests should target f1, got %+v", calls)
	}

	state = h.orch.State()
	if state.StatusText(session.ChannelSubmit) != session.StatusInvalid {
		t.Fatalf("unexpected submit status %q", state.StatusText(session.ChannelSubmit))
	}
	text := present.PartsText(state.Output, present.PlainStyles())
	if diff := cmp.Diff(present.FailIndicator+"\n  • email: required", text); diff != "" {
		t.Fatalf("presenter mismatch (-want +got):\n%s", diff)
	}
	if !state.HasAnalytics || state.Analytics.Count != "1 submissions" {
		t.Fatalf("analytics not refreshed: %+v", state.Analytics)
	}
}

func TestSubmitValidRefreshesAnalytics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", `{"fields":[{"name":"agree","type":"checkbox"}]}`), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: true}, nil, nil).
		OnAnalytics(schema.Analytics{TotalSubmissions: 3}, nil, nil)

	if err := h.orch.Generate(ctx, "consent"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := h.surface.SetChecked(render.ControlID("agree"), true); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := h.orch.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	calls := h.backend.Calls()
	if diff := cmp.Diff(schema.Submission{"agree": true}, calls[2].Submission); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	state := h.orch.State()
	if state.StatusText(session.ChannelSubmit) != session.StatusValid {
		t.Fatalf("unexpected status %q", state.StatusText(session.ChannelSubmit))
	}
	if state.Analytics.Count != "3 submissions" {
		t.Fatalf("unexpected analytics %+v", state.Analytics)
	}
}

func TestGenerateFailureLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnCreate(schema.CreateFormResult{}, &client.HTTPError{StatusCode: 500, Body: schema.NewValue([]byte(`{"detail":"boom"}`))}, nil)

	if err := h.orch.Generate(ctx, "first"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	before := h.orch.Snapshot()

	err := h.orch.Generate(ctx, "second")
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}

	after := h.orch.Snapshot()
	if diff := cmp.Diff(before.Generation, after.Generation); diff != "" {
		t.Fatalf("session replaced on failure:\n%s", diff)
	}
	if after.FormID.String() != "f1" {
		t.Fatalf("form id changed to %q", after.FormID)
	}
	state := h.orch.State()
	if got := state.StatusText(session.ChannelGenerate); got != `HTTP 500: {"detail":"boom"}` {
		t.Fatalf("unexpected status %q", got)
	}
	if _, ok := h.surface.Control(render.ControlID("email")); !ok {
		t.Fatalf("rendered form should survive a failed generate")
	}
}

func TestGenerateReplacesSessionAndForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", `{"fields":[{"name":"old","type":"text"}]}`), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnCreate(testsupport.CreateResult(t, "f2", `{"fields":[{"name":"new","type":"radio","options":["A","B"]}]}`), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: true}, nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil)

	for _, description := range []string{"one", "two"} {
		if err := h.orch.Generate(ctx, description); err != nil {
			t.Fatalf("generate %s: %v", description, err)
		}
	}
	snap := h.orch.Snapshot()
	if snap.FormID.String() != "f2" || snap.Generation != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if diff := cmp.Diff([]string{"new"}, snap.Schema.Names()); diff != "" {
		t.Fatalf("schema mismatch:\n%s", diff)
	}

	if err := h.surface.Choose(render.ControlID("new"), "B"); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if err := h.orch.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	calls := h.backend.Calls()
	last := calls[len(calls)-2]
	if diff := cmp.Diff(schema.Submission{"new": "B"}, last.Submission); diff != "" {
		t.Fatalf("submission leaked fields (-want +got):\n%s", diff)
	}
}

func TestRecoverAppendsSuggestionsWithoutAnalytics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: false, Errors: schema.FieldErrors{{Field: "email", Message: "required"}}}, nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnRecover(schema.Recovery{Suggestions: schema.NewValue([]byte(`{"email":{"message":"Provide a valid email address."}}`))}, nil, nil)

	if err := h.orch.Generate(ctx, "contact"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := h.orch.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := h.orch.Recover(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}

	if diff := cmp.Diff([]string{"create_form", "analytics", "validate_submission", "analytics", "recover"}, h.backend.Ops()); diff != "" {
		t.Fatalf("recover must not refresh analytics (-want +got):\n%s", diff)
	}
	state := h.orch.State()
	kinds := make([]present.PartKind, 0, len(state.Output))
	for _, part := range state.Output {
		kinds = append(kinds, part.Kind)
	}
	if diff := cmp.Diff([]present.PartKind{present.PartVerdict, present.PartErrors, present.PartSuggestions}, kinds); diff != "" {
		t.Fatalf("suggestions should append (-want +got):\n%s", diff)
	}
	if state.StatusText(session.ChannelSubmit) != session.StatusSuggestionsReady {
		t.Fatalf("unexpected status %q", state.StatusText(session.ChannelSubmit))
	}
}

func TestSubmitFailureSurfacesError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{}, &client.HTTPError{StatusCode: 404, Body: schema.NewValue([]byte(`{"detail":"Form not found"}`))}, nil)

	if err := h.orch.Generate(ctx, "contact"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := h.orch.Submit(ctx); client.StatusCode(err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
	state := h.orch.State()
	if got := state.StatusText(session.ChannelSubmit); got != `HTTP 404: {"detail":"Form not found"}` {
		t.Fatalf("unexpected status %q", got)
	}
	if state.Phase != session.PhaseReady {
		t.Fatalf("phase should settle, got %s", state.Phase)
	}
	if diff := cmp.Diff([]string{"create_form", "analytics", "validate_submission"}, h.backend.Ops()); diff != "" {
		t.Fatalf("failed submit must not refresh analytics (-want +got):\n%s", diff)
	}
}

func TestStaleSubmitResultIsDropped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	release := make(chan struct{})
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: true}, nil, release).
		OnCreate(testsupport.CreateResult(t, "f2", `{"fields":[{"name":"agree","type":"checkbox"}]}`), nil, nil).
		OnAnalytics(schema.Analytics{TotalSubmissions: 0}, nil, nil)

	if err := h.orch.Generate(ctx, "first"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- h.orch.Submit(ctx)
	}()
	waitArrival(t, h.backend, "validate_submission")

	if err := h.orch.Generate(ctx, "second"); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, session.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}

	calls := h.backend.Calls()
	if calls[2].FormID != "f1" {
		t.Fatalf("in-flight submit must keep its captured id, got %q", calls[2].FormID)
	}
	state := h.orch.State()
	if state.StatusText(session.ChannelSubmit) == session.StatusValid || len(state.Output) != 0 {
		t.Fatalf("stale verdict leaked into the new session: %+v", state)
	}
	last := calls[len(calls)-1]
	if last.Op != "analytics" || last.FormID != "f2" {
		t.Fatalf("expected the last refresh to target f2, got %+v", last)
	}
}

func TestRefreshForReplacedSessionLeavesNewPhaseAlone(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewBackend().
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil).
		OnValidate(schema.ValidationResult{Valid: true}, nil, nil).
		OnCreate(testsupport.CreateResult(t, "f2", `{"fields":[{"name":"agree","type":"checkbox"}]}`), nil, nil).
		OnAnalytics(schema.Analytics{TotalSubmissions: 3}, nil, nil)
	renderer, err := render.New(surface.NewMemory())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	// A new form is generated right after the verdict lands, before the
	// submit's analytics refresh starts.
	var orch *session.Orchestrator
	regenerated := false
	var regenerateErr error
	view := session.ViewFunc(func(st session.State) {
		if regenerated || st.FormID.String() != "f1" || st.StatusText(session.ChannelSubmit) != session.StatusValid {
			return
		}
		regenerated = true
		regenerateErr = orch.Generate(ctx, "second")
	})
	orch, err = session.New(backend, renderer, session.WithView(view))
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	if err := orch.Generate(ctx, "first"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := orch.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !regenerated || regenerateErr != nil {
		t.Fatalf("second generate did not run cleanly: ran=%v err=%v", regenerated, regenerateErr)
	}

	state := orch.State()
	if state.Phase != session.PhaseReady {
		t.Fatalf("new session phase = %s, want ready", state.Phase)
	}
	if state.FormID.String() != "f2" || state.Analytics.Count != "3 submissions" {
		t.Fatalf("unexpected state after regeneration: %+v", state)
	}
	wantOps := []string{"create_form", "analytics", "validate_submission", "create_form", "analytics"}
	if diff := cmp.Diff(wantOps, backend.Ops()); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestSlowGenerateCannotOverwriteNewerOne(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	release := make(chan struct{})
	h.backend.
		OnCreate(testsupport.CreateResult(t, "slow", testsupport.ContactSchema), nil, release).
		OnCreate(testsupport.CreateResult(t, "fast", `{"fields":[{"name":"agree","type":"checkbox"}]}`), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- h.orch.Generate(ctx, "slow")
	}()
	waitArrival(t, h.backend, "create_form")

	if err := h.orch.Generate(ctx, "fast"); err != nil {
		t.Fatalf("fast generate: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, session.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := h.orch.Snapshot().FormID.String(); got != "fast" {
		t.Fatalf("expected fast form to stay current, got %q", got)
	}
}

func TestAnalyticsFailureReported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, errors.New("network down"), nil).
		OnAnalytics(schema.Analytics{TotalSubmissions: 2}, nil, nil)

	if err := h.orch.Generate(ctx, "contact"); err != nil {
		t.Fatalf("generate should succeed even when analytics fails: %v", err)
	}
	state := h.orch.State()
	if !strings.Contains(state.StatusText(session.ChannelAnalytics), "network down") || state.HasAnalytics {
		t.Fatalf("analytics failure not reported: %+v", state)
	}

	if err := h.orch.RefreshAnalytics(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	state = h.orch.State()
	if state.StatusText(session.ChannelAnalytics) != "" || state.Analytics.Count != "2 submissions" {
		t.Fatalf("refresh did not recover: %+v", state)
	}
}

func TestViewReceivesVersionedStates(t *testing.T) {
	h := newHarness(t)
	h.backend.
		OnCreate(testsupport.CreateResult(t, "f1", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil)

	if err := h.orch.Generate(context.Background(), "contact"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	close(h.states)

	var versions []uint64
	var phases []session.Phase
	for st := range h.states {
		versions = append(versions, st.Version)
		phases = append(phases, st.Phase)
	}
	for idx := 1; idx < len(versions); idx++ {
		if versions[idx] <= versions[idx-1] {
			t.Fatalf("versions not increasing: %v", versions)
		}
	}
	want := []session.Phase{session.PhaseGenerating, session.PhaseReady, session.PhaseRefreshingAnalytics, session.PhaseReady}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Fatalf("phase sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreReplaceIf(t *testing.T) {
	store := session.NewStore()
	first := store.Replace(schema.NewFormID("a"), schema.Schema{})
	if first.Generation != 1 {
		t.Fatalf("unexpected generation %d", first.Generation)
	}
	if _, ok := store.ReplaceIf(0, schema.NewFormID("b"), schema.Schema{}); ok {
		t.Fatalf("stale ReplaceIf must fail")
	}
	second, ok := store.ReplaceIf(1, schema.NewFormID("c"), schema.Schema{})
	if !ok || second.FormID.String() != "c" {
		t.Fatalf("ReplaceIf should succeed, got %+v", second)
	}
	if store.IsCurrent(first) || !store.IsCurrent(second) {
		t.Fatalf("IsCurrent mismatch")
	}
}
