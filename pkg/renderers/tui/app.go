// Package tui drives a form session from the terminal. Forms are rendered onto
// an in-memory surface and filled through survey prompts; results are printed
// with lipgloss styles.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/present"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/surface"
)

// Action is one entry of the main menu.
type Action string

const (
	ActionGenerate  Action = "Generate a new form"
	ActionFill      Action = "Fill in the form"
	ActionSubmit    Action = "Submit"
	ActionRecover   Action = "Suggest fixes"
	ActionAnalytics Action = "Refresh analytics"
	ActionQuit      Action = "Quit"
)

// App is the terminal front end of a session.
type App struct {
	orch   *session.Orchestrator
	mem    *surface.Memory
	driver PromptDriver
	styles present.Styles
	out    io.Writer
	logger *zap.Logger
}

// New wires an app around an orchestrator whose renderer targets mem.
func New(orch *session.Orchestrator, mem *surface.Memory, options ...Option) (*App, error) {
	if orch == nil {
		return nil, errors.New("tui: orchestrator is required")
	}
	if mem == nil {
		return nil, errors.New("tui: memory surface is required")
	}
	a := &App{
		orch:   orch,
		mem:    mem,
		styles: present.DefaultStyles(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	if a.driver == nil {
		a.driver = NewSurveyDriver(a.out)
	}
	return a, nil
}

// Actions lists the menu entries available in the current session.
func (a *App) Actions() []Action {
	if a.orch.Snapshot().Empty() {
		return []Action{ActionGenerate, ActionQuit}
	}
	return []Action{ActionFill, ActionSubmit, ActionRecover, ActionAnalytics, ActionGenerate, ActionQuit}
}

// Run shows the menu until the user quits or aborts.
func (a *App) Run(ctx context.Context) error {
	for {
		actions := a.Actions()
		labels := make([]string, len(actions))
		for idx, action := range actions {
			labels[idx] = string(action)
		}
		idx, err := a.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels})
		if err != nil {
			return a.finish(err)
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}
		if actions[idx] == ActionQuit {
			return nil
		}
		if err := a.Do(ctx, actions[idx]); err != nil {
			return a.finish(err)
		}
	}
}

func (a *App) finish(err error) error {
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

// Do performs one action and prints the resulting state. Backend failures are
// reported through the status lines; only prompt and context errors are
// returned.
func (a *App) Do(ctx context.Context, action Action) error {
	switch action {
	case ActionGenerate:
		description, err := a.driver.Input(ctx, InputConfig{
			Message: "Describe the form you need",
			Help:    "for example: a contact form with name, email and message",
		})
		if err != nil {
			return err
		}
		a.report("generate", a.orch.Generate(ctx, description))
		return a.show(ctx, a.generateView())

	case ActionFill:
		return Fill(ctx, a.driver, a.mem)

	case ActionSubmit:
		a.report("submit", a.orch.Submit(ctx))
		return a.show(ctx, a.submitView(), a.analyticsView())

	case ActionRecover:
		a.report("recover", a.orch.Recover(ctx))
		return a.show(ctx, a.submitView())

	case ActionAnalytics:
		a.report("analytics", a.orch.RefreshAnalytics(ctx))
		return a.show(ctx, a.analyticsView())

	case ActionQuit:
		return nil
	}
	return fmt.Errorf("tui: unknown action %q", action)
}

func (a *App) report(op string, err error) {
	if err != nil {
		a.logger.Debug("action finished with error", zap.String("action", op), zap.Error(err))
	}
}

func (a *App) show(ctx context.Context, sections ...string) error {
	var parts []string
	for _, section := range sections {
		if strings.TrimSpace(section) != "" {
			parts = append(parts, section)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return a.driver.Info(ctx, strings.Join(parts, "\n\n"))
}

func (a *App) generateView() string {
	st := a.orch.State()
	lines := []string{a.styles.Muted.Render(st.StatusText(session.ChannelGenerate))}
	if st.FormVisible {
		lines = append(lines, st.Summary.Text(a.styles))
		for _, field := range st.Fields {
			lines = append(lines, "  - "+field.Name+" ("+string(field.Type)+")")
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) submitView() string {
	st := a.orch.State()
	lines := []string{a.styles.Muted.Render(st.StatusText(session.ChannelSubmit))}
	if len(st.Output) > 0 {
		lines = append(lines, present.PartsText(st.Output, a.styles))
	}
	return strings.Join(lines, "\n")
}

func (a *App) analyticsView() string {
	st := a.orch.State()
	var lines []string
	if status := st.StatusText(session.ChannelAnalytics); status != "" {
		lines = append(lines, a.styles.Fail.Render(status))
	}
	if st.HasAnalytics {
		lines = append(lines, st.Analytics.Text(a.styles))
	}
	return strings.Join(lines, "\n")
}
