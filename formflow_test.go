package formflow

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:8000", nil)
	assert.Error(t, err)

	c, err := NewClient("http://127.0.0.1:8000/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL())
}

func TestNewTerminalWiresSession(t *testing.T) {
	backend := testsupport.NewBackend().
		OnCreate(testsupport.CreateResult(t, "3", testsupport.ContactSchema), nil, nil).
		OnAnalytics(schema.Analytics{}, nil, nil)
	app, err := NewTerminal(backend, nil, tui.WithPromptDriver(&scriptedDriver{input: "contact form"}))
	require.NoError(t, err)

	require.NoError(t, app.Do(context.Background(), tui.ActionGenerate))
	assert.Equal(t, []string{"create_form", "analytics"}, backend.Ops())
	assert.Contains(t, app.Actions(), tui.ActionSubmit)
}

func TestNewWebServesState(t *testing.T) {
	srv, err := NewWeb(testsupport.NewBackend(), nil)
	require.NoError(t, err)
	assert.Equal(t, "empty", srv.Current().Phase)
}

type scriptedDriver struct {
	input string
	info  []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	return d.input, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return 0, nil
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func TestEmbeddedAssets(t *testing.T) {
	page, err := fs.ReadFile(EmbeddedTemplates(), "page.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "state.FormHTML|safe")

	css, err := fs.ReadFile(StaticAssetsFS(), "formflow.css")
	require.NoError(t, err)
	assert.Contains(t, string(css), "--ff-accent")
}
