// Package formflow wires a schema-driven form session: a client for the form
// backend, a renderer targeting a surface, and the orchestrator behind either
// the terminal or the browser front end.
package formflow

import (
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/client"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/surface"
	"github.com/goliatone/go-formflow/pkg/webui"
)

// NewClient builds a backend client that logs through logger and tags every
// request with a fresh id.
func NewClient(baseURL string, logger *zap.Logger) (*client.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return client.New(baseURL,
		client.WithLogger(logger.Named("client")),
		client.WithRequestIDs(uuid.NewString),
	)
}

// NewTerminal wires a terminal session: forms render onto an in-memory
// surface that the prompt driver fills.
func NewTerminal(backend session.Backend, logger *zap.Logger, options ...tui.Option) (*tui.App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mem := surface.NewMemory()
	renderer, err := render.New(mem, render.WithLogger(logger.Named("render")))
	if err != nil {
		return nil, err
	}
	orch, err := session.New(backend, renderer, session.WithLogger(logger.Named("session")))
	if err != nil {
		return nil, err
	}
	return tui.New(orch, mem, append([]tui.Option{tui.WithLogger(logger.Named("tui"))}, options...)...)
}

// NewWeb wires a browser session served by the returned server.
func NewWeb(backend session.Backend, logger *zap.Logger, options ...webui.Option) (*webui.Server, error) {
	return webui.New(backend, append([]webui.Option{webui.WithLogger(logger)}, options...)...)
}

// EmbeddedTemplates exposes the built-in page templates.
func EmbeddedTemplates() fs.FS {
	return webui.TemplatesFS()
}

// StaticAssetsFS exposes the built-in stylesheet so applications mounting the
// web routes elsewhere can serve it themselves.
func StaticAssetsFS() fs.FS {
	return webui.StaticFS()
}
