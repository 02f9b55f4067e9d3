// Package webui serves a form session to the browser. Forms render onto an
// HTML surface, posted values are bound back onto it, and every state change
// is pushed to connected pages over a websocket.
package webui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/httpx"
	"github.com/goliatone/go-formflow/pkg/present"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/render/template"
	"github.com/goliatone/go-formflow/pkg/render/template/pongo"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
	"github.com/goliatone/go-formflow/pkg/session"
)

const pageTitle = "formflow"

// Option configures a Server.
type Option func(*config)

type config struct {
	logger      *zap.Logger
	selector    theme.ThemeSelector
	themeName   string
	variant     string
	templateDir string
	classes     vanilla.Classes
}

// WithLogger sets the logger for requests and session transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithThemeSelector replaces the built-in theme selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithThemeProvider builds a go-theme selector over provider. Unknown theme
// names fall back to defaultTheme and an empty variant to defaultVariant.
func WithThemeProvider(provider theme.ThemeProvider, defaultTheme, defaultVariant string) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.selector = theme.Selector{
				Registry:       provider,
				DefaultTheme:   strings.TrimSpace(defaultTheme),
				DefaultVariant: strings.TrimSpace(defaultVariant),
			}
		}
	}
}

// WithTheme picks the theme and variant used for the page.
func WithTheme(name, variant string) Option {
	return func(cfg *config) {
		cfg.themeName = strings.TrimSpace(name)
		cfg.variant = strings.TrimSpace(variant)
	}
}

// WithTemplateDir loads page templates from dir before the embedded ones.
func WithTemplateDir(dir string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(dir)
	}
}

// WithClasses overrides the classes of the rendered form controls.
func WithClasses(classes vanilla.Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// StateView is the browser projection of a session state. HTML fields are
// already escaped and safe to insert as markup.
type StateView struct {
	Version       uint64            `json:"version"`
	Phase         string            `json:"phase"`
	FormID        string            `json:"form_id,omitempty"`
	Generation    uint64            `json:"generation"`
	FormVisible   bool              `json:"form_visible"`
	Status        map[string]string `json:"status"`
	SummaryHTML   string            `json:"summary_html,omitempty"`
	FormHTML      string            `json:"form_html,omitempty"`
	OutputHTML    string            `json:"output_html,omitempty"`
	AnalyticsHTML string            `json:"analytics_html,omitempty"`
}

// Server is the browser front end of one session.
type Server struct {
	orch    *session.Orchestrator
	surface *vanilla.Surface
	engine  template.TemplateRenderer
	theme   *theme.RendererConfig
	hub     *hub
	logger  *zap.Logger

	mu     sync.Mutex
	latest StateView
}

var _ session.View = (*Server)(nil)

// New builds a server driving backend.
func New(backend session.Backend, options ...Option) (*Server, error) {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	// The built-in selector has no fallback theme: unknown names are errors.
	if cfg.selector == nil {
		registry, err := NewThemeRegistry()
		if err != nil {
			return nil, err
		}
		cfg.selector = theme.Selector{Registry: registry}
		if cfg.themeName == "" {
			cfg.themeName = DefaultTheme
		}
	}
	themeConfig, err := resolveTheme(cfg.selector, cfg.themeName, cfg.variant)
	if err != nil {
		return nil, err
	}

	engineOptions := []pongo.Option{pongo.WithFS(TemplatesFS())}
	if cfg.templateDir != "" {
		engineOptions = append(engineOptions, pongo.WithBaseDir(cfg.templateDir))
	}
	engine, err := pongo.New(engineOptions...)
	if err != nil {
		return nil, err
	}

	surf := vanilla.New(vanilla.WithClasses(cfg.classes))
	renderer, err := render.New(surf, render.WithLogger(cfg.logger.Named("render")))
	if err != nil {
		return nil, err
	}

	s := &Server{
		surface: surf,
		engine:  engine,
		theme:   themeConfig,
		hub:     newHub(),
		logger:  cfg.logger,
	}
	orch, err := session.New(backend, renderer,
		session.WithLogger(cfg.logger.Named("session")),
		session.WithView(s),
	)
	if err != nil {
		return nil, err
	}
	s.orch = orch
	s.latest = s.project(orch.State())
	return s, nil
}

// Orchestrator exposes the session the server drives.
func (s *Server) Orchestrator() *session.Orchestrator {
	return s.orch
}

// Update implements session.View. Out-of-order updates are dropped.
func (s *Server) Update(state session.State) {
	view := s.project(state)
	s.mu.Lock()
	if view.Version < s.latest.Version {
		s.mu.Unlock()
		return
	}
	s.latest = view
	s.mu.Unlock()
	s.hub.broadcast(view)
}

// Current returns the latest projected state.
func (s *Server) Current() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Server) project(state session.State) StateView {
	view := StateView{
		Version:     state.Version,
		Phase:       state.Phase.String(),
		FormID:      state.FormID.String(),
		Generation:  state.Generation,
		FormVisible: state.FormVisible,
		Status:      make(map[string]string, len(state.Status)),
		OutputHTML:  present.PartsHTML(state.Output),
	}
	for channel, text := range state.Status {
		view.Status[string(channel)] = text
	}
	if state.FormVisible {
		view.SummaryHTML = state.Summary.HTML()
		view.FormHTML = s.surface.HTML()
	}
	if state.HasAnalytics {
		view.AnalyticsHTML = state.Analytics.HTML()
	}
	return view
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpx.LogRequests(s.logger))
	r.Use(middleware.Recoverer)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the page, action, state and event routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.page)
	r.Get("/state", s.state)
	r.Get("/events", s.events)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/generate", s.generate)
	r.Post("/submit", s.submit)
	r.Post("/recover", s.recover)
	r.Post("/analytics/refresh", s.refreshAnalytics)
	r.Handle(StaticPrefix+"/*", http.StripPrefix(StaticPrefix, http.FileServer(http.FS(StaticFS()))))
}

func (s *Server) page(w http.ResponseWriter, _ *http.Request) {
	data := map[string]any{
		"title":      pageTitle,
		"state":      s.Current(),
		"form_class": s.surface.FormClass(),
		"theme":      s.themeContext(),
	}
	out, err := s.engine.Render(s.pageTemplate(), data)
	if err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// pageTemplate is the theme's "page" partial, which falls back to the
// embedded page.
func (s *Server) pageTemplate() string {
	if s.theme != nil && s.theme.Partials["page"] != "" {
		return s.theme.Partials["page"]
	}
	return "page"
}

func (s *Server) themeContext() map[string]any {
	if s.theme == nil {
		return map[string]any{}
	}
	ctx := map[string]any{
		"name":     s.theme.Theme,
		"variant":  s.theme.Variant,
		"css_vars": CSSVarsStyle(s.theme.CSSVars),
	}
	if s.theme.AssetURL != nil {
		ctx["stylesheet"] = s.theme.AssetURL("stylesheet")
	}
	return ctx
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.Current())
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	s.outcome("generate", s.orch.Generate(r.Context(), r.PostFormValue("description")))
	s.respond(w, r)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if !s.bind(w, r) {
		return
	}
	s.outcome("submit", s.orch.Submit(r.Context()))
	s.respond(w, r)
}

func (s *Server) recover(w http.ResponseWriter, r *http.Request) {
	if !s.bind(w, r) {
		return
	}
	s.outcome("recover", s.orch.Recover(r.Context()))
	s.respond(w, r)
}

func (s *Server) refreshAnalytics(w http.ResponseWriter, r *http.Request) {
	s.outcome("analytics", s.orch.RefreshAnalytics(r.Context()))
	s.respond(w, r)
}

// bind copies posted control values onto the surface. Values posted for an
// older form are ignored by the surface since their ids no longer exist.
func (s *Server) bind(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid form body")
		return false
	}
	if err := s.surface.Bind(r.PostForm); err != nil {
		s.logger.Warn("bind posted values", zap.Error(err))
	}
	return true
}

// outcome logs an action result. Failures are already reflected in the
// session status lines.
func (s *Server) outcome(action string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrBlankDescription), errors.Is(err, session.ErrSuperseded):
		s.logger.Debug("action skipped", zap.String("action", action), zap.Error(err))
	case errors.Is(err, context.Canceled):
		s.logger.Debug("action cancelled", zap.String("action", action))
	default:
		s.logger.Info("action failed", zap.String("action", action), zap.Error(err))
	}
}

// respond answers JSON clients with the new state and browsers with a
// redirect back to the page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		httpx.WriteJSON(w, http.StatusOK, s.Current())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	ctx := conn.CloseRead(r.Context())
	if err := wsjson.Write(ctx, conn, s.Current()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case view := <-sub.ch:
			if err := wsjson.Write(ctx, conn, view); err != nil {
				s.logger.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}
}
