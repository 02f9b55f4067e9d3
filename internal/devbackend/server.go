package devbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/httpx"
	"github.com/goliatone/go-formflow/pkg/contract"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const detailFormNotFound = "Form not found"

// Server exposes the form backend over HTTP.
type Server struct {
	store     *Store
	generator Generator
	logger    *zap.Logger
}

// Option customises a Server.
type Option func(*Server)

// WithGenerator swaps the schema generator.
func WithGenerator(generator Generator) Option {
	return func(s *Server) {
		if generator != nil {
			s.generator = generator
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer builds a server backed by store.
func NewServer(store *Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("devbackend: store is required")
	}
	s := &Server{
		store:     store,
		generator: KeywordGenerator{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
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

// RegisterRoutes mounts the backend routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/create_form", s.createForm)
	r.Post("/validate_submission", s.validateSubmission)
	r.Post("/recover", s.recover)
	r.Get("/analytics/{form_id}", s.analytics)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/openapi.yaml", contract.Handler())
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	return httpx.ListenAndServe(ctx, addr, handler, logger)
}

type createFormRequest struct {
	Description *string `json:"description"`
}

type submissionRequest struct {
	FormID     formIDParam    `json:"form_id"`
	Submission map[string]any `json:"submission"`
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Description == nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "description is required")
		return
	}

	generated, err := s.generator.Generate(r.Context(), *req.Description)
	if err != nil || len(generated.Fields) == 0 {
		s.logger.Warn("schema generation failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Schema generation failed")
		return
	}
	payload, err := json.Marshal(generated)
	if err != nil {
		s.internal(w, err)
		return
	}
	title := generated.Title
	if title == "" {
		title = "Untitled"
	}
	id, err := s.store.CreateForm(r.Context(), title, payload)
	if err != nil {
		s.internal(w, err)
		return
	}
	s.logger.Info("form created", zap.Int64("form_id", id), zap.Int("fields", len(generated.Fields)))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"form_id": id,
		"schema":  json.RawMessage(payload),
	})
}

func (s *Server) validateSubmission(w http.ResponseWriter, r *http.Request) {
	req, sch, ok := s.loadSubmission(w, r)
	if !ok {
		return
	}
	errs := Validate(sch, req.Submission)
	valid := len(errs) == 0
	id, ok := s.saveSubmission(w, r, int64(req.FormID), req.Submission, valid, errs)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"submission_id": id,
		"valid":         valid,
		"errors":        errs,
	})
}

func (s *Server) recover(w http.ResponseWriter, r *http.Request) {
	req, sch, ok := s.loadSubmission(w, r)
	if !ok {
		return
	}
	suggestions, errs := Suggest(sch, req.Submission)
	id, ok := s.saveSubmission(w, r, int64(req.FormID), req.Submission, false, errs)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions":   suggestions,
		"submission_id": id,
	})
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "form_id")
	formID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "form_id must be an integer: "+raw)
		return
	}
	form, ok := s.loadForm(w, r, formID)
	if !ok {
		return
	}
	sch, err := schema.Parse(form.Schema)
	if err != nil {
		s.internal(w, err)
		return
	}
	records, err := s.store.Submissions(r.Context(), formID)
	if err != nil {
		s.internal(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"insights":          Analyze(sch, records),
		"total_submissions": len(records),
	})
}

func (s *Server) loadSubmission(w http.ResponseWriter, r *http.Request) (submissionRequest, schema.Schema, bool) {
	var req submissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return req, schema.Schema{}, false
	}
	if req.Submission == nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "submission must be an object")
		return req, schema.Schema{}, false
	}
	form, ok := s.loadForm(w, r, int64(req.FormID))
	if !ok {
		return req, schema.Schema{}, false
	}
	sch, err := schema.Parse(form.Schema)
	if err != nil {
		s.internal(w, err)
		return req, schema.Schema{}, false
	}
	return req, sch, true
}

func (s *Server) loadForm(w http.ResponseWriter, r *http.Request, id int64) (FormRecord, bool) {
	form, err := s.store.Form(r.Context(), id)
	if errors.Is(err, ErrFormNotFound) {
		httpx.WriteError(w, http.StatusNotFound, detailFormNotFound)
		return FormRecord{}, false
	}
	if err != nil {
		s.internal(w, err)
		return FormRecord{}, false
	}
	return form, true
}

func (s *Server) saveSubmission(w http.ResponseWriter, r *http.Request, formID int64, data map[string]any, valid bool, errs schema.FieldErrors) (int64, bool) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.internal(w, err)
		return 0, false
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		s.internal(w, err)
		return 0, false
	}
	id, err := s.store.AddSubmission(r.Context(), formID, dataJSON, valid, errorsJSON)
	if err != nil {
		s.internal(w, err)
		return 0, false
	}
	return id, true
}

func (s *Server) internal(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// formIDParam accepts an integer form id encoded as a JSON number or a
// numeric string.
type formIDParam int64

func (p *formIDParam) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		trimmed = []byte(strings.TrimSpace(text))
	}
	id, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return fmt.Errorf("form_id must be an integer, got %s", data)
	}
	*p = formIDParam(id)
	return nil
}
