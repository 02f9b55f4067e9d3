package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the HTTP client. The default client has no timeout; a
// slow backend simply delays the response.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.requestID = next
		}
	}
}

// Client speaks the form backend's JSON contract.
type Client struct {
	base      *url.URL
	http      *http.Client
	logger    *zap.Logger
	requestID func() string
}

// New constructs a client for the backend rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base:      parsed,
		http:      &http.Client{},
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type createFormRequest struct {
	Description string `json:"description"`
}

type submissionRequest struct {
	FormID     schema.FormID     `json:"form_id"`
	Submission schema.Submission `json:"submission"`
}

// CreateForm asks the backend to generate a schema from a description.
func (c *Client) CreateForm(ctx context.Context, description string) (schema.CreateFormResult, error) {
	payload, err := c.do(ctx, http.MethodPost, "/create_form", createFormRequest{Description: description})
	if err != nil {
		return schema.CreateFormResult{}, err
	}
	return decodeCreateForm(payload)
}

// Validate submits values for remote validation.
func (c *Client) Validate(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.ValidationResult, error) {
	payload, err := c.do(ctx, http.MethodPost, "/validate_submission", submissionRequest{FormID: id, Submission: submission})
	if err != nil {
		return schema.ValidationResult{}, err
	}
	return decodeValidation(payload)
}

// Recover asks the backend for suggestions to fix a submission.
func (c *Client) Recover(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.Recovery, error) {
	payload, err := c.do(ctx, http.MethodPost, "/recover", submissionRequest{FormID: id, Submission: submission})
	if err != nil {
		return schema.Recovery{}, err
	}
	return decodeRecovery(payload)
}

// Analytics fetches aggregate insights for one form.
func (c *Client) Analytics(ctx context.Context, id schema.FormID) (schema.Analytics, error) {
	payload, err := c.do(ctx, http.MethodGet, "/analytics/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return schema.Analytics{}, err
	}
	return decodeAnalytics(payload)
}

// Health probes the backend's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (schema.Value, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return schema.Value{}, fmt.Errorf("client: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return schema.Value{}, fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := c.requestID()
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return schema.Value{}, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Value{}, fmt.Errorf("client: read %s response: %w", path, err)
	}
	payload := Lenient(raw)

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return schema.Value{}, &HTTPError{StatusCode: resp.StatusCode, Body: payload}
	}
	return payload, nil
}

func malformed(reason string, payload schema.Value) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, reason, payload.Compact())
}
