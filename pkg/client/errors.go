package client

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrMalformedResponse signals a 2xx response that lacks a member the caller
// cannot do without (for example create_form without form_id).
var ErrMalformedResponse = errors.New("client: malformed response")

// HTTPError is returned for every non-2xx response. Body holds the leniently
// decoded payload; non-JSON bodies are wrapped as {"raw": <text>}.
type HTTPError struct {
	StatusCode int
	Body       schema.Value
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body.Compact())
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
