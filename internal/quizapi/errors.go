package quizapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport indicates the request never produced an HTTP response
// (connection refused, timeout, DNS failure).
type ErrTransport struct {
	Op  string
	Err error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrUnexpectedStatus indicates the backend answered with a non-2xx status.
type ErrUnexpectedStatus struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ErrUnexpectedStatus) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// ErrMalformedResponse indicates a 2xx body that could not be decoded or is
// missing required fields.
type ErrMalformedResponse struct {
	Op   string
	Body []byte
	Err  error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt: transport
// failures (including per-request timeouts), 429 and 5xx. Cancellation and
// malformed bodies are not.
func Retryable(err error) bool {
	var tr *ErrTransport
	if errors.As(err, &tr) {
		return !errors.Is(tr.Err, context.Canceled)
	}
	var st *ErrUnexpectedStatus
	if errors.As(err, &st) {
		return st.StatusCode == http.StatusTooManyRequests || st.StatusCode >= 500
	}
	return false
}
