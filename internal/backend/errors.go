package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrBackendUnreachable means the request never reached the backend at all
	// (connection refused, DNS failure). Distinct from an HTTP-level failure so
	// callers can tell the user to check that the backend is running.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrSessionNotFound maps the backend's 404 on session-scoped endpoints.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyQuery is returned before any network call when the query text is
	// blank.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrNoFiles is returned before any network call when an upload batch
	// contains no files.
	ErrNoFiles = errors.New("no files to upload")
)

// APIError is a non-2xx backend response reduced to a displayable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorPayload mirrors the backend's error body. The detail field is either a
// structured object with a message or a bare string, depending on endpoint
// generation, so it is kept raw and probed in order.
type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// decodeError turns a non-2xx response into an *APIError. Message extraction
// priority: detail.message, detail as a string, top-level message, then the
// generic "HTTP Error: <status>" fallback for unparseable or empty bodies.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP Error: %d", resp.StatusCode),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	if msg := extractDetailMessage(payload.Detail); msg != "" {
		apiErr.Message = msg
	} else if payload.Message != "" {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// extractDetailMessage probes the two observed shapes of the detail field.
func extractDetailMessage(detail json.RawMessage) string {
	if len(detail) == 0 {
		return ""
	}
	var structured struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(detail, &structured); err == nil && structured.Message != "" {
		return structured.Message
	}
	var plain string
	if err := json.Unmarshal(detail, &plain); err == nil && plain != "" {
		return plain
	}
	return ""
}
