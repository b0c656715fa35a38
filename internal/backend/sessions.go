package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ListSessions returns all saved sessions in the backend's own order. The
// order is server-defined and deliberately not re-sorted here.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var payload struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.doJSON(ctx, "GET", "/api/sessions", nil, &payload); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return payload.Sessions, nil
}

// RenameSession changes a session's display label. The identifier itself is
// immutable; only the collection name changes.
func (c *Client) RenameSession(ctx context.Context, sessionID, newName string) (*Session, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: newName}

	var session Session
	err := c.doJSON(ctx, "PUT", "/api/sessions/"+url.PathEscape(sessionID)+"/name", body, &session)
	if err != nil {
		return nil, fmt.Errorf("rename session: %w", mapNotFound(err))
	}
	return &session, nil
}

// DeleteSession removes a session and its indexed documents. Irrecoverable;
// confirmation is the caller's job, as is clearing any UI state that pointed
// at the deleted session. Never retried here.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.doJSON(ctx, "DELETE", "/api/sessions/"+url.PathEscape(sessionID), nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", mapNotFound(err))
	}
	return nil
}

// mapNotFound folds a 404 into ErrSessionNotFound while keeping the backend's
// message visible in the chain.
func mapNotFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, apiErr.Message)
	}
	return err
}
