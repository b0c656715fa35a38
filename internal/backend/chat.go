package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrScoreOutOfRange marks a backend contract violation: a similarity score
// outside [0,1]. Scores are never clamped client-side; the violation is
// reported so it can be shown next to the rendered answer.
var ErrScoreOutOfRange = errors.New("similarity score outside [0,1]")

// queryRequest is the wire shape of a question.
type queryRequest struct {
	SessionID  string `json:"session_id"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Query asks a question against a session's indexed documents. maxResults is
// a hint for how many sources to return; zero leaves it to the backend.
//
// Blank queries are rejected locally with ErrEmptyQuery before any network
// call. Sources come back pre-ranked by descending relevance and are returned
// exactly in backend order.
func (c *Client) Query(ctx context.Context, sessionID, query string, maxResults int) (*QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	req := queryRequest{
		SessionID:  sessionID,
		Query:      query,
		MaxResults: maxResults,
	}
	var resp QueryResponse
	if err := c.doJSON(ctx, "POST", "/api/query", req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("query: %w: %s", ErrSessionNotFound, apiErr.Message)
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return &resp, nil
}

// ValidateSources checks every source against the score contract. The
// response itself is left untouched.
func (r *QueryResponse) ValidateSources() error {
	for _, src := range r.Sources {
		if src.SimilarityScore < 0 || src.SimilarityScore > 1 {
			return fmt.Errorf("%w: %s chunk %d scored %g",
				ErrScoreOutOfRange, src.Filename, src.ChunkID, src.SimilarityScore)
		}
	}
	return nil
}

// Conversation is an append-only in-memory message log for one session. It is
// owned by a single caller and never persisted; the backend keeps whatever
// history it keeps on its own.
type Conversation struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

// NewConversation starts an empty conversation against a session.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

// Ask records the user's question, runs the query, and records the answer.
// A response carrying both an answer and an error is recorded with both set:
// error-presence is not exclusive with a renderable answer.
//
// On a failed operation the user message stays in the log (it was asked) and
// the error is returned without an assistant message.
func (conv *Conversation) Ask(ctx context.Context, client *Client, query string, maxResults int) (*ChatMessage, error) {
	conv.Messages = append(conv.Messages, ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   query,
		Timestamp: time.Now(),
	})

	resp, err := client.Query(ctx, conv.SessionID, query, maxResults)
	if err != nil {
		return nil, err
	}

	msg := ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   resp.Answer,
		Sources:   resp.Sources,
		Timestamp: time.Now(),
		Error:     resp.Error,
	}
	conv.Messages = append(conv.Messages, msg)
	return &msg, nil
}
