package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is a stateful in-memory session backend covering the sessions
// and query endpoints.
type fakeRegistry struct {
	sessions []Session // preserved in insertion order
}

func (f *fakeRegistry) find(id string) *Session {
	for i := range f.sessions {
		if f.sessions[i].SessionID == id {
			return &f.sessions[i]
		}
	}
	return nil
}

func (f *fakeRegistry) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]Session{"sessions": f.sessions})
	})
	mux.HandleFunc("PUT /api/sessions/{id}/name", func(w http.ResponseWriter, r *http.Request) {
		s := f.find(r.PathValue("id"))
		if s == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": {"message": "no such session"}}`))
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.CollectionName = body.Name
		_ = json.NewEncoder(w).Encode(s)
	})
	mux.HandleFunc("DELETE /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if f.find(id) == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": {"message": "no such session"}}`))
			return
		}
		kept := f.sessions[:0]
		for _, s := range f.sessions {
			if s.SessionID != id {
				kept = append(kept, s)
			}
		}
		f.sessions = kept
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/query", func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if f.find(req.SessionID) == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": {"message": "no such session"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(QueryResponse{Answer: "stale-free answer"})
	})
	return mux
}

func registryClient(t *testing.T, reg *fakeRegistry) *Client {
	t.Helper()
	srv := httptest.NewServer(reg.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func seededRegistry() *fakeRegistry {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &fakeRegistry{sessions: []Session{
		{SessionID: "s1", CollectionName: "case-alpha", DocumentCount: 4, CreatedDate: &created},
		{SessionID: "s2", CollectionName: "case-beta", DocumentCount: 1},
	}}
}

func TestListSessions_PreservesServerOrder(t *testing.T) {
	reg := seededRegistry()
	client := registryClient(t, reg)

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, "s2", sessions[1].SessionID)
}

func TestRenameSession_OnlyLabelChanges(t *testing.T) {
	reg := seededRegistry()
	client := registryClient(t, reg)
	ctx := context.Background()

	renamed, err := client.RenameSession(ctx, "s1", "Investigation A")
	require.NoError(t, err)
	assert.Equal(t, "s1", renamed.SessionID)
	assert.Equal(t, "Investigation A", renamed.CollectionName)

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, "Investigation A", sessions[0].CollectionName)
	assert.Equal(t, 4, sessions[0].DocumentCount, "document count unchanged by rename")
	require.NotNil(t, sessions[0].CreatedDate)
	assert.Equal(t, 2026, sessions[0].CreatedDate.Year())
}

func TestRenameSession_NotFound(t *testing.T) {
	client := registryClient(t, seededRegistry())

	_, err := client.RenameSession(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, strings.Contains(err.Error(), "no such session"))
}

func TestDeleteSession_ThenQueryIsNotFound(t *testing.T) {
	reg := seededRegistry()
	client := registryClient(t, reg)
	ctx := context.Background()

	require.NoError(t, client.DeleteSession(ctx, "s1"))

	// A deleted session yields not-found, never a stale cached answer.
	_, err := client.Query(ctx, "s1", "anything left?", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := client.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].SessionID)
}

func TestDeleteSession_NotFound(t *testing.T) {
	client := registryClient(t, seededRegistry())
	err := client.DeleteSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
