package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/docchat-cli/internal/stage"
)

// statusScript serves a fixed status sequence, then repeats the last entry.
func statusScript(t *testing.T, statuses []ProcessingStatus) *Client {
	t.Helper()
	var served int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status/sess-1", r.URL.Path)
		i := served
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		served++
		_ = json.NewEncoder(w).Encode(statuses[i])
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithPollInterval(time.Millisecond))
}

func TestPollUntilDone_CallbackPerNonTerminalStatus(t *testing.T) {
	client := statusScript(t, []ProcessingStatus{
		{Stage: stage.Extracting, Progress: 10},
		{Stage: stage.Extracting, Progress: 40},
		{Stage: stage.Chunking, Progress: 60},
		{Stage: stage.Ready, Progress: 100},
	})

	var seen []ProcessingStatus
	final, err := client.PollUntilDone(context.Background(), "sess-1", func(s ProcessingStatus) {
		seen = append(seen, s)
	})
	require.NoError(t, err)

	// Exactly the three non-terminal snapshots, in order; the terminal one
	// settles the call instead of firing the callback.
	require.Len(t, seen, 3)
	assert.Equal(t, stage.Extracting, seen[0].Stage)
	assert.Equal(t, stage.Chunking, seen[2].Stage)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i].Progress, seen[i-1].Progress, "progress is non-decreasing")
	}

	require.NotNil(t, final)
	assert.Equal(t, stage.Ready, final.Stage)
	assert.Equal(t, 100, final.Progress)
}

func TestPollUntilDone_PipelineErrorCarriesBackendMessage(t *testing.T) {
	client := statusScript(t, []ProcessingStatus{
		{Stage: stage.Error, Error: "disk full"},
	})

	_, err := client.PollUntilDone(context.Background(), "sess-1", nil)
	require.Error(t, err)

	var pipeErr *PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, "disk full", err.Error())
}

func TestPollUntilDone_GenericMessageWhenBackendGivesNone(t *testing.T) {
	client := statusScript(t, []ProcessingStatus{
		{Stage: stage.Error},
	})

	_, err := client.PollUntilDone(context.Background(), "sess-1", nil)
	require.Error(t, err)
	assert.Equal(t, "document processing failed", err.Error())
}

func TestPollUntilDone_StopsOnRequestFailure(t *testing.T) {
	// Any status-request failure ends the loop; polling is a scheduled
	// re-check, not retry-on-failure.
	client := errorServer(t, 500, `{"detail": {"message": "status handler broken"}}`)

	_, err := client.PollUntilDone(context.Background(), "sess-1", nil)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "status handler broken", apiErr.Message)
}

func TestPollUntilDone_ContextCancellation(t *testing.T) {
	client := statusScript(t, []ProcessingStatus{
		{Stage: stage.Embedding, Progress: 70},
	})

	ctx, cancel := context.WithCancel(context.Background())
	polled := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		_, err := client.PollUntilDone(ctx, "sess-1", func(ProcessingStatus) {
			select {
			case polled <- struct{}{}:
			default:
			}
		})
		done <- err
	}()

	<-polled
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
