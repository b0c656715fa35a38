package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bull/docchat-cli/internal/stage"
)

// Protocol names the two backend generations. A deployment speaks exactly
// one; the client picks at configuration time and never mixes the two
// assumptions within a session.
const (
	// ProtocolTwoStage uploads, then triggers processing explicitly, then
	// polls status until a terminal stage.
	ProtocolTwoStage = "two-stage"
	// ProtocolSync uploads and the backend runs the full pipeline inside the
	// upload call; the session is queryable as soon as the batch returns.
	ProtocolSync = "sync"
)

// IngestResult is the outcome of driving a batch of files all the way to a
// queryable session.
type IngestResult struct {
	SessionID string
	Results   []UploadResult
	Status    ProcessingStatus
}

// Ingestor turns local files into a queryable session, hiding which protocol
// generation the backend speaks.
type Ingestor interface {
	// Ingest uploads paths into sessionID (empty for a new session) and
	// returns once the session is ready. progress and onStatus may be nil.
	Ingest(ctx context.Context, sessionID string, paths []string, progress ProgressFunc, onStatus StatusFunc) (*IngestResult, error)
}

// NewIngestor selects the ingestor for the configured protocol.
func NewIngestor(protocol string, client *Client) (Ingestor, error) {
	switch protocol {
	case ProtocolTwoStage:
		return &TwoStageIngestor{client: client}, nil
	case ProtocolSync:
		return &SyncIngestor{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown backend protocol %q (want %s or %s)",
			protocol, ProtocolTwoStage, ProtocolSync)
	}
}

// TwoStageIngestor implements the legacy upload/process/poll contract.
type TwoStageIngestor struct {
	client *Client
}

func (i *TwoStageIngestor) Ingest(ctx context.Context, sessionID string, paths []string, progress ProgressFunc, onStatus StatusFunc) (*IngestResult, error) {
	batch, err := i.client.UploadBatch(ctx, sessionID, paths, progress)
	if err != nil {
		return nil, err
	}
	if err := i.client.StartProcessing(ctx, batch.SessionID); err != nil {
		return nil, fmt.Errorf("start processing: %w", err)
	}
	status, err := i.client.PollUntilDone(ctx, batch.SessionID, onStatus)
	if err != nil {
		return nil, err
	}
	return &IngestResult{
		SessionID: batch.SessionID,
		Results:   batch.Results,
		Status:    *status,
	}, nil
}

// SyncIngestor implements the newer contract where the upload call itself
// runs the pipeline to completion. No status polling happens at all.
type SyncIngestor struct {
	client *Client
}

func (i *SyncIngestor) Ingest(ctx context.Context, sessionID string, paths []string, progress ProgressFunc, onStatus StatusFunc) (*IngestResult, error) {
	batch, err := i.client.UploadBatch(ctx, sessionID, paths, progress)
	if err != nil {
		return nil, err
	}
	return &IngestResult{
		SessionID: batch.SessionID,
		Results:   batch.Results,
		Status: ProcessingStatus{
			Stage:    stage.Ready,
			Progress: 100,
		},
	}, nil
}

// StartProcessing triggers the ingestion pipeline for an uploaded session.
// Two-stage protocol only; sync backends reject the endpoint.
func (c *Client) StartProcessing(ctx context.Context, sessionID string) error {
	path := "/api/process?session_id=" + url.QueryEscape(sessionID)
	return c.doJSON(ctx, "POST", path, nil, nil)
}
