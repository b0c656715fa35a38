package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/bull/docchat-cli/internal/stage"
)

// DefaultPollInterval is the delay between consecutive status checks.
const DefaultPollInterval = time.Second

// PipelineError means the backend accepted the work but the ingestion
// pipeline itself transitioned to the error stage. The message comes from the
// status payload, not from an HTTP status.
type PipelineError struct {
	Status ProcessingStatus
}

func (e *PipelineError) Error() string {
	if e.Status.Error != "" {
		return e.Status.Error
	}
	if e.Status.Message != "" {
		return e.Status.Message
	}
	return "document processing failed"
}

// StatusFunc receives every non-terminal status snapshot observed while
// polling, in observation order.
type StatusFunc func(ProcessingStatus)

// Status fetches the current pipeline status for a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*ProcessingStatus, error) {
	var status ProcessingStatus
	if err := c.doJSON(ctx, "GET", "/api/status/"+sessionID, nil, &status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	return &status, nil
}

// errStillProcessing drives the retry loop: it marks a poll that observed a
// non-terminal stage and must be scheduled again.
var errStillProcessing = errors.New("pipeline still processing")

// PollUntilDone checks the session's status once per interval until the
// pipeline reaches a terminal stage. onStatus fires for each non-terminal
// snapshot; terminal snapshots settle the call instead.
//
// At most one status request is outstanding at any time: the next check is
// scheduled only after the previous one completes. There is no failure retry;
// any request error ends the loop immediately. Cancellation is cooperative
// through ctx.
//
// Returns the ready status on success. A pipeline that lands in the error
// stage yields a *PipelineError carrying the backend's message.
func (c *Client) PollUntilDone(ctx context.Context, sessionID string, onStatus StatusFunc) (*ProcessingStatus, error) {
	var final *ProcessingStatus

	check := func() error {
		status, err := c.Status(ctx, sessionID)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch {
		case status.Stage == stage.Ready:
			final = status
			return nil
		case status.Stage == stage.Error:
			return backoff.Permanent(&PipelineError{Status: *status})
		default:
			c.logger.Debug("pipeline progress",
				zap.String("session_id", sessionID),
				zap.String("stage", string(status.Stage)),
				zap.Int("progress", status.Progress))
			if onStatus != nil {
				onStatus(*status)
			}
			return errStillProcessing
		}
	}

	interval := backoff.NewConstantBackOff(c.pollInterval)
	if err := backoff.Retry(check, backoff.WithContext(interval, ctx)); err != nil {
		return nil, err
	}
	return final, nil
}
