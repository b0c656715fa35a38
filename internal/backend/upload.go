package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ProgressFunc reports upload progress. It fires before each file's request
// is issued, with a 1-based current index, so progress displays are
// deterministic regardless of how long each request takes.
type ProgressFunc func(current, total int, filename string)

// BatchResult is the outcome of one upload batch. On a mid-batch failure the
// coordinator returns the partial BatchResult alongside the error: files
// already uploaded stay uploaded server-side, and Results records exactly the
// ones that completed.
type BatchResult struct {
	SessionID string
	Results   []UploadResult
}

// UploadBatch uploads the given files to a session, strictly one at a time
// and in input order. When sessionID is empty, the id returned by the first
// successful upload becomes the session for the rest of the batch.
//
// Failures are not compensated: the first error aborts the batch immediately
// and is returned as-is, together with the partial result. Callers must treat
// an errored batch as partially applied.
func (c *Client) UploadBatch(ctx context.Context, sessionID string, paths []string, progress ProgressFunc) (*BatchResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	batch := &BatchResult{SessionID: sessionID}
	total := len(paths)

	for i, path := range paths {
		name := filepath.Base(path)
		if progress != nil {
			progress(i+1, total, name)
		}

		result, err := c.UploadFile(ctx, batch.SessionID, path)
		if err != nil {
			return batch, fmt.Errorf("upload %s: %w", name, err)
		}
		batch.Results = append(batch.Results, *result)

		// First successful upload of a fresh batch pins the session id for
		// every file that follows.
		if batch.SessionID == "" {
			if id := result.SessionID(); id != "" {
				batch.SessionID = id
				c.logger.Info("session created",
					zap.String("session_id", id),
					zap.String("first_file", name))
			}
		}
	}

	c.logger.Info("batch uploaded",
		zap.String("session_id", batch.SessionID),
		zap.Int("files", len(batch.Results)))
	return batch, nil
}

// UploadFile uploads a single file as multipart form data. An empty sessionID
// asks the backend to create a new session.
func (c *Client) UploadFile(ctx context.Context, sessionID, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return c.uploadReader(ctx, sessionID, filepath.Base(path), f)
}

// uploadReader builds and sends the multipart request.
func (c *Client) uploadReader(ctx context.Context, sessionID, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			return nil, fmt.Errorf("write session field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload result: %w", err)
	}
	return &result, nil
}
