package backend

import (
	"time"

	"github.com/bull/docchat-cli/internal/stage"
)

// Session summarizes a server-side document collection. Identity is the
// server-assigned SessionID; renaming only changes CollectionName.
type Session struct {
	SessionID      string     `json:"session_id"`
	CollectionName string     `json:"collection_name"`
	DocumentCount  int        `json:"document_count"`
	CreatedDate    *time.Time `json:"created_date,omitempty"`
}

// UploadResult is the backend's per-file upload outcome. It is immutable once
// returned; Metadata is only populated by backends that report batch totals.
type UploadResult struct {
	Success      bool            `json:"success"`
	DocumentID   string          `json:"document_id"`
	DocumentName string          `json:"document_name"`
	ChunkCount   int             `json:"chunk_count"`
	Metadata     *UploadMetadata `json:"metadata,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// UploadMetadata carries session-level totals attached to an upload result.
type UploadMetadata struct {
	SessionID        string `json:"session_id"`
	QdrantCollection string `json:"qdrant_collection"`
	FilesProcessed   int    `json:"files_processed"`
	TotalChunks      int    `json:"total_chunks"`
	FailedFiles      int    `json:"failed_files"`
}

// SessionID returns the session identifier the backend reported for this
// upload, or "" when none was reported.
func (r *UploadResult) SessionID() string {
	if r.Metadata != nil {
		return r.Metadata.SessionID
	}
	return ""
}

// ProcessingStatus is one snapshot of the ingestion pipeline. It is transient:
// re-fetched on each poll and never cached across poll cycles.
type ProcessingStatus struct {
	Stage    stage.Stage `json:"stage"`
	Progress int         `json:"progress"` // 0-100
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// SourceInfo is a ranked citation attached to an assistant answer. The backend
// returns sources in descending relevance order; clients must preserve it.
type SourceInfo struct {
	Filename        string  `json:"filename"`
	ChunkID         int     `json:"chunk_id"`
	SimilarityScore float64 `json:"similarity_score"` // contract range [0,1]
	TextPreview     string  `json:"text_preview"`
}

// QueryResponse is the answer to one question. A non-empty Error may coexist
// with a renderable Answer (degraded answer with a caveat); callers surface
// both rather than treating them as exclusive.
type QueryResponse struct {
	Answer  string       `json:"answer"`
	Sources []SourceInfo `json:"sources"`
	Error   string       `json:"error,omitempty"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of an in-memory conversation. The sequence is
// append-only and owned by the caller; nothing here is persisted server-side.
type ChatMessage struct {
	ID        string       `json:"id"`
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Sources   []SourceInfo `json:"sources,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Error     string       `json:"error,omitempty"`
}
