package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bull/docchat-cli/internal/backend"
	"github.com/bull/docchat-cli/internal/stage"
)

func TestStageLine_MarksCompletedActivePending(t *testing.T) {
	r := New(true)
	line := r.StageLine(backend.ProcessingStatus{Stage: stage.Chunking, Progress: 55})

	assert.Contains(t, line, "[extracting ✓]")
	assert.Contains(t, line, "[cleaning ✓]")
	assert.Contains(t, line, "[chunking ●]")
	assert.Contains(t, line, "[embedding]")
	assert.Contains(t, line, "[storing]")
	assert.Contains(t, line, "55%")
}

func TestStageLine_ReadyCompletesAll(t *testing.T) {
	r := New(true)
	line := r.StageLine(backend.ProcessingStatus{Stage: stage.Ready, Progress: 100})
	assert.Equal(t, 5, strings.Count(line, "✓"))
	assert.NotContains(t, line, "●")
}

func TestStageLine_Error(t *testing.T) {
	r := New(true)
	line := r.StageLine(backend.ProcessingStatus{Stage: stage.Error, Error: "disk full"})
	assert.Contains(t, line, "disk full")

	line = r.StageLine(backend.ProcessingStatus{Stage: stage.Error})
	assert.Contains(t, line, "processing failed")
}

func TestAnswer_PreservesSourceOrderAndFlagsBadScores(t *testing.T) {
	r := New(true)
	msg := &backend.ChatMessage{
		Role:    backend.RoleAssistant,
		Content: "The answer.",
		Sources: []backend.SourceInfo{
			{Filename: "b.pdf", ChunkID: 9, SimilarityScore: 0.5},
			{Filename: "a.pdf", ChunkID: 1, SimilarityScore: 1.9},
		},
	}
	out := r.Answer(msg)

	// Backend ranking preserved: b.pdf listed first despite the name order.
	assert.Less(t, strings.Index(out, "b.pdf"), strings.Index(out, "a.pdf"))
	assert.Contains(t, out, "1. b.pdf#9")
	assert.Contains(t, out, "2. a.pdf#1")
	// The bad score is shown as-is and flagged, never clamped.
	assert.Contains(t, out, "1.90")
	assert.Contains(t, out, "out of range")
}

func TestAnswer_CaveatAlongsideAnswer(t *testing.T) {
	r := New(true)
	out := r.Answer(&backend.ChatMessage{
		Role:    backend.RoleAssistant,
		Content: "Partial answer.",
		Error:   "2 documents unreadable",
	})
	assert.Contains(t, out, "Partial answer.")
	assert.Contains(t, out, "caveat: 2 documents unreadable")
}

func TestUploadLine(t *testing.T) {
	r := New(true)
	assert.Equal(t, "[2/5] report.pdf", r.UploadLine(2, 5, "report.pdf"))
}

func TestSessions_Empty(t *testing.T) {
	r := New(true)
	assert.Contains(t, r.Sessions(nil), "no sessions")
}
