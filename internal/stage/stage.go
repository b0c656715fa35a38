// Package stage defines the ordered document-processing pipeline vocabulary
// shared by the poller and any progress display built on top of it.
package stage

// Stage is a named step in the backend ingestion pipeline, or one of the
// client-side meta states surrounding it.
type Stage string

const (
	// Idle means no pipeline run is associated with the session yet.
	Idle Stage = "idle"
	// Uploading means files are still being transferred to the backend.
	Uploading Stage = "uploading"

	Extracting Stage = "extracting"
	Cleaning   Stage = "cleaning"
	Chunking   Stage = "chunking"
	Embedding  Stage = "embedding"
	Storing    Stage = "storing"

	// Ready is the successful terminal stage: the session is queryable.
	Ready Stage = "ready"
	// Error is the failed terminal stage, reachable from any non-terminal stage.
	Error Stage = "error"
)

// pipeline is the canonical processing order. Idle, Uploading and Error are
// deliberately absent: they have no position on the progress axis.
var pipeline = []Stage{Extracting, Cleaning, Chunking, Embedding, Storing, Ready}

// NotFound is returned by IndexOf for stages outside the pipeline order.
const NotFound = -1

// IndexOf returns the zero-based position of s in the pipeline order, or
// NotFound for idle, uploading, error, and unknown values.
func IndexOf(s Stage) int {
	for i, p := range pipeline {
		if p == s {
			return i
		}
	}
	return NotFound
}

// IsComplete reports whether s has already finished given that the pipeline is
// currently at current. Both stages must have a valid pipeline position;
// comparisons involving idle, uploading, or error are always false.
func IsComplete(s, current Stage) bool {
	i, j := IndexOf(s), IndexOf(current)
	return i != NotFound && j != NotFound && i < j
}

// IsActive reports whether s is the stage the pipeline is currently in.
// Exact match only, never a range check.
func IsActive(s, current Stage) bool {
	return s == current
}

// IsTerminal reports whether no further status polling is meaningful.
func IsTerminal(s Stage) bool {
	return s == Ready || s == Error
}

// Pipeline returns the pipeline stages in processing order. The returned
// slice is a copy; callers may not perturb the canonical order.
func Pipeline() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}
