// Package watch feeds files appearing in a directory into the upload
// pipeline, so a drop folder becomes a live document session.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bull/docchat-cli/internal/backend"
)

// DefaultDebounce is how long a file must sit unchanged before it is
// considered fully written and safe to upload.
const DefaultDebounce = 750 * time.Millisecond

// Watcher monitors one directory and ingests settled files sequentially,
// all into the same session. The first ingested batch pins the session id
// when none was configured.
type Watcher struct {
	ingestor   backend.Ingestor
	dir        string
	sessionID  string
	debounce   time.Duration
	extensions map[string]bool
	logger     *zap.Logger

	// OnIngest, when set, observes every successful batch.
	OnIngest func(*backend.IngestResult)
	// OnError, when set, observes per-file failures. Failures never stop the
	// watcher; the file is dropped from the pending set and can be retried by
	// touching it again.
	OnError func(path string, err error)

	pending map[string]time.Time // path -> last event time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle time.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions limits uploads to the given extensions (lower-case, with
// dot). Empty means every file is picked up.
func WithExtensions(exts []string) Option {
	return func(w *Watcher) {
		w.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			w.extensions[strings.ToLower(e)] = true
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a Watcher over dir. sessionID may be empty; the first ingest
// then creates the session.
func New(ingestor backend.Ingestor, dir, sessionID string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir: %s is not a directory", dir)
	}

	w := &Watcher{
		ingestor:  ingestor,
		dir:       dir,
		sessionID: sessionID,
		debounce:  DefaultDebounce,
		logger:    zap.NewNop(),
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SessionID returns the session the watcher is feeding. Empty until the
// first successful ingest when none was configured.
func (w *Watcher) SessionID() string {
	return w.sessionID
}

// Run watches until ctx is cancelled. Uploads happen inline in the event
// loop, one file at a time, so the batch-ordering guarantee of the upload
// coordinator carries over to watched files.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir))

	// The tick drives debounce expiry; events only refresh the pending set.
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.wantFile(event.Name) {
				continue
			}
			w.pending[event.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			w.flushSettled(ctx, now)
		}
	}
}

// flushSettled ingests every pending file whose last event is older than the
// debounce window.
func (w *Watcher) flushSettled(ctx context.Context, now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)
		w.ingest(ctx, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	result, err := w.ingestor.Ingest(ctx, w.sessionID, []string{path}, nil, nil)
	if err != nil {
		w.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}
	if w.sessionID == "" {
		w.sessionID = result.SessionID
	}
	w.logger.Info("file ingested",
		zap.String("path", path),
		zap.String("session_id", result.SessionID))
	if w.OnIngest != nil {
		w.OnIngest(result)
	}
}

func (w *Watcher) wantFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
