package tracking

import (
	"context"
	"sync"
)

// Writer is an io.Writer that counts bytes and reports them to a Reporter.
// It discards the data, so pair it with the real destination through
// io.MultiWriter.
type Writer struct {
	ctx      context.Context
	reporter Reporter
	mu       sync.Mutex
	progress Progress
}

// NewWriter creates a Writer reporting progress from start.
func NewWriter(ctx context.Context, reporter Reporter, start Progress) *Writer {
	return &Writer{ctx: ctx, reporter: reporter, progress: start}
}

// Write counts p and reports the new position. Reporter errors are ignored.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.progress = w.progress.WithWritten(w.progress.Written() + int64(len(p)))
	current := w.progress
	w.mu.Unlock()

	_ = w.reporter.OnProgress(w.ctx, current)
	return len(p), nil
}

// Finish reports the terminal update.
func (w *Writer) Finish(err error) {
	w.mu.Lock()
	w.progress = w.progress.Finish(err)
	final := w.progress
	w.mu.Unlock()

	_ = w.reporter.OnProgress(w.ctx, final)
}

// Progress returns the latest snapshot.
func (w *Writer) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}
