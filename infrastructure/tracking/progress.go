// Package tracking reports the progress of file transfers.
package tracking

import "context"

// Progress is a snapshot of a single transfer.
type Progress struct {
	key     string
	offset  int64
	written int64
	total   int64
	done    bool
	err     error
}

// NewProgress creates a Progress for key, starting at offset of total bytes.
// A negative total means the size is unknown.
func NewProgress(key string, offset, total int64) Progress {
	return Progress{key: key, offset: offset, total: total}
}

// Key identifies the transfer, usually its URL.
func (p Progress) Key() string { return p.key }

// Offset returns the byte offset the transfer started at.
func (p Progress) Offset() int64 { return p.offset }

// Written returns the bytes written since Offset.
func (p Progress) Written() int64 { return p.written }

// Total returns the full size, or -1 when unknown.
func (p Progress) Total() int64 { return p.total }

// Current returns the absolute position, Offset plus Written.
func (p Progress) Current() int64 { return p.offset + p.written }

// Done reports whether the transfer has finished, successfully or not.
func (p Progress) Done() bool { return p.done }

// Err returns the error that ended the transfer, if any.
func (p Progress) Err() error { return p.err }

// Percent returns completion in [0, 100], or -1 when Total is unknown.
func (p Progress) Percent() float64 {
	if p.total < 0 {
		return -1
	}
	if p.total == 0 {
		return 100
	}
	return min(100, float64(p.Current())*100/float64(p.total))
}

// WithWritten returns a copy with written bytes set.
func (p Progress) WithWritten(n int64) Progress {
	p.written = n
	return p
}

// Finish returns a terminal copy carrying err.
func (p Progress) Finish(err error) Progress {
	p.done = true
	p.err = err
	return p
}

// Reporter receives progress updates.
type Reporter interface {
	OnProgress(ctx context.Context, p Progress) error
}
