package tracking

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// LoggingReporter logs progress updates.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a LoggingReporter. A nil logger uses slog.Default.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingReporter{logger: logger}
}

// OnProgress logs p at info level, or error level when the transfer failed.
func (r *LoggingReporter) OnProgress(ctx context.Context, p Progress) error {
	attrs := []any{
		slog.String("key", p.Key()),
		slog.String("current", humanize.IBytes(uint64(p.Current()))),
	}
	if p.Total() >= 0 {
		attrs = append(attrs,
			slog.String("total", humanize.IBytes(uint64(p.Total()))),
			slog.Float64("completion_percent", p.Percent()),
		)
	}

	switch {
	case p.Err() != nil:
		r.logger.ErrorContext(ctx, "transfer failed", append(attrs, slog.Any("error", p.Err()))...)
	case p.Done():
		r.logger.InfoContext(ctx, "transfer complete", attrs...)
	default:
		r.logger.InfoContext(ctx, "transfer progress", attrs...)
	}
	return nil
}
