package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// TerminalHandler formats log records as one line per record:
//
//	15:04:05.000 INF range served storage_id=storage0 status=206
//
// Colour escapes are only written when enabled. Error attributes are
// highlighted in red.
type TerminalHandler struct {
	writer io.Writer
	level  slog.Leveler
	color  bool
	prefix string
	attrs  []byte
	mu     *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *TerminalHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &TerminalHandler{
		writer: w,
		level:  level,
		color:  color,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.Grow(256)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.styled(&buf, ansiDim, ts.Format("15:04:05.000"))
	buf.WriteByte(' ')

	color, label := levelStyle(r.Level)
	h.styled(&buf, color, label)
	buf.WriteByte(' ')
	h.styled(&buf, ansiBold, r.Message)

	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that pre-renders attrs into every line.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	buf.Write(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&buf, h.prefix, a)
	}
	clone := *h
	clone.attrs = buf.Bytes()
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *TerminalHandler) styled(buf *bytes.Buffer, style, s string) {
	if h.color {
		buf.WriteString(style)
	}
	buf.WriteString(s)
	if h.color {
		buf.WriteString(ansiReset)
	}
}

func (h *TerminalHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, prefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	h.styled(buf, ansiDim, prefix+a.Key+"=")

	value := formatAttrValue(a.Value)
	if a.Key == "error" {
		h.styled(buf, ansiRed, value)
		return
	}
	buf.WriteString(value)
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return ansiCyan, "DBG"
	case level < slog.LevelWarn:
		return ansiGreen, "INF"
	case level < slog.LevelError:
		return ansiYellow, "WRN"
	default:
		return ansiRed, "ERR"
	}
}

func formatAttrValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " \t\n\"\\=")) {
		return strconv.Quote(s)
	}
	return s
}
