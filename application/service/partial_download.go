package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/domain/download"
)

// Range header values that clients send without meaning a partial request.
var noOpRanges = map[string]struct{}{
	"0/*": {},
	"0-":  {},
	"0":   {},
}

// PartialDownload decides whether requested ranges are satisfiable and
// builds the matching 206 or 416 response.
type PartialDownload struct {
	logger *slog.Logger
}

// NewPartialDownload creates a new PartialDownload service.
func NewPartialDownload(logger *slog.Logger) *PartialDownload {
	if logger == nil {
		logger = slog.Default()
	}
	return &PartialDownload{logger: logger}
}

// IsRangedRequest reports whether the headers carry a genuine Range request.
func IsRangedRequest(header http.Header) bool {
	if header == nil {
		return false
	}
	values := header.Values(download.HeaderRange)
	if len(values) == 0 {
		return false
	}
	_, noOp := noOpRanges[values[0]]
	return !noOp
}

// Respond positions resource for ranges and returns the response to send.
func (s *PartialDownload) Respond(resource download.Resource, ranges []byterange.ByteRange) (download.Response, error) {
	switch len(ranges) {
	case 0:
		return download.NewResponse(http.StatusRequestedRangeNotSatisfiable), nil
	case 1:
		s.logger.Debug("received request for a partial download with a single range")
		return s.RespondSingle(resource, ranges[0])
	default:
		s.logger.Debug("received request for a partial download with multiple ranges", "ranges", len(ranges))
		return s.RespondMultiple(resource, ranges)
	}
}

// RespondSingle serves one range. Ranges starting at or past the end of the
// resource are answered with 416.
func (s *PartialDownload) RespondSingle(resource download.Resource, r byterange.ByteRange) (download.Response, error) {
	length := resource.Length()
	if r.Offset() >= length {
		return download.NewResponse(http.StatusRequestedRangeNotSatisfiable), nil
	}

	if err := s.position(resource, r); err != nil {
		return download.Response{}, err
	}

	contentLength := PartialLength(r, length)
	s.logger.Debug("partial content",
		slog.Int64("offset", r.Offset()),
		slog.Int64("length", length),
		slog.Int64("content_length", contentLength),
	)

	return partialContent(resource).WithContentLength(contentLength), nil
}

// RespondMultiple prepares the 206 envelope for a multi-range request. The
// first range becomes the current range; the body is the resource positioned
// there, multipart encoding is left to the caller.
func (s *PartialDownload) RespondMultiple(resource download.Resource, ranges []byterange.ByteRange) (download.Response, error) {
	if len(ranges) == 0 {
		return download.NewResponse(http.StatusRequestedRangeNotSatisfiable), nil
	}

	first := ranges[0]
	resource.SetCurrentRange(first)
	if resource.CurrentRange().Offset() >= resource.Length() {
		return download.NewResponse(http.StatusRequestedRangeNotSatisfiable), nil
	}

	if err := s.position(resource, first); err != nil {
		return download.Response{}, err
	}

	return partialContent(resource), nil
}

// PartialLength returns the Content-Length for a partial response, or
// download.UnknownLength when it cannot be derived from the range.
func PartialLength(r byterange.ByteRange, length int64) int64 {
	limit, hasLimit := r.Limit()
	switch {
	case hasLimit && limit > 0 && r.Offset() > 0:
		return limit - r.Offset()
	case length > 0 && r.Offset() > 0 && !hasLimit:
		return length - r.Offset()
	default:
		return download.UnknownLength
	}
}

func (s *PartialDownload) position(resource download.Resource, r byterange.ByteRange) error {
	resource.SetCurrentRange(r)

	skipped, err := resource.Skip(r.Offset())
	if err != nil {
		return fmt.Errorf("skip to offset %d: %w", r.Offset(), err)
	}
	if skipped != r.Offset() {
		s.logger.Warn("resource skipped fewer bytes than requested",
			slog.Int64("requested", r.Offset()),
			slog.Int64("skipped", skipped),
		)
	}
	return nil
}

// partialContent builds the 206 envelope shared by single and multi-range
// responses.
func partialContent(resource download.Resource) download.Response {
	length := resource.Length()
	contentRange := "bytes " + strconv.FormatInt(resource.CurrentRange().Offset(), 10) +
		"-" + strconv.FormatInt(length-1, 10) +
		"/" + strconv.FormatInt(length, 10)

	resp := download.NewResponse(http.StatusPartialContent).
		WithHeader(download.HeaderAcceptRanges, "bytes").
		WithHeader(download.HeaderContentRange, contentRange).
		WithHeader(download.HeaderPragma, "no-cache")

	if body, ok := resource.(interface{ Read([]byte) (int, error) }); ok {
		resp = resp.WithBody(body)
	}
	return resp
}
