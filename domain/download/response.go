package download

import (
	"io"
	"net/http"
	"strconv"
)

// UnknownLength marks a response whose content length is unspecified.
// Transports must omit the Content-Length header rather than send it.
const UnknownLength int64 = -1

// Header names used in partial content responses.
const (
	HeaderRange         = "Range"
	HeaderAcceptRanges  = "Accept-Ranges"
	HeaderContentRange  = "Content-Range"
	HeaderContentLength = "Content-Length"
	HeaderPragma        = "Pragma"
)

// Response describes an outbound response independently of any HTTP
// framework: a status, headers and an optional body.
type Response struct {
	status        int
	header        http.Header
	contentLength int64
	body          io.Reader
}

// NewResponse creates a Response with no headers and an unknown length.
func NewResponse(status int) Response {
	return Response{
		status:        status,
		header:        http.Header{},
		contentLength: UnknownLength,
	}
}

// Status returns the HTTP status code.
func (r Response) Status() int { return r.status }

// Header returns a copy of the response headers.
func (r Response) Header() http.Header { return r.header.Clone() }

// ContentLength returns the body length, or UnknownLength.
func (r Response) ContentLength() int64 { return r.contentLength }

// Body returns the body reader, nil when the response has none.
func (r Response) Body() io.Reader { return r.body }

// WithHeader returns a copy with the header key set to value.
func (r Response) WithHeader(key, value string) Response {
	r.header = r.header.Clone()
	r.header.Set(key, value)
	return r
}

// WithContentLength returns a copy with the content length set. A negative
// length clears the Content-Length header.
func (r Response) WithContentLength(n int64) Response {
	r.header = r.header.Clone()
	if n < 0 {
		r.contentLength = UnknownLength
		r.header.Del(HeaderContentLength)
		return r
	}
	r.contentLength = n
	r.header.Set(HeaderContentLength, strconv.FormatInt(n, 10))
	return r
}

// WithBody returns a copy with the given body.
func (r Response) WithBody(body io.Reader) Response {
	r.body = body
	return r
}
