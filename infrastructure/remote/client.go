// Package remote downloads artifacts from byte range capable HTTP servers,
// resuming partial downloads where they stopped.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/helixml/byteserve/infrastructure/tracking"
)

// Defaults for Client options.
const (
	DefaultTimeout       = 5 * time.Minute
	DefaultRetryAttempts = 3
	DefaultBackoff       = 500 * time.Millisecond
	DefaultMaxBackoff    = 10 * time.Second
)

// FileInfo contains metadata about a remote file.
type FileInfo struct {
	Size          int64
	ETag          string
	AcceptsRanges bool
	ContentType   string
	LastModified  time.Time
}

// Resource is an open download. Offset is where Body starts within the
// remote file and Total is the remote size, -1 when unknown.
type Resource struct {
	Body          io.ReadCloser
	Status        int
	Offset        int64
	Total         int64
	ContentLength int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request, including reading its body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRetryAttempts sets how often failed requests are retried.
func WithRetryAttempts(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryAttempts = n
		}
	}
}

// WithBackoff sets the initial and maximum wait between retries.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(c *Client) {
		c.initialBackoff = initial
		c.maxBackoff = maxBackoff
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithReporter sets the reporter that receives Fetch progress.
func WithReporter(r tracking.Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client downloads remote resources with retries.
type Client struct {
	http           *http.Client
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	reporter       tracking.Reporter
	logger         *slog.Logger
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:              http.ProxyFromEnvironment,
				IdleConnTimeout:    90 * time.Second,
				DisableCompression: true,
			},
			Timeout: DefaultTimeout,
		},
		retryAttempts:  DefaultRetryAttempts,
		initialBackoff: DefaultBackoff,
		maxBackoff:     DefaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Head returns the metadata of the remote file.
func (c *Client) Head(ctx context.Context, url string) (FileInfo, error) {
	resp, err := c.do(ctx, http.MethodHead, url, "")
	if err != nil {
		return FileInfo{}, err
	}
	_ = resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Size:          resp.ContentLength,
		ETag:          strings.Trim(strings.TrimPrefix(resp.Header.Get("ETag"), "W/"), `"`),
		AcceptsRanges: resp.Header.Get("Accept-Ranges") == "bytes",
		ContentType:   resp.Header.Get("Content-Type"),
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			info.LastModified = t
		}
	}
	return info, nil
}

// GetResource opens url for reading from offset. Offset zero issues a plain
// GET; any other offset sends "Range: bytes=<offset>-" and requires a 206
// whose Content-Range starts at offset. The caller closes the body.
func (c *Client) GetResource(ctx context.Context, url string, offset int64) (Resource, error) {
	if offset < 0 {
		return Resource{}, fmt.Errorf("negative offset %d", offset)
	}

	rangeHeader := ""
	if offset > 0 {
		rangeHeader = "bytes=" + strconv.FormatInt(offset, 10) + "-"
	}

	resp, err := c.do(ctx, http.MethodGet, url, rangeHeader)
	if err != nil {
		return Resource{}, err
	}

	res, err := toResource(resp, offset)
	if err != nil {
		_ = resp.Body.Close()
		return Resource{}, err
	}
	return res, nil
}

func toResource(resp *http.Response, offset int64) (Resource, error) {
	res := Resource{
		Body:          resp.Body,
		Status:        resp.StatusCode,
		Total:         resp.ContentLength,
		ContentLength: resp.ContentLength,
	}

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return Resource{}, ErrRangeNotSatisfiable
	case offset == 0:
		if err := checkStatus(resp.StatusCode); err != nil {
			return Resource{}, err
		}
		if resp.StatusCode == http.StatusPartialContent {
			if _, _, total, err := ParseContentRange(resp.Header.Get("Content-Range")); err == nil {
				res.Total = total
			}
		}
		return res, nil
	case resp.StatusCode == http.StatusOK:
		return Resource{}, ErrRangeNotSupported
	case resp.StatusCode != http.StatusPartialContent:
		return Resource{}, checkStatus(resp.StatusCode)
	}

	start, _, total, err := ParseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return Resource{}, err
	}
	if start != offset {
		return Resource{}, fmt.Errorf("%w: asked for offset %d, got %d", ErrRangeNotSupported, offset, start)
	}
	res.Offset = start
	res.Total = total
	return res, nil
}

// Fetch downloads url into dest and returns the number of bytes written.
// An existing dest is resumed from its current size. A 416 answer for a
// file that already has the remote size counts as done, and a server that
// ignores ranges causes dest to be rewritten from scratch.
func (c *Client) Fetch(ctx context.Context, url, dest string) (int64, error) {
	var offset int64
	if fi, err := os.Stat(dest); err == nil {
		offset = fi.Size()
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("stat %s: %w", dest, err)
	}

	res, err := c.GetResource(ctx, url, offset)
	switch {
	case errors.Is(err, ErrRangeNotSatisfiable) && offset > 0:
		return 0, c.checkComplete(ctx, url, offset)
	case errors.Is(err, ErrRangeNotSupported) && offset > 0:
		c.logger.WarnContext(ctx, "server ignored range, restarting download", slog.String("url", url))
		offset = 0
		res, err = c.GetResource(ctx, url, 0)
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Body.Close() }()

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if offset > 0 {
		flags = os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", dest, err)
	}

	var dst io.Writer = f
	var progress *tracking.Writer
	if c.reporter != nil {
		progress = tracking.NewWriter(ctx, c.reporter, tracking.NewProgress(url, offset, res.Total))
		dst = io.MultiWriter(f, progress)
	}

	n, copyErr := io.Copy(dst, res.Body)
	closeErr := f.Close()
	if progress != nil {
		progress.Finish(errors.Join(copyErr, closeErr))
	}
	if copyErr != nil {
		return n, fmt.Errorf("download %s: %w", url, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("close %s: %w", dest, closeErr)
	}

	c.logger.DebugContext(ctx, "download finished",
		slog.String("url", url),
		slog.Int64("offset", offset),
		slog.Int64("written", n),
	)
	return n, nil
}

func (c *Client) checkComplete(ctx context.Context, url string, size int64) error {
	info, err := c.Head(ctx, url)
	if err != nil {
		return fmt.Errorf("verify complete download: %w", err)
	}
	if info.Size >= 0 && info.Size != size {
		return fmt.Errorf("%w: have %d bytes, remote has %d", ErrIncomplete, size, info.Size)
	}
	return nil
}

// do sends one request, retrying transport failures and 5xx answers.
func (c *Client) do(ctx context.Context, method, url, rangeHeader string) (*http.Response, error) {
	var resp *http.Response

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if rangeHeader != "" {
			req.Header.Set("Range", rangeHeader)
		}

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			_ = r.Body.Close()
			return fmt.Errorf("%w: %s", ErrServerError, r.Status)
		}
		resp = r
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "request failed, retrying",
			slog.String("method", method),
			slog.String("url", url),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retryAttempts)), ctx)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestedRangeNotSatisfiable:
		return ErrRangeNotSatisfiable
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}

// ParseContentRange parses a Content-Range value such as
// "bytes 100-999/1000". A total of "*" is returned as -1.
func ParseContentRange(value string) (start, end, total int64, err error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(value), "bytes ")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	span, size, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	first, last, ok := strings.Cut(span, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", value)
	}

	if start, err = strconv.ParseInt(first, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range start: %w", err)
	}
	if end, err = strconv.ParseInt(last, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range end: %w", err)
	}
	if end < start {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: end before start", value)
	}

	if size == "*" {
		return start, end, -1, nil
	}
	if total, err = strconv.ParseInt(size, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range total: %w", err)
	}
	return start, end, total, nil
}
