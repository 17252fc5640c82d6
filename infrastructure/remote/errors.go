package remote

import "errors"

// Sentinel errors for remote downloads.
var (
	// ErrRangeNotSupported indicates the server ignored a Range request.
	ErrRangeNotSupported = errors.New("remote: server does not support range requests")

	// ErrRangeNotSatisfiable indicates the server answered 416.
	ErrRangeNotSatisfiable = errors.New("remote: range not satisfiable")

	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound = errors.New("remote: resource not found")

	// ErrServerError indicates a 5xx answer.
	ErrServerError = errors.New("remote: server error")

	// ErrIncomplete indicates a local file that does not match the remote size.
	ErrIncomplete = errors.New("remote: local file does not match remote size")
)
