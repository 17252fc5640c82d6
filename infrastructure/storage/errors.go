package storage

import "errors"

var (
	// ErrStorageNotFound indicates no bucket is registered for a storage id.
	ErrStorageNotFound = errors.New("storage not found")
	// ErrObjectNotFound indicates the requested key does not exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")
)
