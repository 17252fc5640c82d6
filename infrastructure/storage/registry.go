// Package storage maps storage ids to object storage buckets and exposes
// stored artifacts as positionable download resources.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"sync"

	"gocloud.dev/blob"
	// Bucket drivers selected by URL scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Registry holds the buckets backing each configured storage.
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]*blob.Bucket
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		buckets: make(map[string]*blob.Bucket),
		logger:  logger,
	}
}

// Open opens the bucket at bucketURL and registers it under id. Supported
// schemes are file://, mem://, s3:// and gs://. Local directories are
// created when missing.
func (r *Registry) Open(ctx context.Context, id, bucketURL string) error {
	if id == "" {
		return errors.New("storage id is required")
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return fmt.Errorf("parse storage url %q: %w", bucketURL, err)
	}
	if u.Scheme == "file" {
		if err := os.MkdirAll(u.Path, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("open storage %s: %w", id, err)
	}

	r.Add(id, bucket)
	r.logger.Info("storage opened", slog.String("storage_id", id), slog.String("scheme", u.Scheme))
	return nil
}

// Add registers an already open bucket under id, closing any bucket
// previously registered with the same id.
func (r *Registry) Add(id string, bucket *blob.Bucket) {
	r.mu.Lock()
	previous := r.buckets[id]
	r.buckets[id] = bucket
	r.mu.Unlock()

	if previous != nil && previous != bucket {
		if err := previous.Close(); err != nil {
			r.logger.Warn("failed to close replaced storage", slog.String("storage_id", id), slog.Any("error", err))
		}
	}
}

// Bucket returns the bucket registered under id.
func (r *Registry) Bucket(id string) (*blob.Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStorageNotFound, id)
	}
	return bucket, nil
}

// IDs returns the registered storage ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.buckets))
	for id := range r.buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every registered bucket.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, bucket := range r.buckets {
		if err := bucket.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage %s: %w", id, err))
		}
	}
	r.buckets = make(map[string]*blob.Bucket)
	return errors.Join(errs...)
}
