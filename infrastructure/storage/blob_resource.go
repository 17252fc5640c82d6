package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/helixml/byteserve/domain/download"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// BlobResource is a stored object positioned for a download. The object is
// read lazily from the current position on the first Read. Not safe for
// concurrent use.
type BlobResource struct {
	*download.Cursor

	ctx         context.Context
	bucket      *blob.Bucket
	key         string
	contentType string
	modTime     time.Time
	etag        string
	reader      *blob.Reader
}

// OpenResource looks up key in bucket and returns a resource positioned at
// the start of the object. Missing objects yield ErrObjectNotFound.
func OpenResource(ctx context.Context, bucket *blob.Bucket, key string) (*BlobResource, error) {
	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("read attributes of %s: %w", key, err)
	}

	contentType := attrs.ContentType
	if needsSniffing(key, contentType) {
		head, err := readHead(ctx, bucket, key, attrs.Size)
		if err != nil {
			return nil, err
		}
		contentType = ContentType(key, contentType, head)
	} else {
		contentType = ContentType(key, contentType, nil)
	}

	return &BlobResource{
		Cursor:      download.NewCursor(attrs.Size),
		ctx:         ctx,
		bucket:      bucket,
		key:         key,
		contentType: contentType,
		modTime:     attrs.ModTime,
		etag:        attrs.ETag,
	}, nil
}

func readHead(ctx context.Context, bucket *blob.Bucket, key string, size int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	n := int64(sniffLength)
	if size < n {
		n = size
	}
	r, err := bucket.NewRangeReader(ctx, key, 0, n, nil)
	if err != nil {
		return nil, fmt.Errorf("read head of %s: %w", key, err)
	}
	defer func() { _ = r.Close() }()

	head, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read head of %s: %w", key, err)
	}
	return head, nil
}

// Key returns the object key.
func (r *BlobResource) Key() string { return r.key }

// ContentType returns the resolved media type.
func (r *BlobResource) ContentType() string { return r.contentType }

// ModTime returns the last modification time, zero when the store has none.
func (r *BlobResource) ModTime() time.Time { return r.modTime }

// ETag returns the entity tag reported by the store.
func (r *BlobResource) ETag() string { return r.etag }

// Skip advances the position by up to n bytes. Once reading has started the
// skipped bytes are discarded from the open stream.
func (r *BlobResource) Skip(n int64) (int64, error) {
	skipped, err := r.Cursor.Skip(n)
	if err != nil || skipped == 0 || r.reader == nil {
		return skipped, err
	}

	discarded, err := io.CopyN(io.Discard, r.reader, skipped)
	if err != nil {
		return discarded, fmt.Errorf("skip %d bytes of %s: %w", skipped, r.key, err)
	}
	return discarded, nil
}

// Read implements io.Reader from the current position.
func (r *BlobResource) Read(p []byte) (int, error) {
	if r.Position() >= r.Length() {
		return 0, io.EOF
	}

	if r.reader == nil {
		reader, err := r.bucket.NewRangeReader(r.ctx, r.key, r.Position(), -1, nil)
		if err != nil {
			return 0, fmt.Errorf("open %s at %d: %w", r.key, r.Position(), err)
		}
		r.reader = reader
	}

	n, err := r.reader.Read(p)
	r.Advance(int64(n))
	return n, err
}

// Close releases the underlying stream, if one was opened.
func (r *BlobResource) Close() error {
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", r.key, err)
	}
	return nil
}

var _ download.Resource = (*BlobResource)(nil)
