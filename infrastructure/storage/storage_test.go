package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestBucket(t *testing.T, objects map[string]string) *blob.Bucket {
	t.Helper()
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	for key, content := range objects {
		require.NoError(t, bucket.WriteAll(ctx, key, []byte(content), &blob.WriterOptions{
			ContentType: "application/octet-stream",
		}))
	}
	return bucket
}

func TestRegistry_OpenAndLookup(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)
	t.Cleanup(func() { _ = reg.Close() })

	require.NoError(t, reg.Open(ctx, "storage1", "mem://"))
	dir := filepath.Join(t.TempDir(), "storage0")
	require.NoError(t, reg.Open(ctx, "storage0", "file://"+dir))

	assert.Equal(t, []string{"storage0", "storage1"}, reg.IDs())

	bucket, err := reg.Bucket("storage0")
	require.NoError(t, err)
	require.NoError(t, bucket.WriteAll(ctx, "releases/a.txt", []byte("hi"), nil))

	_, err = reg.Bucket("missing")
	assert.True(t, errors.Is(err, ErrStorageNotFound))
}

func TestRegistry_OpenRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)

	assert.Error(t, reg.Open(ctx, "", "mem://"))
	assert.Error(t, reg.Open(ctx, "x", "nosuchscheme://bucket"))
}

func TestRegistry_CloseEmptiesRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Add("a", memblob.OpenBucket(nil))

	require.NoError(t, reg.Close())
	assert.Empty(t, reg.IDs())
}

func TestOpenResource_NotFound(t *testing.T) {
	bucket := newTestBucket(t, nil)

	_, err := OpenResource(context.Background(), bucket, "releases/missing.jar")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestBlobResource_SkipThenRead(t *testing.T) {
	bucket := newTestBucket(t, map[string]string{"releases/digits.bin": "0123456789"})

	res, err := OpenResource(context.Background(), bucket, "releases/digits.bin")
	require.NoError(t, err)
	defer func() { _ = res.Close() }()

	assert.Equal(t, int64(10), res.Length())

	n, err := res.Skip(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "3456789", string(data))
	assert.Equal(t, int64(10), res.Position())
}

func TestBlobResource_SkipWhileReading(t *testing.T) {
	bucket := newTestBucket(t, map[string]string{"releases/digits.bin": "0123456789"})

	res, err := OpenResource(context.Background(), bucket, "releases/digits.bin")
	require.NoError(t, err)
	defer func() { _ = res.Close() }()

	buf := make([]byte, 2)
	_, err = io.ReadFull(res, buf)
	require.NoError(t, err)
	assert.Equal(t, "01", string(buf))

	n, err := res.Skip(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rest, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(rest))
}

func TestBlobResource_SkipPastEndClamps(t *testing.T) {
	bucket := newTestBucket(t, map[string]string{"r/a": "abc"})

	res, err := OpenResource(context.Background(), bucket, "r/a")
	require.NoError(t, err)

	n, err := res.Skip(10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	data, err := io.ReadAll(res)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestOpenResource_ContentTypes(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t, map[string]string{
		"releases/lib.jar.sha1":       "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		"releases/maven-metadata.xml": "<metadata/>",
		"releases/logo.png":           string(pngHeader),
		"releases/empty.bin":          "",
	})

	tests := map[string]string{
		"releases/lib.jar.sha1":       "text/plain",
		"releases/maven-metadata.xml": "application/xml",
		"releases/logo.png":           "image/png",
		"releases/empty.bin":          "application/octet-stream",
	}

	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			res, err := OpenResource(ctx, bucket, key)
			require.NoError(t, err)
			assert.Equal(t, want, res.ContentType())
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		declared string
		head     []byte
		want     string
	}{
		{"md5", "r/a.jar.md5", "application/octet-stream", nil, "text/plain"},
		{"sha1", "r/a.jar.sha1", "", nil, "text/plain"},
		{"metadata", "r/g/a/maven-metadata.xml", "text/xml", nil, "application/xml"},
		{"declared wins", "r/a.pom", "text/xml; charset=utf-8", pngHeader, "text/xml; charset=utf-8"},
		{"generic is sniffed", "r/a.bin", "application/octet-stream", pngHeader, "image/png"},
		{"empty is sniffed", "r/a.bin", "", pngHeader, "image/png"},
		{"nothing known", "r/a.bin", "", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentType(tt.key, tt.declared, tt.head))
		})
	}
}
