package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gocloud.dev/blob"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/domain/download"
	"github.com/helixml/byteserve/domain/transfer"
	"github.com/helixml/byteserve/infrastructure/api/middleware"
	"github.com/helixml/byteserve/infrastructure/storage"
)

// BucketSource resolves storage IDs to buckets.
type BucketSource interface {
	Bucket(id string) (*blob.Bucket, error)
}

// TransferRecorder persists served transfers.
type TransferRecorder interface {
	Record(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error)
}

// ArtifactsRouter serves stored artifacts with byte range support.
type ArtifactsRouter struct {
	storages  BucketSource
	parser    byterange.HeaderParser
	downloads *service.PartialDownload
	recorder  TransferRecorder
	logger    *slog.Logger
}

// NewArtifactsRouter creates a new ArtifactsRouter. recorder may be nil, in
// which case transfers are not recorded.
func NewArtifactsRouter(
	storages BucketSource,
	parser byterange.HeaderParser,
	downloads *service.PartialDownload,
	recorder TransferRecorder,
	logger *slog.Logger,
) *ArtifactsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if downloads == nil {
		downloads = service.NewPartialDownload(logger)
	}
	return &ArtifactsRouter{
		storages:  storages,
		parser:    parser,
		downloads: downloads,
		recorder:  recorder,
		logger:    logger,
	}
}

// Routes returns the chi router for artifact endpoints, meant to be mounted
// at /storages.
func (a *ArtifactsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{storageId}/{repositoryId}/*", a.Serve)
	router.Head("/{storageId}/{repositoryId}/*", a.Serve)
	return router
}

// Serve handles GET and HEAD for /{storageId}/{repositoryId}/{path}.
func (a *ArtifactsRouter) Serve(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	storageID := chi.URLParam(req, "storageId")
	repositoryID := chi.URLParam(req, "repositoryId")
	artifactPath := chi.URLParam(req, "*")

	rec := transfer.NewTransfer(storageID, repositoryID, artifactPath).
		WithRangeHeader(req.Header.Get(download.HeaderRange)).
		WithRemoteAddress(req.RemoteAddr)

	fail := func(err error) {
		status, _ := middleware.StatusFor(err)
		a.record(ctx, rec.WithResult(status, 0))
		middleware.WriteError(w, req, err, a.logger)
	}

	key, err := objectKey(repositoryID, artifactPath)
	if err != nil {
		fail(err)
		return
	}

	bucket, err := a.storages.Bucket(storageID)
	if err != nil {
		fail(err)
		return
	}

	resource, err := storage.OpenResource(ctx, bucket, key)
	if err != nil {
		fail(err)
		return
	}
	defer func() {
		if err := resource.Close(); err != nil {
			a.logger.WarnContext(ctx, "close artifact", slog.String("key", key), slog.Any("error", err))
		}
	}()

	var resp download.Response
	if service.IsRangedRequest(req.Header) {
		ranges, err := a.parser.Parse(req.Header.Get(download.HeaderRange))
		if err != nil {
			fail(err)
			return
		}
		resp, err = a.downloads.Respond(resource, ranges)
		if err != nil {
			fail(err)
			return
		}
	} else {
		resp = download.NewResponse(http.StatusOK).
			WithHeader(download.HeaderAcceptRanges, "bytes").
			WithContentLength(resource.Length()).
			WithBody(resource)
	}

	sent := a.write(w, req, resource, resp)
	a.record(ctx, rec.WithResult(resp.Status(), sent))
}

// write sends resp and returns the number of body bytes written.
func (a *ArtifactsRouter) write(w http.ResponseWriter, req *http.Request, resource *storage.BlobResource, resp download.Response) int64 {
	resp = clampLength(resp, resource)

	header := w.Header()
	for k, v := range resp.Header() {
		header[k] = v
	}

	if resp.Status() == http.StatusOK || resp.Status() == http.StatusPartialContent {
		header.Set("Content-Type", resource.ContentType())
		if !resource.ModTime().IsZero() {
			header.Set("Last-Modified", resource.ModTime().UTC().Format(http.TimeFormat))
		}
		if etag := resource.ETag(); etag != "" {
			header.Set("ETag", etag)
		}
	}

	w.WriteHeader(resp.Status())

	body := resp.Body()
	if req.Method == http.MethodHead || body == nil {
		return 0
	}

	var (
		n   int64
		err error
	)
	if length := resp.ContentLength(); length >= 0 {
		n, err = io.CopyN(w, body, length)
	} else {
		n, err = io.Copy(w, body)
	}
	if err != nil {
		a.logger.DebugContext(req.Context(), "artifact body interrupted",
			slog.String("key", resource.Key()),
			slog.Int64("sent", n),
			slog.Any("error", err),
		)
	}
	return n
}

// clampLength caps the declared content length at what resource can still
// supply from its current position. A bounded range ending past EOF would
// otherwise promise more bytes than the body carries.
func clampLength(resp download.Response, resource *storage.BlobResource) download.Response {
	declared := resp.ContentLength()
	if declared < 0 {
		return resp
	}
	available := max(resource.Length()-resource.Position(), 0)
	if declared > available {
		return resp.WithContentLength(available)
	}
	return resp
}

func (a *ArtifactsRouter) record(ctx context.Context, t transfer.Transfer) {
	if a.recorder == nil {
		return
	}
	if _, err := a.recorder.Record(context.WithoutCancel(ctx), t); err != nil {
		a.logger.WarnContext(ctx, "failed to record transfer",
			slog.String("storage_id", t.StorageID()),
			slog.String("path", t.Path()),
			slog.Any("error", err),
		)
	}
}

// objectKey joins the repository and artifact path into a bucket key. Paths
// that are empty or climb out of the repository are rejected.
func objectKey(repositoryID, artifactPath string) (string, error) {
	if artifactPath == "" || strings.HasSuffix(artifactPath, "/") {
		return "", middleware.NewAPIError(http.StatusNotFound, "artifact path "+strconv.Quote(artifactPath)+" does not name a file", nil)
	}
	key := path.Join(repositoryID, artifactPath)
	if repositoryID == "." || repositoryID == ".." || !strings.HasPrefix(key, repositoryID+"/") {
		return "", middleware.NewAPIError(http.StatusBadRequest, "artifact path "+strconv.Quote(artifactPath)+" escapes its repository", nil)
	}
	return key, nil
}
