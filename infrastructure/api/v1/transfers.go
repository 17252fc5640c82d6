// Package v1 provides the version 1 JSON API routers.
package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/infrastructure/api/jsonapi"
	"github.com/helixml/byteserve/infrastructure/api/middleware"
)

// TransfersRouter handles transfer log API endpoints.
type TransfersRouter struct {
	transfers *service.Transfers
	logger    *slog.Logger
}

// NewTransfersRouter creates a new TransfersRouter.
func NewTransfersRouter(transfers *service.Transfers, logger *slog.Logger) *TransfersRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransfersRouter{
		transfers: transfers,
		logger:    logger,
	}
}

// Routes returns the chi router for transfer endpoints.
func (r *TransfersRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	return router
}

// Get handles GET /api/v1/transfers/{id}.
func (r *TransfersRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id < 1 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusNotFound, "transfer not found", err), r.logger)
		return
	}

	t, err := r.transfers.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSONAPI(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.TransferResource(t)))
}

// List handles GET /api/v1/transfers.
//
// Query parameters: storage_id, repository_id, status, status_class (e.g.
// "4xx"), page, page_size.
func (r *TransfersRouter) List(w http.ResponseWriter, req *http.Request) {
	filter, err := parseTransferFilter(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	page := ParsePagination(req)

	transfers, total, err := r.transfers.List(req.Context(), filter, page)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(jsonapi.TransferResources(transfers))
	doc.Meta = PaginationMeta(page, total)
	doc.Links = PaginationLinks(req, page, total)

	middleware.WriteJSONAPI(w, http.StatusOK, doc)
}

func parseTransferFilter(req *http.Request) (service.TransferFilter, error) {
	q := req.URL.Query()
	filter := service.TransferFilter{
		StorageID:    q.Get("storage_id"),
		RepositoryID: q.Get("repository_id"),
	}

	if s := q.Get("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil || status < 100 || status > 599 {
			return service.TransferFilter{}, middleware.NewAPIError(http.StatusBadRequest, "status must be an HTTP status code", err).
				WithParameter("status")
		}
		filter.Status = status
	}

	if s := q.Get("status_class"); s != "" {
		class, ok := parseStatusClass(s)
		if !ok {
			return service.TransferFilter{}, middleware.NewAPIError(http.StatusBadRequest, "status_class must be one of 1xx to 5xx", nil).
				WithParameter("status_class")
		}
		filter.StatusClass = class
	}

	return filter, nil
}

// parseStatusClass accepts "4xx", "4XX" or "4".
func parseStatusClass(s string) (int, bool) {
	s = strings.TrimSuffix(strings.ToLower(s), "xx")
	if len(s) != 1 || s[0] < '1' || s[0] > '5' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
