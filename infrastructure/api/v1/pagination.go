package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/infrastructure/api/jsonapi"
)

// ParsePagination parses page and page_size from the query string.
// Default: page=1, page_size=20. Max page_size: 100.
// Unparseable or out of range values fall back to the defaults.
func ParsePagination(r *http.Request) service.Page {
	page := service.Page{Number: 1, Size: service.DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if n, err := strconv.Atoi(pageStr); err == nil && n >= 1 {
			page.Number = n
		}
	}

	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			page.Size = min(size, service.MaxPageSize)
		}
	}

	return page
}

func totalPages(page service.Page, totalCount int64) int {
	if page.Size <= 0 {
		return 0
	}
	return int((totalCount + int64(page.Size) - 1) / int64(page.Size))
}

// PaginationMeta builds a JSON:API meta object from the page and total count.
func PaginationMeta(page service.Page, totalCount int64) *jsonapi.Meta {
	return &jsonapi.Meta{
		"page":        page.Number,
		"page_size":   page.Size,
		"total_count": totalCount,
		"total_pages": totalPages(page, totalCount),
	}
}

// PaginationLinks builds JSON:API links from the request, page and total count.
func PaginationLinks(r *http.Request, page service.Page, totalCount int64) *jsonapi.Links {
	pages := totalPages(page, totalCount)

	buildURL := func(n int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		q.Set("page_size", strconv.Itoa(page.Size))
		return fmt.Sprintf("%s?%s", r.URL.Path, q.Encode())
	}

	links := jsonapi.Links{
		Self:  buildURL(page.Number),
		First: buildURL(1),
	}
	if pages > 0 {
		links.Last = buildURL(pages)
	}
	if page.Number > 1 {
		links.Prev = buildURL(page.Number - 1)
	}
	if page.Number < pages {
		links.Next = buildURL(page.Number + 1)
	}

	return &links
}
