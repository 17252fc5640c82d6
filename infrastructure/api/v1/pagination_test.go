package v1

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/byteserve/application/service"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  service.Page
	}{
		{"", service.Page{Number: 1, Size: 20}},
		{"page=3&page_size=50", service.Page{Number: 3, Size: 50}},
		{"page_size=1000", service.Page{Number: 1, Size: 100}},
		{"page=0&page_size=-4", service.Page{Number: 1, Size: 20}},
		{"page=x&page_size=y", service.Page{Number: 1, Size: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/transfers?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	meta := PaginationMeta(service.Page{Number: 2, Size: 10}, 25)
	require.NotNil(t, meta)

	assert.Equal(t, 2, (*meta)["page"])
	assert.Equal(t, 10, (*meta)["page_size"])
	assert.Equal(t, int64(25), (*meta)["total_count"])
	assert.Equal(t, 3, (*meta)["total_pages"])
}

func TestPaginationLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/transfers?storage_id=storage0", nil)

	links := PaginationLinks(r, service.Page{Number: 2, Size: 10}, 25)

	assert.Equal(t, "/api/v1/transfers?page=2&page_size=10&storage_id=storage0", links.Self)
	assert.Equal(t, "/api/v1/transfers?page=1&page_size=10&storage_id=storage0", links.First)
	assert.Equal(t, "/api/v1/transfers?page=3&page_size=10&storage_id=storage0", links.Last)
	assert.Equal(t, "/api/v1/transfers?page=1&page_size=10&storage_id=storage0", links.Prev)
	assert.Equal(t, "/api/v1/transfers?page=3&page_size=10&storage_id=storage0", links.Next)
}

func TestPaginationLinks_SinglePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/transfers", nil)

	links := PaginationLinks(r, service.Page{Number: 1, Size: 20}, 0)

	assert.Empty(t, links.Last)
	assert.Empty(t, links.Prev)
	assert.Empty(t, links.Next)
}

func TestParseStatusClass(t *testing.T) {
	for in, want := range map[string]int{"4xx": 4, "5XX": 5, "2": 2} {
		got, ok := parseStatusClass(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "xx", "0xx", "6xx", "40x", "44"} {
		_, ok := parseStatusClass(in)
		assert.False(t, ok, in)
	}
}
