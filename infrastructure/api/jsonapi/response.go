// Package jsonapi renders API responses as JSON:API documents.
// See https://jsonapi.org/format/.
package jsonapi

import (
	"encoding/json"
	"time"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Document is a top-level document. Exactly one of Data and Errors is set.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   *Meta   `json:"meta,omitempty"`
	Links  *Links  `json:"links,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta holds non-standard meta-information.
type Meta map[string]any

// Links holds the self and pagination links of a document or resource.
type Links struct {
	Self  string `json:"self,omitempty"`
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Resource is a resource object.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
	Links      *Links `json:"links,omitempty"`
}

// Error is an error object. ID carries the request's correlation id.
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the part of the request that caused an error:
// a query parameter or a request header.
type ErrorSource struct {
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

// NewResource creates a resource.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse wraps one resource.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse wraps a list of resources. An empty list still renders
// as "data": [].
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources}
}

// NewErrorResponse wraps error objects.
func NewErrorResponse(errs ...Error) *Document {
	return &Document{Errors: errs}
}

// NewError creates an error object.
func NewError(status, title, detail string) Error {
	return Error{Status: status, Title: title, Detail: detail}
}

// DateTime renders a time as RFC 3339 in UTC, or null when zero.
type DateTime time.Time

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	t := time.Time(dt)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*dt = DateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*dt = DateTime(t)
	return nil
}

// Time returns the underlying time.
func (dt DateTime) Time() time.Time {
	return time.Time(dt)
}
