package byteserve

import (
	"errors"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/infrastructure/storage"
)

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no database was configured.
	ErrNoDatabase = errors.New("byteserve: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed

	// ErrStorageNotFound indicates an unknown storage ID.
	ErrStorageNotFound = storage.ErrStorageNotFound

	// ErrObjectNotFound indicates a missing artifact.
	ErrObjectNotFound = storage.ErrObjectNotFound

	// ErrMalformedRange indicates a Range header that cannot be parsed.
	ErrMalformedRange = byterange.ErrMalformedRange

	// ErrInvalidRange indicates a range that breaks a range invariant.
	ErrInvalidRange = byterange.ErrInvalidRange
)
