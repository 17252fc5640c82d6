// Package transfer provides the domain types for the log of served downloads.
package transfer

import (
	"context"
	"time"

	"github.com/helixml/byteserve/domain/query"
)

// Transfer records one download request served from a storage.
type Transfer struct {
	id            int64
	storageID     string
	repositoryID  string
	path          string
	rangeHeader   string
	status        int
	bytesSent     int64
	remoteAddress string
	createdAt     time.Time
}

// NewTransfer creates a Transfer that has not been persisted yet.
func NewTransfer(storageID, repositoryID, path string) Transfer {
	return Transfer{
		storageID:    storageID,
		repositoryID: repositoryID,
		path:         path,
	}
}

// ReconstructTransfer rebuilds a Transfer from persisted fields.
func ReconstructTransfer(
	id int64,
	storageID, repositoryID, path, rangeHeader string,
	status int,
	bytesSent int64,
	remoteAddress string,
	createdAt time.Time,
) Transfer {
	return Transfer{
		id:            id,
		storageID:     storageID,
		repositoryID:  repositoryID,
		path:          path,
		rangeHeader:   rangeHeader,
		status:        status,
		bytesSent:     bytesSent,
		remoteAddress: remoteAddress,
		createdAt:     createdAt,
	}
}

// ID returns the transfer ID, zero before it is saved.
func (t Transfer) ID() int64 { return t.id }

// StorageID returns the storage the artifact was served from.
func (t Transfer) StorageID() string { return t.storageID }

// RepositoryID returns the repository within the storage.
func (t Transfer) RepositoryID() string { return t.repositoryID }

// Path returns the artifact path inside the repository.
func (t Transfer) Path() string { return t.path }

// RangeHeader returns the raw Range header, empty for full downloads.
func (t Transfer) RangeHeader() string { return t.rangeHeader }

// Status returns the HTTP status sent.
func (t Transfer) Status() int { return t.status }

// BytesSent returns the number of body bytes written.
func (t Transfer) BytesSent() int64 { return t.bytesSent }

// RemoteAddress returns the client address.
func (t Transfer) RemoteAddress() string { return t.remoteAddress }

// CreatedAt returns when the transfer was recorded.
func (t Transfer) CreatedAt() time.Time { return t.createdAt }

// Ranged reports whether the transfer answered a Range request.
func (t Transfer) Ranged() bool { return t.rangeHeader != "" }

// WithRangeHeader returns a copy with the Range header set.
func (t Transfer) WithRangeHeader(header string) Transfer {
	t.rangeHeader = header
	return t
}

// WithResult returns a copy with the response status and body size set.
func (t Transfer) WithResult(status int, bytesSent int64) Transfer {
	t.status = status
	t.bytesSent = bytesSent
	return t
}

// WithRemoteAddress returns a copy with the client address set.
func (t Transfer) WithRemoteAddress(addr string) Transfer {
	t.remoteAddress = addr
	return t
}

// Store persists transfers.
type Store interface {
	Save(ctx context.Context, t Transfer) (Transfer, error)
	Find(ctx context.Context, options ...query.Option) ([]Transfer, error)
	FindOne(ctx context.Context, options ...query.Option) (Transfer, error)
	Count(ctx context.Context, options ...query.Option) (int64, error)
}

// WithStorageID filters by the "storage_id" column.
func WithStorageID(id string) query.Option {
	return query.WithCondition("storage_id", id)
}

// WithRepositoryID filters by the "repository_id" column.
func WithRepositoryID(id string) query.Option {
	return query.WithCondition("repository_id", id)
}

// WithStatus filters by the "status" column.
func WithStatus(status int) query.Option {
	return query.WithCondition("status", status)
}

// WithStatusClass filters by status class, e.g. 4 for every 4xx answer.
func WithStatusClass(class int) []query.Option {
	return []query.Option{
		query.WithComparison("status", query.AtLeast, class*100),
		query.WithComparison("status", query.Below, (class+1)*100),
	}
}

// NewestFirst orders transfers by creation time, most recent first.
func NewestFirst() query.Option {
	return query.WithOrderDesc("created_at")
}
