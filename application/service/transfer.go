package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/helixml/byteserve/domain/query"
	"github.com/helixml/byteserve/domain/transfer"
)

// Default and maximum page sizes for transfer listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TransferFilter narrows a transfer listing. Zero values match everything.
// StatusClass is the leading digit of the status, so 4 matches every 4xx.
type TransferFilter struct {
	StorageID    string
	RepositoryID string
	Status       int
	StatusClass  int
}

func (f TransferFilter) options() []query.Option {
	var opts []query.Option
	if f.StorageID != "" {
		opts = append(opts, transfer.WithStorageID(f.StorageID))
	}
	if f.RepositoryID != "" {
		opts = append(opts, transfer.WithRepositoryID(f.RepositoryID))
	}
	if f.Status != 0 {
		opts = append(opts, transfer.WithStatus(f.Status))
	}
	if f.StatusClass != 0 {
		opts = append(opts, transfer.WithStatusClass(f.StatusClass)...)
	}
	return opts
}

// Page selects a one-based page of results.
type Page struct {
	Number int
	Size   int
}

// normalized clamps the page to valid bounds.
func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Transfers records and lists served downloads.
type Transfers struct {
	store  transfer.Store
	closed *atomic.Bool
	logger *slog.Logger
}

// NewTransfers creates a new Transfers service. Once closed is set every
// operation fails with ErrClientClosed; a nil closed flag never trips.
func NewTransfers(store transfer.Store, closed *atomic.Bool, logger *slog.Logger) *Transfers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transfers{store: store, closed: closed, logger: logger}
}

func (s *Transfers) checkOpen() error {
	if s.closed != nil && s.closed.Load() {
		return ErrClientClosed
	}
	return nil
}

// Record persists a transfer.
func (s *Transfers) Record(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	if err := s.checkOpen(); err != nil {
		return transfer.Transfer{}, err
	}
	saved, err := s.store.Save(ctx, t)
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("record transfer: %w", err)
	}
	s.logger.DebugContext(ctx, "transfer recorded",
		slog.Int64("id", saved.ID()),
		slog.String("storage_id", saved.StorageID()),
		slog.String("path", saved.Path()),
		slog.Int("status", saved.Status()),
	)
	return saved, nil
}

// Get returns the transfer with the given id.
func (s *Transfers) Get(ctx context.Context, id int64) (transfer.Transfer, error) {
	if err := s.checkOpen(); err != nil {
		return transfer.Transfer{}, err
	}
	t, err := s.store.FindOne(ctx, query.WithID(id))
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("get transfer %d: %w", id, err)
	}
	return t, nil
}

// List returns a page of transfers matching filter, newest first, together
// with the total number of matches.
func (s *Transfers) List(ctx context.Context, filter TransferFilter, page Page) ([]transfer.Transfer, int64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, 0, err
	}
	page = page.normalized()

	total, err := s.store.Count(ctx, filter.options()...)
	if err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	opts := filter.options()
	opts = append(opts, transfer.NewestFirst(), query.WithOrderDesc("id"))
	opts = append(opts, query.WithPagination(page.Number, page.Size)...)

	transfers, err := s.store.Find(ctx, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, total, nil
}

// Count returns the number of transfers matching filter.
func (s *Transfers) Count(ctx context.Context, filter TransferFilter) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	n, err := s.store.Count(ctx, filter.options()...)
	if err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return n, nil
}
