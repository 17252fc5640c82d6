package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/helixml/byteserve/domain/query"
	"github.com/helixml/byteserve/domain/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFakeNotFound = errors.New("not found")

type fakeTransferStore struct {
	saved   []transfer.Transfer
	queries []query.Query
	err     error
}

func (f *fakeTransferStore) Save(_ context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	if f.err != nil {
		return transfer.Transfer{}, f.err
	}
	f.saved = append(f.saved, t)
	return transfer.ReconstructTransfer(int64(len(f.saved)), t.StorageID(), t.RepositoryID(), t.Path(),
		t.RangeHeader(), t.Status(), t.BytesSent(), t.RemoteAddress(), t.CreatedAt()), nil
}

func (f *fakeTransferStore) Find(_ context.Context, options ...query.Option) ([]transfer.Transfer, error) {
	f.queries = append(f.queries, query.Build(options...))
	return f.saved, f.err
}

func (f *fakeTransferStore) FindOne(_ context.Context, options ...query.Option) (transfer.Transfer, error) {
	q := query.Build(options...)
	f.queries = append(f.queries, q)
	for _, c := range q.Conditions() {
		id, ok := c.Value().(int64)
		if c.Field() == "id" && ok && id >= 1 && id <= int64(len(f.saved)) {
			return f.saved[id-1], nil
		}
	}
	return transfer.Transfer{}, errFakeNotFound
}

func (f *fakeTransferStore) Count(_ context.Context, options ...query.Option) (int64, error) {
	f.queries = append(f.queries, query.Build(options...))
	return int64(len(f.saved)), f.err
}

func TestTransfers_Record(t *testing.T) {
	store := &fakeTransferStore{}
	svc := NewTransfers(store, nil, nil)

	saved, err := svc.Record(context.Background(), transfer.NewTransfer("storage0", "releases", "a.jar").
		WithResult(http.StatusOK, 3))
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID())
	assert.Len(t, store.saved, 1)
}

func TestTransfers_RecordError(t *testing.T) {
	svc := NewTransfers(&fakeTransferStore{err: errors.New("disk full")}, nil, nil)

	_, err := svc.Record(context.Background(), transfer.NewTransfer("s", "r", "p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record transfer: disk full")
}

func TestTransfers_ListBuildsQuery(t *testing.T) {
	store := &fakeTransferStore{}
	svc := NewTransfers(store, nil, nil)

	_, total, err := svc.List(context.Background(),
		TransferFilter{StorageID: "storage0", Status: http.StatusPartialContent},
		Page{Number: 3, Size: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	require.Len(t, store.queries, 2)
	count, find := store.queries[0], store.queries[1]

	assert.Len(t, count.Conditions(), 2)
	assert.Zero(t, count.LimitValue())

	assert.Len(t, find.Conditions(), 2)
	assert.Equal(t, "created_at", find.Orders()[0].Field())
	assert.False(t, find.Orders()[0].Ascending())
	assert.Equal(t, 10, find.LimitValue())
	assert.Equal(t, 20, find.OffsetValue())
}

func TestTransfers_ListStatusClass(t *testing.T) {
	store := &fakeTransferStore{}
	svc := NewTransfers(store, nil, nil)

	_, _, err := svc.List(context.Background(), TransferFilter{StatusClass: 4}, Page{})
	require.NoError(t, err)

	conds := store.queries[0].Conditions()
	require.Len(t, conds, 2)
	assert.Equal(t, "status >= 400", conds[0].String())
	assert.Equal(t, "status < 500", conds[1].String())
}

func TestTransfers_Get(t *testing.T) {
	store := &fakeTransferStore{}
	svc := NewTransfers(store, nil, nil)

	_, err := svc.Record(context.Background(), transfer.NewTransfer("storage0", "releases", "a.jar"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a.jar", got.Path())

	_, err = svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, errFakeNotFound)
	assert.Contains(t, err.Error(), "get transfer 9")
}

func TestPage_Normalized(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Number: 1, Size: DefaultPageSize}},
		{Page{Number: 2, Size: 500}, Page{Number: 2, Size: MaxPageSize}},
		{Page{Number: -1, Size: 5}, Page{Number: 1, Size: 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.normalized())
	}
}

func TestTransfers_ClosedClient(t *testing.T) {
	var closed atomic.Bool
	store := &fakeTransferStore{}
	svc := NewTransfers(store, &closed, nil)

	_, err := svc.Record(context.Background(), transfer.NewTransfer("storage0", "releases", "a.jar"))
	require.NoError(t, err)

	closed.Store(true)

	_, err = svc.Record(context.Background(), transfer.NewTransfer("storage0", "releases", "b.jar"))
	assert.ErrorIs(t, err, ErrClientClosed)
	_, _, err = svc.List(context.Background(), TransferFilter{}, Page{})
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = svc.Count(context.Background(), TransferFilter{})
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Len(t, store.saved, 1)
}
