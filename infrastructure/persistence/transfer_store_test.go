package persistence_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/helixml/byteserve/domain/query"
	"github.com/helixml/byteserve/domain/transfer"
	"github.com/helixml/byteserve/infrastructure/persistence"
	"github.com/helixml/byteserve/internal/database"
	"github.com/helixml/byteserve/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewTransferStore(testdb.New(t))

	saved, err := store.Save(ctx, transfer.NewTransfer("storage0", "releases", "a/b.jar").
		WithRangeHeader("bytes=100-").
		WithResult(http.StatusPartialContent, 900))
	require.NoError(t, err)

	assert.NotZero(t, saved.ID())
	assert.False(t, saved.CreatedAt().IsZero())
	assert.Equal(t, "bytes=100-", saved.RangeHeader())
	assert.Equal(t, int64(900), saved.BytesSent())
}

func TestTransferStore_SaveUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewTransferStore(testdb.New(t))

	saved, err := store.Save(ctx, transfer.NewTransfer("storage0", "releases", "a.jar"))
	require.NoError(t, err)

	_, err = store.Save(ctx, saved.WithResult(http.StatusOK, 42))
	require.NoError(t, err)

	all, err := store.Find(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, http.StatusOK, all[0].Status())
	assert.Equal(t, int64(42), all[0].BytesSent())
}

func TestTransferStore_FindAndCountWithOptions(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewTransferStore(testdb.New(t))

	fixtures := []transfer.Transfer{
		transfer.NewTransfer("storage0", "releases", "one.jar").WithResult(http.StatusOK, 10),
		transfer.NewTransfer("storage0", "releases", "two.jar").WithResult(http.StatusPartialContent, 5),
		transfer.NewTransfer("storage1", "snapshots", "three.jar").WithResult(http.StatusPartialContent, 7),
	}
	for _, f := range fixtures {
		_, err := store.Save(ctx, f)
		require.NoError(t, err)
	}

	partial, err := store.Find(ctx, transfer.WithStatus(http.StatusPartialContent), query.WithOrderAsc("id"))
	require.NoError(t, err)
	require.Len(t, partial, 2)
	assert.Equal(t, "two.jar", partial[0].Path())
	assert.Equal(t, "three.jar", partial[1].Path())

	count, err := store.Count(ctx, transfer.WithStorageID("storage0"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := store.Find(ctx, append(query.WithPagination(2, 2), query.WithOrderAsc("id"))...)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "three.jar", page[0].Path())
}

func TestTransferStore_StatusClassAndFindOne(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewTransferStore(testdb.New(t))

	var ids []int64
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusRequestedRangeNotSatisfiable, http.StatusInternalServerError} {
		saved, err := store.Save(ctx, transfer.NewTransfer("storage0", "releases", "a.jar").WithResult(status, 0))
		require.NoError(t, err)
		ids = append(ids, saved.ID())
	}

	clientErrors, err := store.Find(ctx, append(transfer.WithStatusClass(4), query.WithOrderAsc("id"))...)
	require.NoError(t, err)
	require.Len(t, clientErrors, 2)
	assert.Equal(t, http.StatusNotFound, clientErrors[0].Status())
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, clientErrors[1].Status())

	one, err := store.FindOne(ctx, query.WithID(ids[3]))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, one.Status())

	_, err = store.FindOne(ctx, query.WithID(ids[3]+100))
	assert.True(t, errors.Is(err, database.ErrNotFound))
}
