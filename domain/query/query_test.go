package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_CollectsOptions(t *testing.T) {
	q := Build(
		WithCondition("storage_id", "storage0"),
		WithConditionIn("status", []int{200, 206}),
		WithComparison("bytes_sent", AtLeast, int64(1024)),
		WithOrderDesc("created_at"),
		WithLimit(10),
		WithOffset(20),
	)

	conds := q.Conditions()
	assert.Len(t, conds, 3)
	assert.Equal(t, "storage_id = storage0", conds[0].String())
	assert.Equal(t, In, conds[1].Operator())
	assert.Equal(t, "status", conds[1].Field())
	assert.Equal(t, "bytes_sent >= 1024", conds[2].String())

	orders := q.Orders()
	assert.Len(t, orders, 1)
	assert.Equal(t, "created_at", orders[0].Field())
	assert.False(t, orders[0].Ascending())

	assert.Equal(t, 10, q.LimitValue())
	assert.Equal(t, 20, q.OffsetValue())
}

func TestQuery_ConditionsAreCopies(t *testing.T) {
	q := Build(WithID(7))
	conds := q.Conditions()
	conds[0] = Condition{field: "other"}

	assert.Equal(t, "id", q.Conditions()[0].Field())
}

func TestWithPagination(t *testing.T) {
	tests := []struct {
		page, size    int
		limit, offset int
	}{
		{1, 20, 20, 0},
		{3, 20, 20, 40},
		{0, 10, 10, 0},
		{-4, 10, 10, 0},
	}

	for _, tt := range tests {
		q := Build(WithPagination(tt.page, tt.size)...)
		assert.Equal(t, tt.limit, q.LimitValue())
		assert.Equal(t, tt.offset, q.OffsetValue())
	}
}

func TestOperator_Symbol(t *testing.T) {
	assert.Equal(t, "=", Equal.Symbol())
	assert.Equal(t, "IN", In.Symbol())
	assert.Equal(t, ">=", AtLeast.Symbol())
	assert.Equal(t, "<", Below.Symbol())
}
