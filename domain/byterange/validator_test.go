package byterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_OpenEndedIsValid(t *testing.T) {
	// 1000- ; read all bytes after 1000
	assert.Empty(t, NewValidator().Validate(NewByteRange(1000)))
}

func TestValidator_NegativeLimitIsValid(t *testing.T) {
	// -2000 ; read the last 2000 bytes
	assert.Empty(t, NewValidator().Validate(NewBoundedByteRange(0, -2000)))
}

func TestValidator_LimitAfterOffsetIsValid(t *testing.T) {
	assert.Empty(t, NewValidator().Validate(NewBoundedByteRange(1000, 2000)))
	assert.Empty(t, NewValidator().Validate(NewBoundedByteRange(100, 100)))
	assert.Empty(t, NewValidator().Validate(NewBoundedByteRange(0, 0)))
}

func TestValidator_OffsetAfterLimitIsNotValid(t *testing.T) {
	violations := NewValidator().Validate(NewBoundedByteRange(50, 0))

	require.Len(t, violations, 1)
	assert.Equal(t, "limit", violations[0].Field())
	assert.Equal(t, MessageLimit, violations[0].Message())
}

func TestValidator_NegativeLimitWithOffsetIsNotValid(t *testing.T) {
	violations := NewValidator().Validate(NewBoundedByteRange(10, -5))

	require.Len(t, violations, 1)
	assert.Equal(t, MessageLimit, violations[0].Message())
}

func TestValidator_NegativeOffsetIsNotValid(t *testing.T) {
	violations := NewValidator().Validate(NewBoundedByteRange(-500, 100))

	require.NotEmpty(t, violations)
	assert.Equal(t, "offset", violations[0].Field())
	assert.Equal(t, MessageOffset, violations[0].Message())
}

func TestValidator_NegativeTotalLengthIsNotValid(t *testing.T) {
	violations := NewValidator().Validate(NewBoundedByteRange(500, 1000).WithTotalLength(-1))

	require.Len(t, violations, 1)
	assert.Equal(t, "total_length", violations[0].Field())
	assert.Equal(t, MessageTotalLength, violations[0].Message())
}

func TestValidator_ReportsViolationsInFieldOrder(t *testing.T) {
	r := NewBoundedByteRange(-5, -10).WithTotalLength(-1)

	violations := NewValidator().Validate(r)

	require.Len(t, violations, 3)
	assert.Equal(t, "offset", violations[0].Field())
	assert.Equal(t, "total_length", violations[1].Field())
	assert.Equal(t, "limit", violations[2].Field())
	assert.False(t, DefaultValidator.Valid(r))
}
