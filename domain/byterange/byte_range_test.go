package byterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewByteRange(t *testing.T) {
	r := NewByteRange(500)

	assert.Equal(t, int64(500), r.Offset())
	_, ok := r.Limit()
	assert.False(t, ok)
	assert.True(t, r.IsOpenEnded())
	assert.False(t, r.IsSuffix())
	assert.Equal(t, int64(0), r.TotalLength())
}

func TestNewSuffixByteRange(t *testing.T) {
	r := NewSuffixByteRange(500)

	limit, ok := r.Limit()
	assert.True(t, ok)
	assert.Equal(t, int64(-500), limit)
	assert.Equal(t, int64(0), r.Offset())
	assert.True(t, r.IsSuffix())
}

func TestByteRange_WithTotalLengthCopies(t *testing.T) {
	r := NewBoundedByteRange(500, 1000)
	withLength := r.WithTotalLength(1001)

	assert.Equal(t, int64(0), r.TotalLength())
	assert.Equal(t, int64(1001), withLength.TotalLength())
}

func TestByteRange_String(t *testing.T) {
	tests := []struct {
		name  string
		input ByteRange
		want  string
	}{
		{"open ended", NewByteRange(500), "bytes=500-"},
		{"open ended with length", NewByteRange(500).WithTotalLength(1001), "bytes=-1001"},
		{"suffix with length", NewSuffixByteRange(500).WithTotalLength(1001), "bytes=500-1000/1001"},
		{"suffix without length", NewSuffixByteRange(500), "bytes=-500"},
		{"bounded with length", NewBoundedByteRange(500, 1000).WithTotalLength(1001), "bytes=500-1000/1001"},
		{"bounded without length", NewBoundedByteRange(500, 1000), "bytes=500-1000"},
		{"zero offset open ended", NewByteRange(0), "bytes=0"},
		{"zero limit", NewBoundedByteRange(0, 0), "bytes=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.String())
		})
	}
}

func TestByteRange_RenderUnknownSuffix(t *testing.T) {
	s, ok := NewSuffixByteRange(500).Render()

	assert.False(t, ok)
	assert.Empty(t, s)
}
