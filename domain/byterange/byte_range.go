// Package byterange provides the domain types for HTTP byte range requests:
// the ByteRange value object, its validator and the Range header parser.
package byterange

import "strconv"

// Prefix is the range unit prefix used when rendering ranges.
const Prefix = "bytes="

// ByteRange is one requested sub-range of a resource plus the resource's
// total length. Immutable value object.
//
// The limit has three meanings: absent means "to the end of the resource",
// negative means "the last |limit| bytes" (a suffix request, offset is then a
// zero placeholder) and non-negative is the inclusive end position.
// A total length of zero means unknown.
type ByteRange struct {
	offset      int64
	limit       int64
	hasLimit    bool
	totalLength int64
}

// NewByteRange creates an open-ended range starting at offset.
func NewByteRange(offset int64) ByteRange {
	return ByteRange{offset: offset}
}

// NewBoundedByteRange creates a range with an explicit limit.
func NewBoundedByteRange(offset, limit int64) ByteRange {
	return ByteRange{
		offset:   offset,
		limit:    limit,
		hasLimit: true,
	}
}

// NewSuffixByteRange creates a request for the last n bytes.
func NewSuffixByteRange(n int64) ByteRange {
	return NewBoundedByteRange(0, -n)
}

// Offset returns the start position.
func (r ByteRange) Offset() int64 { return r.offset }

// Limit returns the limit and whether one is set.
func (r ByteRange) Limit() (int64, bool) { return r.limit, r.hasLimit }

// TotalLength returns the resource length, zero when unknown.
func (r ByteRange) TotalLength() int64 { return r.totalLength }

// IsOpenEnded reports whether the range runs to the end of the resource.
func (r ByteRange) IsOpenEnded() bool { return !r.hasLimit }

// IsSuffix reports whether the range asks for the last bytes of the resource.
func (r ByteRange) IsSuffix() bool {
	return r.offset == 0 && r.hasLimit && r.limit < 0
}

// WithTotalLength returns a copy of the range with the total length set.
func (r ByteRange) WithTotalLength(n int64) ByteRange {
	r.totalLength = n
	return r
}

// Render returns the canonical textual form of the range. The second result
// is false when the range cannot be rendered, which is the case for a suffix
// request whose total length is still unknown.
func (r ByteRange) Render() (string, bool) {
	switch {
	case r.IsSuffix():
		if r.totalLength == 0 {
			return "", false
		}
		return Prefix + itoa(r.totalLength+r.limit-1) + "-" + itoa(r.totalLength-1) + "/" + itoa(r.totalLength), true
	case r.offset > 0 && !r.hasLimit:
		if r.totalLength > 0 {
			return Prefix + "-" + itoa(r.totalLength), true
		}
		return Prefix + itoa(r.offset) + "-", true
	default:
		s := Prefix + itoa(r.offset)
		if r.hasLimit && r.limit > 0 {
			s += "-" + itoa(r.limit)
		}
		if r.totalLength > 0 {
			s += "/" + itoa(r.totalLength)
		}
		return s, true
	}
}

// String implements fmt.Stringer. Unrenderable suffix ranges fall back to
// their request form, e.g. "bytes=-500".
func (r ByteRange) String() string {
	if s, ok := r.Render(); ok {
		return s
	}
	return Prefix + "-" + itoa(-r.limit)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
