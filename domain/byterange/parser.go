package byterange

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	openEndedPattern = regexp.MustCompile(`^\d+-?$`)
	boundedPattern   = regexp.MustCompile(`^\d+-\d+$`)
	suffixPattern    = regexp.MustCompile(`^-\d+$`)
)

// HeaderParser turns a raw Range header value into validated ByteRanges.
type HeaderParser struct {
	validator Validator
}

// NewHeaderParser creates a HeaderParser that checks ranges with validator.
func NewHeaderParser(validator Validator) HeaderParser {
	return HeaderParser{validator: validator}
}

// ParseHeader parses header with the DefaultValidator.
func ParseHeader(header string) ([]ByteRange, error) {
	return NewHeaderParser(DefaultValidator).Parse(header)
}

// Parse returns the ranges of a header such as "bytes=500-1000, -200/1024",
// in textual order.
//
// Parsing is all or nothing: the first malformed spec aborts with a
// *MalformedRangeError and the first invariant violation aborts with a
// *ValidationError. A length suffix after the last '/' applies to every
// range; "/*" leaves the length unknown.
func (p HeaderParser) Parse(header string) ([]ByteRange, error) {
	rangeSet := header[strings.LastIndex(header, "=")+1:]

	totalLength, err := parseTotalLength(rangeSet)
	if err != nil {
		return nil, err
	}

	specs := strings.Split(rangeSet, ",")
	ranges := make([]ByteRange, 0, len(specs))

	for _, spec := range specs {
		if i := strings.Index(spec, "/"); i >= 0 {
			spec = spec[:i]
		}
		spec = strings.TrimSpace(spec)

		r, err := parseSpec(spec)
		if err != nil {
			return nil, err
		}
		r = r.WithTotalLength(totalLength)

		if violations := p.validator.Validate(r); len(violations) > 0 {
			return nil, &ValidationError{Range: r, Violation: violations[0]}
		}

		ranges = append(ranges, r)
	}

	return ranges, nil
}

func parseTotalLength(rangeSet string) (int64, error) {
	if !strings.Contains(rangeSet, "/") || strings.HasSuffix(rangeSet, "/*") {
		return 0, nil
	}

	text := strings.TrimSpace(rangeSet[strings.LastIndex(rangeSet, "/")+1:])
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &MalformedRangeError{Spec: rangeSet, cause: err}
	}
	return n, nil
}

func parseSpec(spec string) (ByteRange, error) {
	switch {
	case openEndedPattern.MatchString(spec):
		start, err := parseInt(spec, strings.TrimSuffix(spec, "-"))
		if err != nil {
			return ByteRange{}, err
		}
		return NewByteRange(start), nil
	case boundedPattern.MatchString(spec):
		parts := strings.SplitN(spec, "-", 2)
		start, err := parseInt(spec, parts[0])
		if err != nil {
			return ByteRange{}, err
		}
		end, err := parseInt(spec, parts[1])
		if err != nil {
			return ByteRange{}, err
		}
		return NewBoundedByteRange(start, end), nil
	case suffixPattern.MatchString(spec):
		limit, err := parseInt(spec, spec)
		if err != nil {
			return ByteRange{}, err
		}
		return NewBoundedByteRange(0, limit), nil
	default:
		return ByteRange{}, &MalformedRangeError{Spec: spec}
	}
}

func parseInt(spec, text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &MalformedRangeError{Spec: spec, cause: err}
	}
	return n, nil
}
