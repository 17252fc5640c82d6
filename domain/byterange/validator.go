package byterange

// Violation messages. They are part of the error text returned to callers
// and must stay stable.
const (
	MessageOffset      = "Range offset must be greater than or equal to zero"
	MessageTotalLength = "Range length must be greater than or equal to zero"
	MessageLimit       = "Range limit must be greater than or equal to offset"
)

// Violation describes one broken ByteRange invariant.
type Violation struct {
	field   string
	message string
}

// Field returns the name of the offending field.
func (v Violation) Field() string { return v.field }

// Message returns the stable violation message.
func (v Violation) Message() string { return v.message }

// Validator checks the cross-field invariants of a ByteRange.
// The zero value is ready to use and safe for concurrent use.
type Validator struct{}

// DefaultValidator is the validator shared by parsers built with ParseHeader.
var DefaultValidator = NewValidator()

// NewValidator creates a Validator.
func NewValidator() Validator {
	return Validator{}
}

// Validate returns every violated invariant in field order, or nil.
//
// A non-positive limit encodes a suffix request and must not coexist with a
// non-zero offset; a positive limit must not precede the offset.
func (Validator) Validate(r ByteRange) []Violation {
	var violations []Violation

	if r.offset < 0 {
		violations = append(violations, Violation{field: "offset", message: MessageOffset})
	}
	if r.totalLength < 0 {
		violations = append(violations, Violation{field: "total_length", message: MessageTotalLength})
	}
	if !validLimit(r) {
		violations = append(violations, Violation{field: "limit", message: MessageLimit})
	}

	return violations
}

// Valid reports whether the range satisfies every invariant.
func (v Validator) Valid(r ByteRange) bool {
	return len(v.Validate(r)) == 0
}

func validLimit(r ByteRange) bool {
	if !r.hasLimit {
		return true
	}
	if r.limit <= 0 {
		return r.offset == 0
	}
	return r.limit >= r.offset
}
