// Package query provides store-agnostic query options shared by domain stores.
package query

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering, and pagination for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// LimitValue returns the limit (0 means no limit).
func (q Query) LimitValue() int {
	return q.limit
}

// OffsetValue returns the offset.
func (q Query) OffsetValue() int {
	return q.offset
}

// Operator is the comparison a Condition applies.
type Operator int

// Supported operators.
const (
	Equal Operator = iota
	In
	AtLeast
	Below
)

// Symbol returns the SQL form of the operator.
func (o Operator) Symbol() string {
	switch o {
	case In:
		return "IN"
	case AtLeast:
		return ">="
	case Below:
		return "<"
	default:
		return "="
	}
}

// Condition compares a field against a value.
type Condition struct {
	field string
	op    Operator
	value any
}

// Field returns the condition field name.
func (c Condition) Field() string { return c.field }

// Operator returns the comparison.
func (c Condition) Operator() Operator { return c.op }

// Value returns the condition value. For In it is a slice.
func (c Condition) Value() any { return c.value }

// String returns a readable representation.
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.field, c.op.Symbol(), c.value)
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return WithComparison(field, Equal, value)
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return WithComparison(field, In, values)
}

// WithComparison adds a condition comparing field against value with op.
func WithComparison(field string, op Operator, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, op: op, value: value})
		return q
	}
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}

// WithPagination returns limit and offset options for a one-based page.
// Pages below one are treated as the first page.
func WithPagination(page, pageSize int) []Option {
	if page < 1 {
		page = 1
	}
	return []Option{WithLimit(pageSize), WithOffset((page - 1) * pageSize)}
}
