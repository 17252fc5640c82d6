package database

import (
	"github.com/helixml/byteserve/domain/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyOptions applies the conditions, ordering and paging of options to a
// GORM session.
func ApplyOptions(db *gorm.DB, options ...query.Option) *gorm.DB {
	q := query.Build(options...)
	db = where(db, q.Conditions())

	for _, ord := range q.Orders() {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: ord.Field()},
			Desc:   !ord.Ascending(),
		})
	}
	if n := q.LimitValue(); n > 0 {
		db = db.Limit(n)
	}
	if n := q.OffsetValue(); n > 0 {
		db = db.Offset(n)
	}
	return db
}

// ApplyConditions applies only the WHERE part of options, for COUNT queries.
func ApplyConditions(db *gorm.DB, options ...query.Option) *gorm.DB {
	return where(db, query.Build(options...).Conditions())
}

func where(db *gorm.DB, conds []query.Condition) *gorm.DB {
	for _, c := range conds {
		col := clause.Column{Name: c.Field()}
		var expr clause.Expression
		switch c.Operator() {
		case query.In:
			expr = clause.Expr{SQL: "? IN ?", Vars: []any{col, c.Value()}}
		case query.AtLeast:
			expr = clause.Gte{Column: col, Value: c.Value()}
		case query.Below:
			expr = clause.Lt{Column: col, Value: c.Value()}
		default:
			expr = clause.Eq{Column: col, Value: c.Value()}
		}
		db = db.Where(expr)
	}
	return db
}
