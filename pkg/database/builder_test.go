package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/specquery/pkg/specification"
)

func newProductQuery() *QueryBuilder {
	return NewBuilder(nil, NewMySQLGrammar()).
		Table("products").
		WithFields(
			NewColumn("id", ""),
			NewJoinedColumn("type-name", "types.name", "type"),
		).
		DefineJoin("type", JoinClause{
			Type:     LeftJoin,
			Table:    "types",
			First:    "products.type_id",
			Operator: "=",
			Second:   "types.id",
		})
}

func TestRegisterJoin_Idempotent(t *testing.T) {
	qb := newProductQuery()
	qb.RegisterJoin("type")
	qb.RegisterJoin("type")
	qb.RegisterJoin("type")

	assert.Equal(t, []string{"type"}, qb.Joins())

	sql, _, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `products` LEFT JOIN `types` ON `products`.`type_id` = `types`.`id`", sql)
}

func TestRegisterJoin_UndefinedFailsAtCompile(t *testing.T) {
	qb := newProductQuery()
	qb.RegisterJoin("seller")

	_, _, err := qb.ToSQL()
	require.ErrorIs(t, err, ErrUnknownJoin)
}

func TestDefinedJoinNotEmittedUntilRegistered(t *testing.T) {
	sql, _, err := newProductQuery().ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `products`", sql)
}

func TestCrossJoin(t *testing.T) {
	qb := NewBuilder(nil, NewPostgresGrammar()).Table("a").DefineJoin("b", JoinClause{Type: CrossJoin, Table: "b"})
	qb.RegisterJoin("b")

	sql, _, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "a" CROSS JOIN "b"`, sql)
}

func TestAndWhere_ForcesAnd(t *testing.T) {
	qb := newProductQuery()
	qb.AndWhere(WhereClause{Column: "id", Operator: "=", Value: 1})
	qb.AndWhere(WhereClause{Column: "types.name", Operator: "=", Value: "x", Boolean: "OR"})

	sql, args, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `products` WHERE `id` = ? AND `types`.`name` = ?", sql)
	assert.Equal(t, []interface{}{1, "x"}, args)
}

func TestApplyOrderAndPaging(t *testing.T) {
	qb := newProductQuery()
	qb.ApplyOrder(specification.OrderBy{{Field: "name", Direction: "asc"}, {Field: "id", Direction: "desc"}})
	qb.ApplyLimit(10)
	qb.ApplyOffset(30)

	assert.Equal(t, []OrderClause{{Column: "name", Direction: OrderAsc}, {Column: "id", Direction: OrderDesc}}, qb.Orders())
	limit, offset := qb.Paging()
	assert.Equal(t, 10, limit)
	assert.Equal(t, 30, offset)

	sql, _, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `products` ORDER BY `name` ASC, `id` DESC LIMIT 10 OFFSET 30", sql)
}

func TestClone_IsIndependent(t *testing.T) {
	orig := newProductQuery()
	orig.AndWhere(WhereClause{Column: "id", Operator: "=", Value: 1})

	c := orig.Clone()
	c.AndWhere(WhereClause{Column: "id", Operator: "=", Value: 2})
	c.RegisterJoin("type")
	c.DefineJoin("other", JoinClause{Type: CrossJoin, Table: "other"})

	assert.Len(t, orig.Wheres(), 1)
	assert.Empty(t, orig.Joins())
	assert.Len(t, c.Wheres(), 2)
	assert.Equal(t, []string{"type"}, c.Joins())
	assert.NotContains(t, orig.joinDefs, "other")
}

func TestFields_PreserveOrder(t *testing.T) {
	fields := newProductQuery().Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "id", fields[0].Name())
	assert.Equal(t, "type-name", fields[1].Name())

	joined, ok := fields[1].(JoinedField)
	require.True(t, ok)
	assert.Equal(t, "type", joined.JoinName())
	assert.Equal(t, "types.name", ColumnOf(fields[1]))
	assert.Equal(t, "id", ColumnOf(fields[0]))
}

func TestParseOrderDirection(t *testing.T) {
	assert.Equal(t, OrderDesc, ParseOrderDirection(" desc "))
	assert.Equal(t, OrderAsc, ParseOrderDirection("ASC"))
	assert.Equal(t, OrderAsc, ParseOrderDirection("sideways"))
}
