package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereMethods_MySQL(t *testing.T) {
	tests := []struct {
		name    string
		build   func(qb *QueryBuilder)
		sql     string
		argsLen int
	}{
		{
			name:    "where in",
			build:   func(qb *QueryBuilder) { qb.WhereIn("status", []interface{}{"active", "pending", "approved"}) },
			sql:     "SELECT * FROM `users` WHERE `status` IN (?, ?, ?)",
			argsLen: 3,
		},
		{
			name:    "where not in",
			build:   func(qb *QueryBuilder) { qb.WhereNotIn("role", []interface{}{"banned", "suspended"}) },
			sql:     "SELECT * FROM `users` WHERE `role` NOT IN (?, ?)",
			argsLen: 2,
		},
		{
			name:    "where between",
			build:   func(qb *QueryBuilder) { qb.WhereBetween("age", 18, 65) },
			sql:     "SELECT * FROM `users` WHERE `age` BETWEEN ? AND ?",
			argsLen: 2,
		},
		{
			name:  "where null",
			build: func(qb *QueryBuilder) { qb.WhereNull("deleted_at") },
			sql:   "SELECT * FROM `users` WHERE `deleted_at` IS NULL",
		},
		{
			name:  "where not null",
			build: func(qb *QueryBuilder) { qb.WhereNotNull("email_verified_at") },
			sql:   "SELECT * FROM `users` WHERE `email_verified_at` IS NOT NULL",
		},
		{
			name:  "empty in is always false",
			build: func(qb *QueryBuilder) { qb.WhereIn("status", []interface{}{}) },
			sql:   "SELECT * FROM `users` WHERE 1 = 0",
		},
		{
			name:  "empty not in is always true",
			build: func(qb *QueryBuilder) { qb.WhereNotIn("status", []interface{}{}) },
			sql:   "SELECT * FROM `users` WHERE 1 = 1",
		},
		{
			name: "or where",
			build: func(qb *QueryBuilder) {
				qb.Where("role", "=", "admin").OrWhere("role", "=", "moderator")
			},
			sql:     "SELECT * FROM `users` WHERE `role` = ? OR `role` = ?",
			argsLen: 2,
		},
		{
			name: "combined with order and paging",
			build: func(qb *QueryBuilder) {
				qb.Select("id", "name").
					Where("active", "=", true).
					WhereNotNull("email").
					OrderBy("created_at", "desc").
					OrderBy("name", "asc").
					Limit(10).
					Offset(20)
			},
			sql:     "SELECT `id`, `name` FROM `users` WHERE `active` = ? AND `email` IS NOT NULL ORDER BY `created_at` DESC, `name` ASC LIMIT 10 OFFSET 20",
			argsLen: 1,
		},
		{
			name:  "offset without limit",
			build: func(qb *QueryBuilder) { qb.Offset(5) },
			sql:   "SELECT * FROM `users` LIMIT 18446744073709551615 OFFSET 5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qb := NewBuilder(nil, NewMySQLGrammar()).Table("users")
			tc.build(qb)

			sql, args, err := qb.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tc.sql, sql)
			assert.Len(t, args, tc.argsLen)
		})
	}
}

func TestPostgresGrammar_NumberedPlaceholders(t *testing.T) {
	qb := NewBuilder(nil, NewPostgresGrammar()).
		Table("users").
		Where("name", "=", "john").
		WhereIn("id", []interface{}{1, 2}).
		WhereBetween("age", 18, 65).
		Offset(3)

	sql, args, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "name" = $1 AND "id" IN ($2, $3) AND "age" BETWEEN $4 AND $5 OFFSET 3`, sql)
	assert.Equal(t, []interface{}{"john", 1, 2, 18, 65}, args)
}

func TestSQLiteGrammar_OffsetWithoutLimit(t *testing.T) {
	qb := NewBuilder(nil, NewSQLiteGrammar()).Table("users").Offset(5)

	sql, _, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT -1 OFFSET 5`, sql)
}

func TestGrammar_InRequiresList(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar()).Table("users")
	qb.AndWhere(WhereClause{Column: "id", Operator: "IN", Value: 5})

	_, _, err := qb.ToSQL()
	require.Error(t, err)
}

func TestGrammar_InAcceptsTypedSlices(t *testing.T) {
	qb := NewBuilder(nil, NewMySQLGrammar()).Table("users")
	qb.AndWhere(WhereClause{Column: "id", Operator: "in", Value: []int{1, 2}})

	sql, args, err := qb.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE `id` IN (?, ?)", sql)
	assert.Equal(t, []interface{}{1, 2}, args)
}

func TestGrammar_NoTable(t *testing.T) {
	_, _, err := NewBuilder(nil, NewMySQLGrammar()).ToSQL()
	require.Error(t, err)
}

func TestGrammarFor(t *testing.T) {
	for driver, name := range map[string]string{
		"mysql":    "mysql",
		"MariaDB":  "mysql",
		"postgres": "postgres",
		"pgx":      "postgres",
		"sqlite":   "sqlite",
	} {
		g, err := GrammarFor(driver)
		require.NoError(t, err)
		assert.Equal(t, name, g.Name())
	}

	_, err := GrammarFor("oracle")
	require.Error(t, err)
}

func TestWrap(t *testing.T) {
	mysql, err := NewMySQLGrammar().Wrap("users.id")
	require.NoError(t, err)
	assert.Equal(t, "`users`.`id`", mysql)

	pg, err := NewPostgresGrammar().Wrap("users.id")
	require.NoError(t, err)
	assert.Equal(t, `"users"."id"`, pg)

	_, err = NewSQLiteGrammar().Wrap(`id"; --`)
	require.Error(t, err)
}
