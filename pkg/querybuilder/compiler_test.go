package querybuilder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/specquery/internal/testutil"
	"github.com/biyonik/specquery/pkg/cache"
	"github.com/biyonik/specquery/pkg/database"
	"github.com/biyonik/specquery/pkg/specification"
)

const productFields = `
table: products
fields:
  - name: id
    column: products.id
  - name: name
    column: products.name
  - name: price
    column: products.price
  - name: type-name
    column: types.name
    join: type
joins:
  - name: type
    table: types
    first: products.type_id
    second: types.id
`

func newCompiler(t *testing.T, c cache.Cache, executor database.QueryExecutor) *Compiler {
	t.Helper()

	schema, err := database.LoadSchema([]byte(productFields))
	require.NoError(t, err)

	prototype := schema.NewQuery(executor, database.NewSQLiteGrammar()).Select("products.id", "products.name")
	return NewCompiler(New(NewFieldConditionBuilder()), prototype, c, "products:sqlite", time.Minute, nil)
}

func bookSpec(t *testing.T) specification.Specification {
	t.Helper()

	spec, err := specification.ParseYAML([]byte(`
where:
  type:
    name: book
  id_ni: [2]
order_by:
  products.name: desc
limit: 10
`))
	require.NoError(t, err)
	return spec
}

func TestCompiler_Compile(t *testing.T) {
	compiler := newCompiler(t, nil, nil)

	stmt, err := compiler.Compile(context.Background(), bookSpec(t))
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "products"."id", "products"."name" FROM "products" LEFT JOIN "types" ON "products"."type_id" = "types"."id" WHERE "types"."name" = ? AND "products"."id" NOT IN (?) ORDER BY "products"."name" DESC LIMIT 10`,
		stmt.SQL)
	assert.Equal(t, []interface{}{"book", int64(2)}, stmt.Args)
}

func TestCompiler_CacheHit(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(nil)
	compiler := newCompiler(t, mem, nil)

	first, err := compiler.Compile(ctx, bookSpec(t))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())

	second, err := compiler.Compile(ctx, bookSpec(t))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mem.Len())

	other := bookSpec(t)
	other.Limit = 5
	third, err := compiler.Compile(ctx, other)
	require.NoError(t, err)
	assert.Contains(t, third.SQL, "LIMIT 5")
	assert.Equal(t, 2, mem.Len())
}

func TestCompiler_CacheErrorsDoNotFailCompile(t *testing.T) {
	ctx := context.Background()
	mock := testutil.NewMockCache()
	mock.GetErr = errors.New("connection refused")
	compiler := newCompiler(t, mock, nil)

	stmt, err := compiler.Compile(ctx, bookSpec(t))
	require.NoError(t, err)
	assert.NotEmpty(t, stmt.SQL)
	assert.Equal(t, 1, mock.Gets)
	assert.Equal(t, 1, mock.Sets)
	for _, ttl := range mock.TTLs {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCompiler_ServesCachedStatement(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(nil)
	compiler := newCompiler(t, mem, nil)

	spec := bookSpec(t)
	fp, err := spec.Fingerprint()
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, "products:sqlite:"+fp, []byte(`{"sql":"SELECT 1","args":[1.5,3,"x",null]}`), 0))

	stmt, err := compiler.Compile(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, Statement{SQL: "SELECT 1", Args: []interface{}{1.5, int64(3), "x", nil}}, stmt)
}

func TestCompiler_BuildErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(nil)
	compiler := newCompiler(t, mem, nil)

	spec := specification.Specification{OrderBy: specification.OrderBy{{Field: "name; DROP TABLE x", Direction: "asc"}}}
	_, err := compiler.Compile(ctx, spec)
	require.Error(t, err)
	assert.Zero(t, mem.Len())
}

func TestCompiler_BuildRunsAgainstSQLite(t *testing.T) {
	ctx := context.Background()

	db := testutil.RefreshDatabase(t, testutil.ProductCatalog...)

	type product struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}

	spec := bookSpec(t)
	spec.Where.Set("id_ni", []any{4})
	q, err := newCompiler(t, nil, db).Build(spec)
	require.NoError(t, err)

	var got []product
	require.NoError(t, q.GetContext(ctx, &got))
	assert.Equal(t, []product{{ID: 3, Name: "Neuromancer"}, {ID: 1, Name: "Dune"}}, got)

	empty := specification.Specification{Where: specification.NewTree(specification.Entry{Key: "id", Value: []any{}})}
	q, err = newCompiler(t, nil, db).Build(empty)
	require.NoError(t, err)

	got = nil
	require.NoError(t, q.GetContext(ctx, &got))
	assert.Empty(t, got)
}

func TestCompiler_OperatorSuffixesAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	db := testutil.RefreshDatabase(t, testutil.ProductCatalog...)

	tests := []struct {
		name  string
		where string
		ids   []int64
	}{
		{"greater or equal", "price_ge: 12", []int64{1, 2}},
		{"less than", "price_lt: 12", []int64{3}},
		{"not equal", "name_ne: Dune", []int64{2, 3, 4}},
		{"like", "name_like: \"%er%\"", []int64{3, 4}},
		{"is null", "price_null: true", []int64{4}},
		{"is not null", "price_null: false", []int64{1, 2, 3}},
		{"not in", "id_ni: [1, 2]", []int64{3, 4}},
		{"not in empty list matches all", "id_ni: []", []int64{1, 2, 3, 4}},
		{"nested join with range", "type: {name: book}\nprice_gt: 10", []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := specification.ParseYAML([]byte("where:\n  " + strings.ReplaceAll(tt.where, "\n", "\n  ") + "\norder_by:\n  products.id: asc\n"))
			require.NoError(t, err)

			q, err := newCompiler(t, nil, db).Build(spec)
			require.NoError(t, err)

			rows, err := q.MapsContext(ctx)
			require.NoError(t, err)

			ids := make([]int64, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r["id"].(int64))
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestCompiler_PrototypeIsNotMutated(t *testing.T) {
	schema, err := database.LoadSchema([]byte(productFields))
	require.NoError(t, err)
	prototype := schema.NewQuery(nil, database.NewSQLiteGrammar())
	compiler := NewCompiler(New(NewFieldConditionBuilder()), prototype, nil, "products:sqlite", 0, nil)

	_, err = compiler.Compile(context.Background(), bookSpec(t))
	require.NoError(t, err)

	assert.Empty(t, prototype.Wheres())
	assert.Empty(t, prototype.Joins())
	assert.Empty(t, prototype.Orders())
	limit, offset := prototype.Paging()
	assert.Zero(t, limit)
	assert.Zero(t, offset)
}

func TestNamespaceFor(t *testing.T) {
	base := NamespaceFor("products", "sqlite", "abc", "-")

	assert.Regexp(t, `^products:sqlite:[0-9a-f]{16}$`, base)
	assert.Equal(t, base, NamespaceFor("products", "sqlite", "abc", "-"))
	assert.NotEqual(t, base, NamespaceFor("products", "sqlite", "abd", "-"), "schema change")
	assert.NotEqual(t, base, NamespaceFor("products", "sqlite", "abc", "."), "separator change")
	assert.NotEqual(t, base, NamespaceFor("products", "mysql", "abc", "-"), "dialect change")
}
