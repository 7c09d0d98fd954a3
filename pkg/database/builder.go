package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/biyonik/specquery/pkg/specification"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER
// -----------------------------------------------------------------------------
// QueryBuilder; tablo, kolonlar, alanlar, where'lar, join'ler, order, limit ve
// offset bilgisini biriktirir. İki tür kullanıcısı vardır:
//
//   - Geliştirici: fluent API (Table, Where, WhereIn, OrderBy, Limit, ...).
//     Identifier'lar anında doğrulanır, geçersizse panic atılır.
//   - querybuilder.Builder: specification uygularken AndWhere, RegisterJoin,
//     ApplyOrder, ApplyLimit, ApplyOffset. Bu yol panic atmaz; kullanıcıdan
//     gelen isimler Grammar tarafından derleme anında error ile reddedilir.
//
// SQL üretimi tamamen Grammar'a aittir.
// -----------------------------------------------------------------------------

// ErrUnknownJoin, RegisterJoin ile istenen ama DefineJoin ile tanımlanmamış
// bir join derlenmeye çalışıldığında döner.
var ErrUnknownJoin = errors.New("database: unknown join")

// validIdentifierRegex, güvenli SQL identifier pattern'idir.
// Sadece alphanumeric, underscore ve nokta (table.column için) kabul eder.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_\.]+$`)

type QueryBuilder struct {
	executor QueryExecutor
	grammar  Grammar
	table    string
	columns  []string
	fields   []Field
	joinDefs map[string]JoinClause
	joins    []string
	joined   map[string]struct{}
	wheres   []WhereClause
	orders   []OrderClause
	limit    int
	offset   int
}

// NewBuilder, executor ve grammar ile yeni bir QueryBuilder üretir.
// executor nil olabilir; bu durumda sadece ToSQL kullanılabilir.
func NewBuilder(executor QueryExecutor, grammar Grammar) *QueryBuilder {
	return &QueryBuilder{
		executor: executor,
		grammar:  grammar,
		columns:  []string{"*"},
		joinDefs: make(map[string]JoinClause),
		joined:   make(map[string]struct{}),
	}
}

func isSafeIdentifier(identifier string) bool {
	if identifier == "*" {
		return true
	}
	if strings.TrimSpace(identifier) == "" || !validIdentifierRegex.MatchString(identifier) {
		return false
	}
	parts := strings.Split(identifier, ".")
	if len(parts) > 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

// validateIdentifier, geliştirici API'si için identifier doğrular.
//
// Panic:
// Geçersiz identifier bulunursa panic atar. Kullanıcı girdisi bu yoldan
// geçmemelidir.
//
//   - ✅ "users", "user_id", "users.id"
//   - ❌ "id; DROP TABLE users--", "a.b.c"
func validateIdentifier(identifier string, context string) {
	if !isSafeIdentifier(identifier) {
		panic(fmt.Sprintf("Invalid %s name: '%s' (contains unsafe characters)", context, identifier))
	}
}

// Table, sorgunun ana tablosunu belirler.
func (qb *QueryBuilder) Table(tableName string) *QueryBuilder {
	validateIdentifier(tableName, "table")
	qb.table = tableName
	return qb
}

// Select, döndürülecek kolonları belirler.
//
//	qb.Select("products.id", "products.name")
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	for _, col := range columns {
		validateIdentifier(col, "column")
	}
	qb.columns = columns
	return qb
}

// Where, AND ile bağlanan bir koşul ekler.
//
//	qb.Where("status", "=", "active")
//	qb.Where("age", ">", 18)
//
// Operator whitelist kontrolü Grammar katmanında yapılır.
func (qb *QueryBuilder) Where(column string, operator string, value interface{}) *QueryBuilder {
	validateIdentifier(column, "column")
	qb.wheres = append(qb.wheres, WhereClause{Column: column, Operator: operator, Value: value, Boolean: "AND"})
	return qb
}

// OrWhere, OR ile bağlanan bir koşul ekler.
//
//	qb.Where("role", "=", "admin").OrWhere("role", "=", "moderator")
//	→ WHERE `role` = ? OR `role` = ?
func (qb *QueryBuilder) OrWhere(column string, operator string, value interface{}) *QueryBuilder {
	validateIdentifier(column, "column")
	qb.wheres = append(qb.wheres, WhereClause{Column: column, Operator: operator, Value: value, Boolean: "OR"})
	return qb
}

// WhereIn, kolon değerinin listede olmasını şart koşar.
// Boş liste her zaman false'tur.
func (qb *QueryBuilder) WhereIn(column string, values []interface{}) *QueryBuilder {
	return qb.Where(column, "IN", values)
}

// WhereNotIn, kolon değerinin listede olmamasını şart koşar.
func (qb *QueryBuilder) WhereNotIn(column string, values []interface{}) *QueryBuilder {
	return qb.Where(column, "NOT IN", values)
}

// WhereBetween, kolon değerinin iki değer arasında olmasını şart koşar.
func (qb *QueryBuilder) WhereBetween(column string, min, max interface{}) *QueryBuilder {
	return qb.Where(column, "BETWEEN", []interface{}{min, max})
}

// WhereNull, kolonun NULL olmasını şart koşar.
func (qb *QueryBuilder) WhereNull(column string) *QueryBuilder {
	return qb.Where(column, "IS", nil)
}

// WhereNotNull, kolonun NULL olmamasını şart koşar.
func (qb *QueryBuilder) WhereNotNull(column string) *QueryBuilder {
	return qb.Where(column, "IS NOT", nil)
}

// OrderBy, sıralama ekler. Geçersiz direction değerleri ASC'ye döner.
func (qb *QueryBuilder) OrderBy(column string, direction string) *QueryBuilder {
	validateIdentifier(column, "column")
	qb.orders = append(qb.orders, OrderClause{Column: column, Direction: ParseOrderDirection(direction)})
	return qb
}

// Limit, döndürülecek maksimum satır sayısını belirler. 0 limitsiz demektir.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.limit = limit
	return qb
}

// Offset, atlanacak satır sayısını belirler.
//
//	qb.Limit(10).Offset(20) → LIMIT 10 OFFSET 20
func (qb *QueryBuilder) Offset(offset int) *QueryBuilder {
	qb.offset = offset
	return qb
}

// -----------------------------------------------------------------------------
// SPECIFICATION HEDEFİ
// -----------------------------------------------------------------------------

// WithFields, sorgunun alan kaydını belirler. Sıra korunur.
func (qb *QueryBuilder) WithFields(fields ...Field) *QueryBuilder {
	qb.fields = append([]Field(nil), fields...)
	return qb
}

// Fields, alan kaydını tanımlandığı sırayla döner.
func (qb *QueryBuilder) Fields() []Field {
	return qb.fields
}

// DefineJoin, isimli bir join tanımı ekler. Tanım, RegisterJoin ile
// istenmedikçe SQL'e girmez.
func (qb *QueryBuilder) DefineJoin(name string, join JoinClause) *QueryBuilder {
	qb.joinDefs[name] = join
	return qb
}

// RegisterJoin, join'i gerekli olarak işaretler. Aynı isimle tekrar
// çağrılması etkisizdir.
func (qb *QueryBuilder) RegisterJoin(name string) {
	if _, ok := qb.joined[name]; ok {
		return
	}
	qb.joined[name] = struct{}{}
	qb.joins = append(qb.joins, name)
}

// Joins, gerekli join isimlerini kayıt sırasıyla döner.
func (qb *QueryBuilder) Joins() []string {
	return append([]string(nil), qb.joins...)
}

// AndWhere, hazır bir koşulu AND ile ekler.
func (qb *QueryBuilder) AndWhere(cond WhereClause) {
	cond.Boolean = "AND"
	qb.wheres = append(qb.wheres, cond)
}

// Wheres, biriken koşulları döner.
func (qb *QueryBuilder) Wheres() []WhereClause {
	return append([]WhereClause(nil), qb.wheres...)
}

// ApplyOrder, specification sıralamasını olduğu gibi ekler.
// Alan adları burada doğrulanmaz; geçersiz isimler ToSQL'de error olur.
func (qb *QueryBuilder) ApplyOrder(order specification.OrderBy) {
	for _, s := range order {
		qb.orders = append(qb.orders, OrderClause{Column: s.Field, Direction: ParseOrderDirection(s.Direction)})
	}
}

// Orders, biriken sıralamaları döner.
func (qb *QueryBuilder) Orders() []OrderClause {
	return append([]OrderClause(nil), qb.orders...)
}

// ApplyLimit, Limit'in değer döndürmeyen halidir.
func (qb *QueryBuilder) ApplyLimit(n int) { qb.limit = n }

// ApplyOffset, Offset'in değer döndürmeyen halidir.
func (qb *QueryBuilder) ApplyOffset(n int) { qb.offset = n }

// Paging, mevcut limit ve offset değerlerini döner.
func (qb *QueryBuilder) Paging() (limit, offset int) {
	return qb.limit, qb.offset
}

// Clone, biriken state'in bağımsız bir kopyasını üretir. Executor ve
// grammar paylaşılır.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	c := *qb
	c.columns = append([]string(nil), qb.columns...)
	c.fields = append([]Field(nil), qb.fields...)
	c.joins = append([]string(nil), qb.joins...)
	c.wheres = append([]WhereClause(nil), qb.wheres...)
	c.orders = append([]OrderClause(nil), qb.orders...)
	c.joinDefs = make(map[string]JoinClause, len(qb.joinDefs))
	for k, v := range qb.joinDefs {
		c.joinDefs[k] = v
	}
	c.joined = make(map[string]struct{}, len(qb.joined))
	for k := range qb.joined {
		c.joined[k] = struct{}{}
	}
	return &c
}

func (qb *QueryBuilder) resolvedJoins() ([]JoinClause, error) {
	out := make([]JoinClause, 0, len(qb.joins))
	for _, name := range qb.joins {
		j, ok := qb.joinDefs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownJoin, name)
		}
		out = append(out, j)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// DERLEME VE ÇALIŞTIRMA
// -----------------------------------------------------------------------------

// ToSQL, state'i SQL ve parametrelere derler.
//
//	sql, args, err := qb.ToSQL()
//	// SELECT * FROM `products` LEFT JOIN `types` ON ... WHERE `types`.`name` = ? LIMIT 10
func (qb *QueryBuilder) ToSQL() (string, []interface{}, error) {
	return qb.grammar.CompileSelect(qb)
}

// GetContext, sorguyu çalıştırır ve sonuçları struct slice'ına tarar.
//
//	var products []Product
//	err := qb.GetContext(ctx, &products)
func (qb *QueryBuilder) GetContext(ctx context.Context, dest any) error {
	rows, err := qb.query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	return ScanSlice(rows, dest)
}

// FirstContext, LIMIT 1 ile çalıştırır ve ilk satırı struct'a tarar.
// Satır yoksa sql.ErrNoRows döner.
func (qb *QueryBuilder) FirstContext(ctx context.Context, dest any) error {
	qb.limit = 1

	rows, err := qb.query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return ScanStruct(rows, dest)
}

// MapsContext, sonuçları kolon adı → değer map'leri olarak döner.
func (qb *QueryBuilder) MapsContext(ctx context.Context) ([]map[string]interface{}, error) {
	rows, err := qb.query(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return ScanMaps(rows)
}

// Get, GetContext'in context.Background ile çağrılmış halidir.
func (qb *QueryBuilder) Get(dest any) error {
	return qb.GetContext(context.Background(), dest)
}

// First, FirstContext'in context.Background ile çağrılmış halidir.
func (qb *QueryBuilder) First(dest any) error {
	return qb.FirstContext(context.Background(), dest)
}

func (qb *QueryBuilder) query(ctx context.Context) (*sql.Rows, error) {
	if qb.executor == nil {
		return nil, errors.New("database: query builder has no executor")
	}
	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("query compilation failed: %w", err)
	}
	return qb.executor.QueryContext(ctx, sqlStr, args...)
}
