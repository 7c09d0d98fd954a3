package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biyonik/specquery/pkg/specification"
)

// -----------------------------------------------------------------------------
// Grammar
// -----------------------------------------------------------------------------
// SQL lehçesine özgü SELECT üretimi. Lehçeler arasındaki farklar küçüktür:
// identifier tırnağı, placeholder biçimi ve OFFSET'in tek başına
// yazılıp yazılamayacağı. Bu yüzden tüm lehçeler aynı derleyiciyi paylaşır.
//
// - MySQLGrammar: `kolon`, ?
// - PostgresGrammar: "kolon", $1, $2, ...
// - SQLiteGrammar: "kolon", ?
// -----------------------------------------------------------------------------

// Grammar, SQL lehçesine özgü sorgu üretimini tanımlar.
type Grammar interface {
	// Name, lehçe adını döner ("mysql", "postgres", "sqlite").
	Name() string

	// Wrap, identifier'ı lehçenin tırnağıyla sarmalar. "tablo.kolon"
	// biçimi desteklenir. Güvensiz karakterde error döner.
	Wrap(value string) (string, error)

	// Placeholder, n'inci (1'den başlar) parametrenin yer tutucusudur.
	Placeholder(n int) string

	// CompileSelect, QueryBuilder'dan SELECT sorgusu ve parametrelerini üretir.
	CompileSelect(qb *QueryBuilder) (string, []interface{}, error)
}

var allowedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<>":          true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"LIKE":        true,
	"NOT LIKE":    true,
	"IN":          true,
	"NOT IN":      true,
	"BETWEEN":     true,
	"NOT BETWEEN": true,
	"IS":          true,
	"IS NOT":      true,
}

// sqlGrammar, lehçelerin ortak derleyicisidir.
type sqlGrammar struct {
	name     string
	quote    string
	numbered bool
	// offsetOnlyLimit, OFFSET'in LIMIT'siz yazılamadığı lehçelerde
	// "sınırsız" anlamına gelen LIMIT değeridir.
	offsetOnlyLimit string
}

func (g *sqlGrammar) Name() string { return g.name }

func (g *sqlGrammar) Wrap(value string) (string, error) {
	if value == "*" {
		return value, nil
	}
	if !isSafeIdentifier(value) {
		return "", fmt.Errorf("invalid SQL identifier: %q (contains unsafe characters)", value)
	}

	parts := strings.Split(value, ".")
	for i, part := range parts {
		parts[i] = g.quote + part + g.quote
	}
	return strings.Join(parts, "."), nil
}

func (g *sqlGrammar) Placeholder(n int) string {
	if g.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (g *sqlGrammar) CompileSelect(qb *QueryBuilder) (string, []interface{}, error) {
	return compileSelect(g, g.offsetOnlyLimit, qb)
}

// bindings, parametreleri toplar ve lehçeye uygun yer tutucuyu üretir.
type bindings struct {
	grammar Grammar
	args    []interface{}
}

func (b *bindings) add(v interface{}) string {
	b.args = append(b.args, v)
	return b.grammar.Placeholder(len(b.args))
}

func compileSelect(g Grammar, offsetOnlyLimit string, qb *QueryBuilder) (string, []interface{}, error) {
	if qb.table == "" {
		return "", nil, fmt.Errorf("select compilation failed: no table set")
	}

	columns := make([]string, len(qb.columns))
	for i, col := range qb.columns {
		wrapped, err := g.Wrap(col)
		if err != nil {
			return "", nil, fmt.Errorf("column wrap error: %w", err)
		}
		columns[i] = wrapped
	}

	table, err := g.Wrap(qb.table)
	if err != nil {
		return "", nil, fmt.Errorf("table wrap error: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(columns, ", "), table)

	joins, err := qb.resolvedJoins()
	if err != nil {
		return "", nil, err
	}
	for _, j := range joins {
		clause, err := compileJoin(g, j)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ")
		sb.WriteString(clause)
	}

	b := &bindings{grammar: g}
	if len(qb.wheres) > 0 {
		sb.WriteString(" WHERE ")
		for i, w := range qb.wheres {
			if i > 0 {
				boolean := "AND"
				if strings.EqualFold(w.Boolean, "OR") {
					boolean = "OR"
				}
				sb.WriteString(" " + boolean + " ")
			}
			expr, err := compileWhere(g, w, b)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(expr)
		}
	}

	if len(qb.orders) > 0 {
		orders := make([]string, len(qb.orders))
		for i, o := range qb.orders {
			col, err := g.Wrap(o.Column)
			if err != nil {
				return "", nil, fmt.Errorf("order column wrap error: %w", err)
			}
			orders[i] = col + " " + string(ParseOrderDirection(string(o.Direction)))
		}
		sb.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}

	switch {
	case qb.limit > 0:
		fmt.Fprintf(&sb, " LIMIT %d", qb.limit)
	case qb.offset > 0 && offsetOnlyLimit != "":
		sb.WriteString(" LIMIT " + offsetOnlyLimit)
	}
	if qb.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", qb.offset)
	}

	return sb.String(), b.args, nil
}

func compileJoin(g Grammar, j JoinClause) (string, error) {
	table, err := g.Wrap(j.Table)
	if err != nil {
		return "", fmt.Errorf("join table wrap error: %w", err)
	}
	if j.Type == CrossJoin {
		return "CROSS JOIN " + table, nil
	}

	op := j.Operator
	if op == "" {
		op = "="
	}
	if !allowedOperators[strings.ToUpper(op)] {
		return "", fmt.Errorf("invalid SQL operator in join: %s (not in whitelist)", op)
	}
	first, err := g.Wrap(j.First)
	if err != nil {
		return "", fmt.Errorf("join column wrap error: %w", err)
	}
	second, err := g.Wrap(j.Second)
	if err != nil {
		return "", fmt.Errorf("join column wrap error: %w", err)
	}

	typ := j.Type
	if typ == "" {
		typ = LeftJoin
	}
	return fmt.Sprintf("%s JOIN %s ON %s %s %s", typ, table, first, op, second), nil
}

func compileWhere(g Grammar, w WhereClause, b *bindings) (string, error) {
	operator := strings.ToUpper(strings.TrimSpace(w.Operator))
	if !allowedOperators[operator] {
		return "", fmt.Errorf("where clause error: invalid SQL operator: %s (not in whitelist)", w.Operator)
	}

	col, err := g.Wrap(w.Column)
	if err != nil {
		return "", fmt.Errorf("where column wrap error: %w", err)
	}

	switch operator {
	case "IN", "NOT IN":
		if !specification.IsList(w.Value) {
			return "", fmt.Errorf("%s operator requires a list value, got %T", operator, w.Value)
		}
		values := specification.ListValues(w.Value)
		if len(values) == 0 {
			if operator == "IN" {
				return "1 = 0", nil
			}
			return "1 = 1", nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = b.add(v)
		}
		return fmt.Sprintf("%s %s (%s)", col, operator, strings.Join(placeholders, ", ")), nil

	case "BETWEEN", "NOT BETWEEN":
		values := specification.ListValues(w.Value)
		if len(values) != 2 {
			return "", fmt.Errorf("%s operator requires exactly 2 values", operator)
		}
		return fmt.Sprintf("%s %s %s AND %s", col, operator, b.add(values[0]), b.add(values[1])), nil

	case "IS", "IS NOT":
		if w.Value == nil {
			return fmt.Sprintf("%s %s NULL", col, operator), nil
		}
		return fmt.Sprintf("%s %s %s", col, operator, b.add(w.Value)), nil
	}

	return fmt.Sprintf("%s %s %s", col, operator, b.add(w.Value)), nil
}

// GrammarFor, sürücü adına göre Grammar döner.
func GrammarFor(driver string) (Grammar, error) {
	switch strings.ToLower(driver) {
	case "mysql", "mariadb":
		return NewMySQLGrammar(), nil
	case "postgres", "postgresql", "pgx":
		return NewPostgresGrammar(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteGrammar(), nil
	}
	return nil, fmt.Errorf("unsupported SQL dialect: %s", driver)
}
