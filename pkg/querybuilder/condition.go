package querybuilder

import (
	"strconv"
	"strings"

	"github.com/biyonik/specquery/pkg/database"
	"github.com/biyonik/specquery/pkg/specification"
)

// -----------------------------------------------------------------------------
// CONDITION BUILDER
// -----------------------------------------------------------------------------
// Bir (alan, flat anahtar, değer) üçlüsünün koşula dönüşüp dönüşemeyeceğine
// ve dönüşecekse nasıl dönüşeceğine karar veren strateji. Builder yalnızca
// CanApply true dönen üçlüler için Build çağırır.
// -----------------------------------------------------------------------------

// ConditionBuilder, koşul üretim stratejisidir. Implementasyonlar stateless
// olmalıdır; aynı instance birden çok Builder arasında paylaşılır.
type ConditionBuilder interface {
	// CanApply, saf bir predicate'tir. Aynı girdi için hep aynı sonucu döner.
	CanApply(field database.Field, key string, value any) bool

	// Build, koşulu üretir. CanApply'ın reddettiği girdide
	// *ConditionBuildError döner.
	Build(field database.Field, key string, value any) (database.WhereClause, error)
}

// ConditionFuncs, iki fonksiyondan ConditionBuilder üretir.
//
//	cb := ConditionFuncs{
//	    CanApplyFunc: func(f database.Field, key string, _ any) bool { return key == "q" && f.Name() == "name" },
//	    BuildFunc:    func(f database.Field, _ string, v any) (database.WhereClause, error) { ... },
//	}
type ConditionFuncs struct {
	CanApplyFunc func(field database.Field, key string, value any) bool
	BuildFunc    func(field database.Field, key string, value any) (database.WhereClause, error)
}

func (c ConditionFuncs) CanApply(field database.Field, key string, value any) bool {
	return c.CanApplyFunc != nil && c.CanApplyFunc(field, key, value)
}

func (c ConditionFuncs) Build(field database.Field, key string, value any) (database.WhereClause, error) {
	if !c.CanApply(field, key, value) || c.BuildFunc == nil {
		return database.WhereClause{}, &ConditionBuildError{Field: field.Name(), Key: key, Value: value, Reason: "not applicable"}
	}
	return c.BuildFunc(field, key, value)
}

// OperatorSeparator, alan adı ile operatör son ekini ayırır: "price_gt".
const OperatorSeparator = "_"

// suffixOperators, anahtar son eklerinin SQL karşılıklarıdır.
var suffixOperators = map[string]string{
	"in":   "IN",
	"ni":   "NOT IN",
	"ne":   "!=",
	"like": "LIKE",
	"gt":   ">",
	"ge":   ">=",
	"lt":   "<",
	"le":   "<=",
	"null": "IS",
}

// FieldConditionBuilder, varsayılan stratejidir. Anahtar alan adına eşitse
// ya da alan adı + "_" + operatör ise uygulanır:
//
//	id: 42            → id = 42
//	id: [1, 2]        → id IN (1, 2)
//	id: []            → 1 = 0
//	id_ni: [3]        → id NOT IN (3)
//	price_ge: 10      → price >= 10
//	name_like: "%a%"  → name LIKE '%a%'
//	deleted_null: true  → deleted IS NULL
//	deleted_null: false → deleted IS NOT NULL
//	deleted_null: null  → uygulanmaz (true/false beklenir)
//
// İç içe (boş olmayan) Tree değerleri uygulanmaz.
type FieldConditionBuilder struct{}

// NewFieldConditionBuilder, varsayılan stratejiyi döner.
func NewFieldConditionBuilder() FieldConditionBuilder {
	return FieldConditionBuilder{}
}

func (FieldConditionBuilder) CanApply(field database.Field, key string, value any) bool {
	_, reason := plan(field, key, value)
	return reason == ""
}

func (FieldConditionBuilder) Build(field database.Field, key string, value any) (database.WhereClause, error) {
	cond, reason := plan(field, key, value)
	if reason != "" {
		return database.WhereClause{}, &ConditionBuildError{Field: field.Name(), Key: key, Value: value, Reason: reason}
	}
	return cond, nil
}

// plan, CanApply ve Build'in ortak karar noktasıdır; ikisi bu yüzden
// birbiriyle tutarlıdır. Boş reason koşulun geçerli olduğunu gösterir.
func plan(field database.Field, key string, value any) (database.WhereClause, string) {
	name := field.Name()

	suffix := ""
	if key != name {
		rest, ok := strings.CutPrefix(key, name+OperatorSeparator)
		if !ok {
			return database.WhereClause{}, "key does not address field"
		}
		if _, known := suffixOperators[rest]; !known {
			return database.WhereClause{}, "unknown operator suffix " + strconv.Quote(rest)
		}
		suffix = rest
	}

	empty := specification.IsEmptyCollection(value)
	if _, nested := value.(specification.Tree); nested && !empty {
		return database.WhereClause{}, "nested filter is not a condition"
	}
	list := empty || specification.IsList(value)

	cond := database.WhereClause{Column: database.ColumnOf(field), Boolean: "AND"}

	switch suffix {
	case "", "in", "ni":
		cond.Operator = "IN"
		if suffix == "ni" {
			cond.Operator = "NOT IN"
		}
		switch {
		case empty:
			cond.Value = []any{}
		case list:
			cond.Value = specification.ListValues(value)
		case suffix == "":
			cond.Operator, cond.Value = "=", value
		default:
			cond.Value = []any{value}
		}
		if suffix == "" && value == nil {
			cond.Operator = "IS"
		}
	case "null":
		if list || value == nil {
			return database.WhereClause{}, "null operator takes a boolean"
		}
		cond.Operator = "IS"
		if !truthy(value) {
			cond.Operator = "IS NOT"
		}
	default:
		if list {
			return database.WhereClause{}, "operator " + suffix + " takes a single value"
		}
		if value == nil {
			return database.WhereClause{}, "operator " + suffix + " cannot compare with null"
		}
		cond.Operator, cond.Value = suffixOperators[suffix], value
	}

	return cond, ""
}

// truthy, "_null" son ekinin değerini yorumlar.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return v != ""
		}
		return b
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return true
}
