// -----------------------------------------------------------------------------
// Database Types - SQL Builder İçin Yardımcı Tipler
// -----------------------------------------------------------------------------
// QueryBuilder'ın biriktirdiği koşul, sıralama ve JOIN yapıları burada
// tanımlanır. Kolon ve yön gibi parçalar ayrı alanlarda tutulur; SQL string'i
// ancak Grammar katmanında, identifier ve operatör whitelist kontrolünden
// sonra üretilir.
// -----------------------------------------------------------------------------

package database

import "strings"

// OrderDirection, ORDER BY için izin verilen yönlerdir.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// ParseOrderDirection, kullanıcıdan gelen yönü normalize eder.
// "desc" dışındaki her değer ASC kabul edilir.
func ParseOrderDirection(direction string) OrderDirection {
	if strings.EqualFold(strings.TrimSpace(direction), string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// OrderClause, tek bir ORDER BY ifadesidir.
//
//	OrderClause{Column: "created_at", Direction: OrderDesc}
//	→ ORDER BY `created_at` DESC
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// WhereClause, QueryBuilder'a eklenen tek bir koşuldur. Condition builder'ların
// ürettiği opak koşul nesnesi de budur.
//
// Alanlar:
//   - Column: Koşulun kolonu (join'li alanlarda "tablo.kolon")
//   - Operator: Karşılaştırma operatörü (=, IN, LIKE, IS, ...)
//   - Value: Değer; IN/NOT IN/BETWEEN için liste, IS için nil
//   - Boolean: Önceki koşulla bağlantı ("AND" veya "OR")
//
// Boş listeli IN her zaman false, boş listeli NOT IN her zaman true derlenir.
type WhereClause struct {
	Column   string
	Operator string
	Value    interface{}
	Boolean  string
}

// JoinType, JOIN tipleridir.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	CrossJoin JoinType = "CROSS"
)

// ParseJoinType, konfigürasyondaki join tipini doğrular.
// Boş değer LEFT kabul edilir.
func ParseJoinType(s string) (JoinType, bool) {
	switch JoinType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", LeftJoin:
		return LeftJoin, true
	case InnerJoin:
		return InnerJoin, true
	case RightJoin:
		return RightJoin, true
	case CrossJoin:
		return CrossJoin, true
	}
	return "", false
}

// JoinClause, bir JOIN ifadesidir.
//
//	JoinClause{Type: LeftJoin, Table: "posts", First: "users.id", Operator: "=", Second: "posts.user_id"}
//	→ LEFT JOIN `posts` ON `users`.`id` = `posts`.`user_id`
//
// CROSS JOIN'de First/Operator/Second kullanılmaz.
type JoinClause struct {
	Type     JoinType
	Table    string
	First    string
	Operator string
	Second   string
}
