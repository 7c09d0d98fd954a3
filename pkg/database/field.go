package database

// -----------------------------------------------------------------------------
// FIELD REGISTRY
// -----------------------------------------------------------------------------
// Bir sorgunun filtrelenebilir alanları. Her alan dışarıya bir isimle görünür
// (specification'daki flat anahtar bu isimle eşleşir) ve bir fiziksel kolona
// karşılık gelir. Bazı alanlar ancak ek bir JOIN ile çözülebilir; bunlar
// JoinedField'dır ve QueryBuilder'a hangi join'in gerektiğini söyler.
// -----------------------------------------------------------------------------

// Field, sorgulanabilir bir alanın tanımıdır.
type Field interface {
	Name() string
}

// JoinedField, çözülmesi için JOIN gereken alandır.
type JoinedField interface {
	Field
	JoinName() string
}

// ColumnField, fiziksel kolon adını bilen alandır.
type ColumnField interface {
	Field
	ColumnName() string
}

// Column, doğrudan ana tablodaki bir kolona bakan alandır.
type Column struct {
	name   string
	column string
}

// NewColumn, yeni bir Column oluşturur. column boşsa alan adı kullanılır.
func NewColumn(name, column string) Column {
	return Column{name: name, column: column}
}

func (c Column) Name() string { return c.name }

// ColumnName, alanın SQL kolonunu döner.
func (c Column) ColumnName() string {
	if c.column == "" {
		return c.name
	}
	return c.column
}

// JoinedColumn, join edilen tablodaki bir kolona bakan alandır.
//
//	NewJoinedColumn("type-name", "types.name", "type")
type JoinedColumn struct {
	Column
	join string
}

// NewJoinedColumn, yeni bir JoinedColumn oluşturur.
func NewJoinedColumn(name, column, join string) JoinedColumn {
	return JoinedColumn{Column: NewColumn(name, column), join: join}
}

func (c JoinedColumn) JoinName() string { return c.join }

// ColumnOf, alanın SQL kolonunu döner; ColumnField değilse alan adı kullanılır.
func ColumnOf(f Field) string {
	if cf, ok := f.(ColumnField); ok {
		return cf.ColumnName()
	}
	return f.Name()
}
