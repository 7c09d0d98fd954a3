// -----------------------------------------------------------------------------
// Specification Query Builder
// -----------------------------------------------------------------------------
// Builder, bir Specification'ı bağlı sorguya uygular:
//
//  1. where ağacını flatten eder,
//  2. her flat anahtarı sorgunun TÜM alanlarıyla eşleştirir (ilk eşleşmede
//     durmaz; birden çok alan aynı anahtara AND ile bağlanır),
//  3. koşulları ConditionBuilder'a ürettirir ve AndWhere ile ekler,
//  4. join gerektiren alanlar için RegisterJoin çağırır,
//  5. sıralama, limit ve offset'i uygular.
//
// Builder tek goroutine içindir. İstek başına Clone ile çoğaltılır; kopya
// ConditionBuilder'ı paylaşır ama bağlı sorguyu paylaşmaz.
// -----------------------------------------------------------------------------

package querybuilder

import (
	"log"
	"reflect"

	"github.com/biyonik/specquery/pkg/database"
	"github.com/biyonik/specquery/pkg/specification"
)

// Query, Builder'ın yazdığı sorgu biriktiricisidir.
// *database.QueryBuilder bu interface'i sağlar.
type Query interface {
	Fields() []database.Field
	AndWhere(cond database.WhereClause)
	RegisterJoin(name string)
	ApplyOrder(order specification.OrderBy)
	ApplyLimit(n int)
	ApplyOffset(n int)
}

var _ Query = (*database.QueryBuilder)(nil)

// OrderTranslator, sıralama alan adlarını fiziksel kolonlara çevirme
// noktasıdır. Varsayılanı olduğu gibi döndürür.
type OrderTranslator func(order specification.OrderBy) specification.OrderBy

// IdentityOrder, sıralamayı değiştirmeden döner.
func IdentityOrder(order specification.OrderBy) specification.OrderBy {
	return order
}

// Option, Builder ayarıdır.
type Option func(*Builder)

// WithSeparator, flatten ayracını değiştirir. Boş değer "-" demektir.
func WithSeparator(sep string) Option {
	return func(b *Builder) {
		if sep != "" {
			b.separator = sep
		}
	}
}

// WithOrderTranslator, sıralama çevirisini ayarlar.
func WithOrderTranslator(fn OrderTranslator) Option {
	return func(b *Builder) {
		if fn != nil {
			b.translate = fn
		}
	}
}

// WithLogger, eşleşme ayrıntılarını loglamak için logger verir.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

type Builder struct {
	conditions ConditionBuilder
	query      Query
	separator  string
	translate  OrderTranslator
	logger     *log.Logger
}

// New, strateji ile yeni bir Builder oluşturur.
//
//	b := querybuilder.New(querybuilder.NewFieldConditionBuilder())
//	_, err := b.SetQuery(schema.NewQuery(db, grammar)).Apply(spec)
func New(conditions ConditionBuilder, opts ...Option) *Builder {
	b := &Builder{
		conditions: conditions,
		separator:  specification.DefaultSeparator,
		translate:  IdentityOrder,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetQuery, hedef sorguyu bağlar. Önceki bağ kopar.
//
// nil bir pointer taşıyan interface (örn. (*database.QueryBuilder)(nil))
// bağ yok sayılır; Apply bu durumda ErrQueryNotBound döner.
func (b *Builder) SetQuery(q Query) *Builder {
	if isNilQuery(q) {
		q = nil
	}
	b.query = q
	return b
}

func isNilQuery(q Query) bool {
	if q == nil {
		return true
	}
	v := reflect.ValueOf(q)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Separator, flatten ayracıdır.
func (b *Builder) Separator() string {
	return b.separator
}

// Query, bağlı sorguyu döner; bağ yoksa nil.
func (b *Builder) Query() Query {
	return b.query
}

// Apply, specification'ı bağlı sorguya ekler. Sorgunun daha önce
// biriktirdiği state'e dokunmaz.
//
// Limit ve Offset için 0 "belirtilmemiş" demektir ve uygulanmaz.
//
// Hata durumları:
//   - ErrQueryNotBound: sorgu bağlı değil, hiçbir şey değişmez.
//   - *ConditionBuildError: strateji hatası; o ana kadarki koşullar
//     sorguda kalır, hatalı anahtarın hiçbir koşulu ve join'i eklenmez.
func (b *Builder) Apply(spec specification.Specification) (*Builder, error) {
	if b.query == nil {
		return nil, ErrQueryNotBound
	}

	if len(spec.Where) > 0 {
		fields := b.query.Fields()
		for _, entry := range specification.Flatten(spec.Where, b.separator) {
			if err := b.applyKey(fields, entry.Key, entry.Value); err != nil {
				return nil, err
			}
		}
	}

	if len(spec.OrderBy) > 0 {
		b.query.ApplyOrder(b.translate(spec.OrderBy))
	}
	if spec.Limit != 0 {
		b.query.ApplyLimit(spec.Limit)
	}
	if spec.Offset != 0 {
		b.query.ApplyOffset(spec.Offset)
	}

	return b, nil
}

type match struct {
	cond database.WhereClause
	join string
}

func (b *Builder) applyKey(fields []database.Field, key string, value any) error {
	var matches []match
	for _, field := range fields {
		if !b.conditions.CanApply(field, key, value) {
			continue
		}
		cond, err := b.conditions.Build(field, key, value)
		if err != nil {
			return err
		}
		m := match{cond: cond}
		if jf, ok := field.(database.JoinedField); ok {
			m.join = jf.JoinName()
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 && b.logger != nil {
		b.logger.Printf("querybuilder: %q eşleşen alan yok, atlandı", key)
	}

	for _, m := range matches {
		b.query.AndWhere(m.cond)
		if m.join != "" {
			b.query.RegisterJoin(m.join)
		}
	}
	return nil
}

// Clone, bağlı sorgusu olmayan bir kopya döner. Strateji, ayraç, çevirici
// ve logger paylaşılır.
func (b *Builder) Clone() *Builder {
	c := *b
	c.query = nil
	return &c
}
