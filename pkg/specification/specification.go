// -----------------------------------------------------------------------------
// Specification Package
// -----------------------------------------------------------------------------
// Bu paket, bir sorgunun "ne" istediğini tanımlayan deklaratif yapıyı içerir:
// filtre ağacı (where), sıralama (order by) ve sayfalama (limit/offset).
//
// Specification salt okunurdur; QueryBuilder onu okuyup hedef sorguya uygular,
// asla değiştirmez. Filtre ağacı Go map'i yerine sıralı bir Entry listesi olarak
// tutulur, böylece anahtarların ekleme sırası korunur ve flatten çıktısı
// deterministik olur.
// -----------------------------------------------------------------------------

package specification

import (
	"reflect"
	"sort"
)

// Entry, filtre ağacındaki tek bir anahtar/değer çiftidir.
//
// Value şunlardan biri olabilir:
//   - skaler değer (string, int, bool, nil, ...)
//   - Tree (iç içe filtre, flatten sırasında açılır)
//   - liste ([]any vb., yaprak olarak kalır)
//   - boş Tree veya boş liste ("hiçbir şeyle eşleşme" işareti)
type Entry struct {
	Key   string
	Value any
}

// Tree, ekleme sırasını koruyan filtre ağacıdır.
// Aynı seviyedeki anahtarlar benzersizdir; Set mevcut anahtarı yerinde günceller.
type Tree []Entry

// NewTree, verilen entry'lerden bir Tree oluşturur.
// Tekrarlanan anahtarlarda son değer kazanır, konum ilk görülen yerde kalır.
func NewTree(entries ...Entry) Tree {
	t := make(Tree, 0, len(entries))
	for _, e := range entries {
		t.Set(e.Key, e.Value)
	}
	return t
}

// Set, anahtarı ekler veya mevcut değeri yerinde değiştirir.
func (t *Tree) Set(key string, value any) {
	for i := range *t {
		if (*t)[i].Key == key {
			(*t)[i].Value = value
			return
		}
	}
	*t = append(*t, Entry{Key: key, Value: value})
}

// Get, anahtarın değerini döner.
func (t Tree) Get(key string) (any, bool) {
	for _, e := range t {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys, anahtarları ekleme sırasıyla döner.
func (t Tree) Keys() []string {
	keys := make([]string, len(t))
	for i, e := range t {
		keys[i] = e.Key
	}
	return keys
}

// FromMap, bir Go map'inden Tree üretir.
//
// Map'ler sırasız olduğu için anahtarlar alfabetik sıralanır. İç içe
// map[string]any değerleri de Tree'ye dönüştürülür.
//
// Örnek:
//
//	FromMap(map[string]any{"type": map[string]any{"id": 13}, "id": 42})
//	→ Tree{{"id", 42}, {"type", Tree{{"id", 13}}}}
func FromMap(m map[string]any) Tree {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := make(Tree, 0, len(m))
	for _, k := range keys {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			v = FromMap(nested)
		}
		t = append(t, Entry{Key: k, Value: v})
	}
	return t
}

// Sort, tek bir sıralama ifadesidir. Direction olduğu gibi taşınır
// ("asc", "desc"); doğrulama sorgu tarafında yapılır.
type Sort struct {
	Field     string
	Direction string
}

// OrderBy, sıralı sıralama listesidir.
type OrderBy []Sort

// Specification, filtre/sıralama/sayfalama niyetini taşır.
//
// Limit ve Offset için sıfır "belirtilmemiş" demektir; sıfır limit
// uygulanamaz.
type Specification struct {
	Where   Tree
	OrderBy OrderBy
	Limit   int
	Offset  int
}

// IsEmptyCollection, değerin boş bir Tree veya boş bir liste olup olmadığını
// söyler. Boş koleksiyon, "her zaman false" koşulu anlamına gelir.
func IsEmptyCollection(value any) bool {
	switch v := value.(type) {
	case Tree:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		return rv.Len() == 0
	}
	return false
}

// IsList, değerin yaprak olarak ele alınan sıralı bir liste olup olmadığını
// söyler. []byte liste sayılmaz.
func IsList(value any) bool {
	if _, ok := value.(Tree); ok {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Array:
		return true
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

// ListValues, bir liste değerini []any'ye çevirir. Liste değilse nil döner.
func ListValues(value any) []any {
	if v, ok := value.([]any); ok {
		return v
	}
	if !IsList(value) {
		return nil
	}
	rv := reflect.ValueOf(value)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
