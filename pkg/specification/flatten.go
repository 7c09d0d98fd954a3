package specification

import "strings"

// DefaultSeparator, flat anahtar parçalarını birleştiren varsayılan ayraçtır.
const DefaultSeparator = "-"

// FlatEntry, flatten sonucundaki tek bir koşul anahtarıdır.
type FlatEntry struct {
	Key   string
	Value any
}

// Flat, tek seviyeli ve sıralı koşul haritasıdır.
type Flat []FlatEntry

func (f *Flat) set(key string, value any) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, FlatEntry{Key: key, Value: value})
}

// Get, flat anahtarın değerini döner.
func (f Flat) Get(key string) (any, bool) {
	for _, e := range f {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys, flat anahtarları sırasıyla döner.
func (f Flat) Keys() []string {
	keys := make([]string, len(f))
	for i, e := range f {
		keys[i] = e.Key
	}
	return keys
}

// Flatten, iç içe filtre ağacını tek seviyeye indirir.
//
//	Tree{{"id", 42}, {"type", Tree{{"id", 13}}}}
//
// şu hale gelir:
//
//	Flat{{"id", 42}, {"type-id", 13}}
//
// Boş Tree ve boş listeler açılmaz, olduğu gibi yazılır: `status: []`
// filtresi sessizce düşmek yerine eşleşmeyen bir koşula dönüşmelidir.
// Listeler yapraktır. Çakışan anahtarlarda sonraki değer kazanır.
// Boş separator DefaultSeparator anlamına gelir.
func Flatten(tree Tree, separator string) Flat {
	if separator == "" {
		separator = DefaultSeparator
	}
	out := make(Flat, 0, len(tree))
	flattenInto(&out, tree, nil, separator)
	return out
}

func flattenInto(out *Flat, tree Tree, parents []string, separator string) {
	for _, e := range tree {
		path := append(parents[:len(parents):len(parents)], e.Key)
		key := strings.Join(path, separator)

		if nested, ok := e.Value.(Tree); ok && len(nested) > 0 {
			flattenInto(out, nested, path, separator)
			continue
		}
		out.set(key, e.Value)
	}
}
