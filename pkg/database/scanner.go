package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// ROW SCANNER
// -----------------------------------------------------------------------------
// sql.Rows'u struct'lara veya map'lere tarar. Kolon → alan eşlemesi
// `db:"kolon"` tag'inden okunur (tag yoksa alan adının küçük harfli hali).
// Eşlemeler tip başına bir kez hesaplanıp saklanır. Eşleşmeyen kolonlar
// sessizce atlanır.
// -----------------------------------------------------------------------------

// fieldPaths, kolon adından struct alanına giden index yoludur.
type fieldPaths map[string][]int

var structMaps sync.Map // reflect.Type → fieldPaths

func fieldPathsOf(t reflect.Type) fieldPaths {
	if cached, ok := structMaps.Load(t); ok {
		return cached.(fieldPaths)
	}

	paths := make(fieldPaths)
	collectFieldPaths(t, nil, paths)

	actual, _ := structMaps.LoadOrStore(t, paths)
	return actual.(fieldPaths)
}

func collectFieldPaths(t reflect.Type, prefix []int, out fieldPaths) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(prefix[:len(prefix):len(prefix)], i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFieldPaths(f.Type, index, out)
			continue
		}
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		if _, exists := out[tag]; !exists {
			out[tag] = index
		}
	}
}

// ScanStruct, mevcut satırı struct pointer'a tarar.
func ScanStruct(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest must be a struct pointer, got %T", dest)
	}
	elem := v.Elem()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	paths := fieldPathsOf(elem.Type())

	targets := make([]any, len(cols))
	for i, col := range cols {
		path, ok := paths[col]
		if !ok {
			targets[i] = new(sql.RawBytes)
			continue
		}
		targets[i] = elem.FieldByIndex(path).Addr().Interface()
	}

	return rows.Scan(targets...)
}

// ScanSlice, tüm satırları struct slice pointer'ına ekler.
//
//	var products []Product
//	err := ScanSlice(rows, &products)
func ScanSlice(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("scanner: dest must be a slice pointer, got %T", dest)
	}
	slice := v.Elem()
	itemType := slice.Type().Elem()

	for rows.Next() {
		item := reflect.New(itemType)
		if err := ScanStruct(rows, item.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, item.Elem()))
	}

	return rows.Err()
}

// ScanMaps, sql.Rows'u []map[string]interface{} biçimine dönüştürür.
// []byte değerler string'e çevrilir.
func ScanMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		m := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				m[col] = string(b)
				continue
			}
			m[col] = values[i]
		}
		res = append(res, m)
	}

	return res, rows.Err()
}
