package database

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema, schema dosyası tutarsız olduğunda döner.
var ErrInvalidSchema = errors.New("database: invalid schema")

// Schema, bir entity'nin tablo, alan ve join tanımlarıdır.
//
// YAML örneği:
//
//	table: products
//	select: [products.id, products.name]
//	fields:
//	  - name: id
//	  - name: type-name
//	    column: types.name
//	    join: type
//	joins:
//	  - name: type
//	    type: left
//	    table: types
//	    first: products.type_id
//	    operator: "="
//	    second: types.id
type Schema struct {
	Table  string        `yaml:"table"`
	Select []string      `yaml:"select"` // boşsa *
	Fields []FieldConfig `yaml:"fields"`
	Joins  []JoinConfig  `yaml:"joins"`
}

// FieldConfig, schema dosyasındaki alan tanımıdır.
type FieldConfig struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	Join   string `yaml:"join"`
}

// JoinConfig, schema dosyasındaki join tanımıdır.
type JoinConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Table    string `yaml:"table"`
	First    string `yaml:"first"`
	Operator string `yaml:"operator"`
	Second   string `yaml:"second"`
}

// LoadSchema, YAML içeriğinden Schema okur ve doğrular.
func LoadSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema decode failed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchemaFile, dosyadan Schema okur.
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema read failed: %w", err)
	}
	return LoadSchema(data)
}

// Validate, identifier'ları ve join referanslarını kontrol eder.
// QueryBuilder'ın panic atan doğrulamasına hiç ulaşılmaması için
// tüm kontroller burada error olarak yapılır.
func (s *Schema) Validate() error {
	if !isSafeIdentifier(s.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidSchema, s.Table)
	}

	for _, col := range s.Select {
		if !isSafeIdentifier(col) {
			return fmt.Errorf("%w: select column %q", ErrInvalidSchema, col)
		}
	}

	joins := make(map[string]bool, len(s.Joins))
	for _, j := range s.Joins {
		if j.Name == "" || joins[j.Name] {
			return fmt.Errorf("%w: join name %q is empty or duplicated", ErrInvalidSchema, j.Name)
		}
		typ, ok := ParseJoinType(j.Type)
		if !ok {
			return fmt.Errorf("%w: join %q has unknown type %q", ErrInvalidSchema, j.Name, j.Type)
		}
		if !isSafeIdentifier(j.Table) {
			return fmt.Errorf("%w: join %q table %q", ErrInvalidSchema, j.Name, j.Table)
		}
		if typ != CrossJoin && (!isSafeIdentifier(j.First) || !isSafeIdentifier(j.Second)) {
			return fmt.Errorf("%w: join %q needs valid first/second columns", ErrInvalidSchema, j.Name)
		}
		joins[j.Name] = true
	}

	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without name", ErrInvalidSchema)
		}
		column := f.Column
		if column == "" {
			column = f.Name
		}
		if !isSafeIdentifier(column) {
			return fmt.Errorf("%w: field %q column %q", ErrInvalidSchema, f.Name, column)
		}
		if f.Join != "" && !joins[f.Join] {
			return fmt.Errorf("%w: field %q references undefined join %q", ErrInvalidSchema, f.Name, f.Join)
		}
	}

	return nil
}

// Fingerprint, schema içeriğinin BLAKE2b-256 özetidir (hex). Tablo, select,
// alan ve join tanımlarından biri değişirse özet de değişir; derlenmiş
// sorgu cache'lerinin namespace'ine girer.
func (s *Schema) Fingerprint() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("schema fingerprint encode failed: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// FieldList, schema alanlarını Field olarak döner.
func (s *Schema) FieldList() []Field {
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		if f.Join != "" {
			fields[i] = NewJoinedColumn(f.Name, f.Column, f.Join)
		} else {
			fields[i] = NewColumn(f.Name, f.Column)
		}
	}
	return fields
}

// NewQuery, schema'ya bağlı boş bir QueryBuilder üretir: tablo, alanlar ve
// join tanımları yüklü, hiçbir join henüz gerekli değil.
func (s *Schema) NewQuery(executor QueryExecutor, grammar Grammar) *QueryBuilder {
	qb := NewBuilder(executor, grammar).
		Table(s.Table).
		WithFields(s.FieldList()...)
	if len(s.Select) > 0 {
		qb.Select(s.Select...)
	}

	for _, j := range s.Joins {
		typ, _ := ParseJoinType(j.Type)
		op := j.Operator
		if op == "" {
			op = "="
		}
		qb.DefineJoin(j.Name, JoinClause{
			Type:     typ,
			Table:    j.Table,
			First:    j.First,
			Operator: op,
			Second:   j.Second,
		})
	}

	return qb
}
