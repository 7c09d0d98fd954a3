package querybuilder

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/biyonik/specquery/pkg/cache"
	"github.com/biyonik/specquery/pkg/database"
	"github.com/biyonik/specquery/pkg/specification"
)

// Statement, derlenmiş bir sorgudur.
type Statement struct {
	SQL  string        `json:"sql"`
	Args []interface{} `json:"args"`
}

// Compiler, specification'ları SQL'e derler ve sonucu cache'ler.
// Her derleme, schema'dan bir kez kurulmuş prototip sorgunun Clone'u
// üzerinde yapılır.
//
// Cache anahtarı namespace + ":" + specification parmak izidir. Derlenen
// SQL'i değiştiren her girdi namespace'e girmelidir: tablo, lehçe, alan
// schema'sı (kolon/join/select eşlemesi) ve flatten ayracı. Aksi halde
// schema değiştiğinde cache eski SQL'i döner. NamespaceFor bunu hesaplar.
//
// Compiler goroutine-safe'dir: prototip yalnızca okunur, her derleme
// Builder'ın bir kopyası ve prototipin bir kopyası ile yapılır.
type Compiler struct {
	builder   *Builder
	prototype *database.QueryBuilder
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	logger    *log.Logger
}

// NewCompiler, yeni bir Compiler oluşturur. c nil ise cache kullanılmaz.
func NewCompiler(builder *Builder, prototype *database.QueryBuilder, c cache.Cache, namespace string, ttl time.Duration, logger *log.Logger) *Compiler {
	return &Compiler{
		builder:   builder,
		prototype: prototype,
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

// NamespaceFor, cache namespace'ini üretir:
//
//	products:sqlite:<BLAKE2b(schemaFingerprint, separator)[:16]>
func NamespaceFor(table, dialect, schemaFingerprint, separator string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(schemaFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(separator))
	return table + ":" + dialect + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}

// Build, specification uygulanmış yeni bir sorgu döner. Cache'e bakmaz.
func (c *Compiler) Build(spec specification.Specification) (*database.QueryBuilder, error) {
	q := c.prototype.Clone()
	if _, err := c.builder.Clone().SetQuery(q).Apply(spec); err != nil {
		return nil, err
	}
	return q, nil
}

// Compile, specification'ı derler. Aynı specification için ikinci çağrı
// cache'ten döner. Cache hataları derlemeyi durdurmaz, sadece loglanır.
func (c *Compiler) Compile(ctx context.Context, spec specification.Specification) (Statement, error) {
	fingerprint, err := spec.Fingerprint()
	if err != nil {
		return Statement{}, err
	}
	key := c.namespace + ":" + fingerprint

	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logf("⚠️  Statement cache okunamadı [%s]: %v", key, err)
		}
		if ok {
			stmt, err := decodeStatement(data)
			if err == nil {
				return stmt, nil
			}
			c.logf("⚠️  Bozuk statement cache kaydı [%s]: %v", key, err)
		}
	}

	q, err := c.Build(spec)
	if err != nil {
		return Statement{}, err
	}
	sqlStr, args, err := q.ToSQL()
	if err != nil {
		return Statement{}, fmt.Errorf("compile specification: %w", err)
	}

	data, err := json.Marshal(Statement{SQL: sqlStr, Args: args})
	if err != nil {
		return Statement{}, fmt.Errorf("encode statement: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logf("⚠️  Statement cache yazılamadı [%s]: %v", key, err)
		}
	}

	// Cache'ten gelen ve yeni derlenen statement aynı tipleri taşısın.
	return decodeStatement(data)
}

func (c *Compiler) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// decodeStatement, JSON sayılarını int64 ya da float64'e çevirir.
func decodeStatement(data []byte) (Statement, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var stmt Statement
	if err := dec.Decode(&stmt); err != nil {
		return Statement{}, fmt.Errorf("decode statement: %w", err)
	}
	if stmt.Args == nil {
		stmt.Args = []interface{}{}
	}
	for i, arg := range stmt.Args {
		n, ok := arg.(json.Number)
		if !ok {
			continue
		}
		if v, err := n.Int64(); err == nil {
			stmt.Args[i] = v
			continue
		}
		v, err := n.Float64()
		if err != nil {
			return Statement{}, fmt.Errorf("decode statement arg %d: %w", i, err)
		}
		stmt.Args[i] = v
	}
	return stmt, nil
}
