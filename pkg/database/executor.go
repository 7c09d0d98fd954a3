package database

import (
	"context"
	"database/sql"
)

// QueryExecutor, hem *sql.DB hem de *sql.Tx tarafından örtük olarak
// uygulanan metodlardır. QueryBuilder *sql.DB'ye kilitlenmez; transaction
// içinde de aynı şekilde çalışır.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
