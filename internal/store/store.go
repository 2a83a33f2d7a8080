package store

import (
	"context"
	"log/slog"
	"strings"

	"stockdash/internal/dataset"
)

// TableStore writes whole tables to a relational database.
type TableStore interface {
	// ReplaceTable drops table if it exists, recreates it with the schema
	// of f and inserts every row, all in one transaction. It returns the
	// number of rows written.
	ReplaceTable(ctx context.Context, table string, f *dataset.Frame) (int64, error)

	// CountRows returns the number of rows in table.
	CountRows(ctx context.Context, table string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Backend names reported by Kind.
const (
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
)

// Kind returns the backend a DSN selects.
func Kind(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return KindPostgres
	}
	return KindSQLite
}

// Open connects to the database named by dsn.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (TableStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if Kind(dsn) == KindPostgres {
		return OpenPostgres(ctx, dsn, logger)
	}
	return OpenSQLite(ctx, dsn, logger)
}

// quoteIdent quotes a SQL identifier with double quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var (
	_ TableStore = (*PostgresStore)(nil)
	_ TableStore = (*SQLiteStore)(nil)
)
