package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
)

// PostgresStore is a TableStore backed by a pgx connection pool.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pool for dsn and checks that the server answers.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid postgres connection string", err)
	}

	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create postgres pool", err)
	}

	s := &PostgresStore{db: pool, logger: logger}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) ReplaceTable(ctx context.Context, table string, f *dataset.Frame) (int64, error) {
	schema := InferSchema(f)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to begin transaction", err).WithContext("table", table)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ident := pgx.Identifier{table}.Sanitize()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return 0, apperrors.NewStorageError("failed to drop table", err).WithContext("table", table)
	}
	if _, err := tx.Exec(ctx, postgresCreateTable(ident, schema)); err != nil {
		return 0, apperrors.NewStorageError("failed to create table", err).WithContext("table", table)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, ColumnNames(schema), pgx.CopyFromRows(ConvertRows(f, schema)))
	if err != nil {
		return 0, apperrors.NewStorageError("failed to copy rows", err).WithContext("table", table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperrors.NewStorageError("failed to commit table", err).WithContext("table", table)
	}

	s.logger.DebugContext(ctx, "table replaced",
		slog.String("backend", KindPostgres),
		slog.String("table", table),
		slog.Int("columns", len(schema)),
		slog.Int64("rows", n))

	return n, nil
}

func (s *PostgresStore) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to count rows", err).WithContext("table", table)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return apperrors.NewStorageError("postgres ping failed", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func postgresCreateTable(ident string, schema []Column) string {
	defs := make([]string, len(schema))
	for i, c := range schema {
		defs[i] = fmt.Sprintf("%s %s", pgx.Identifier{c.Name}.Sanitize(), postgresType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
}

func postgresType(t ColumnType) string {
	switch t {
	case TypeInteger:
		return "BIGINT"
	case TypeReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
