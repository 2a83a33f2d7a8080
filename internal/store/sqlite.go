package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
)

const sqliteScheme = "sqlite:///"

// SQLiteStore is a TableStore backed by a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens, creating if needed, the SQLite database named by dsn.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn = strings.TrimPrefix(dsn, sqliteScheme)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open sqlite database", err).WithContext("dsn", dsn)
	}
	// A single writer keeps the file lock simple.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) ReplaceTable(ctx context.Context, table string, f *dataset.Frame) (int64, error) {
	schema := InferSchema(f)
	ident := quoteIdent(table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to begin transaction", err).WithContext("table", table)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return 0, apperrors.NewStorageError("failed to drop table", err).WithContext("table", table)
	}
	if _, err := tx.ExecContext(ctx, sqliteCreateTable(ident, schema)); err != nil {
		return 0, apperrors.NewStorageError("failed to create table", err).WithContext("table", table)
	}

	var n int64
	if len(schema) > 0 {
		stmt, err := tx.PrepareContext(ctx, sqliteInsert(ident, schema))
		if err != nil {
			return 0, apperrors.NewStorageError("failed to prepare insert", err).WithContext("table", table)
		}
		defer stmt.Close()

		for i, values := range ConvertRows(f, schema) {
			if _, err := stmt.ExecContext(ctx, values...); err != nil {
				return 0, apperrors.NewStorageError("failed to insert row", err).
					WithContext("table", table).
					WithContext("row", i)
			}
			n++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewStorageError("failed to commit table", err).WithContext("table", table)
	}

	s.logger.DebugContext(ctx, "table replaced",
		slog.String("backend", KindSQLite),
		slog.String("table", table),
		slog.Int("columns", len(schema)),
		slog.Int64("rows", n))

	return n, nil
}

func (s *SQLiteStore) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to count rows", err).WithContext("table", table)
	}
	return n, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewStorageError("sqlite ping failed", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteCreateTable(ident string, schema []Column) string {
	defs := make([]string, len(schema))
	for i, c := range schema {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), sqliteType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
}

func sqliteInsert(ident string, schema []Column) string {
	names := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, c := range schema {
		names[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ident, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func sqliteType(t ColumnType) string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}
