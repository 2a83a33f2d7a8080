// Package store persists a merged frame as a relational table with
// full-replace semantics.
//
// Two backends are available and selected from the DSN by Open:
//
//   - postgres:// and postgresql:// DSNs use a pgx connection pool and load
//     rows with the COPY protocol.
//   - every other DSN is treated as a SQLite database file. A leading
//     "sqlite:///" is accepted and stripped.
//
// Column types are inferred from the cell text the way a dataframe reader
// would: integers, then floating point, then text. Null cells become SQL
// NULL.
package store
