package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect captures the SQL differences between supported databases
type Dialect int

const (
	// SQLite uses ? placeholders and a TEXT body column
	SQLite Dialect = iota
	// Postgres uses $n placeholders and a JSONB body column
	Postgres
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// DefaultTableName is the table documents are stored in
const DefaultTableName = "odm_documents"

// SQLStore is a database/sql backed document store
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	tableName string
}

// NewSQLStore wraps an open database and creates the documents table
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{
		db:        db,
		dialect:   dialect,
		tableName: DefaultTableName,
	}

	if err := s.createTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return s, nil
}

// createTable creates the documents table if it doesn't exist
func (s *SQLStore) createTable(ctx context.Context) error {
	bodyType := "TEXT"
	if s.dialect == Postgres {
		bodyType = "JSONB"
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			body %s NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`, s.tableName, bodyType)

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// bind rewrites ? placeholders for the store's dialect
func (s *SQLStore) bind(query string) string {
	if s.dialect != Postgres {
		return query
	}

	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Insert stores a new document
func (s *SQLStore) Insert(ctx context.Context, collection, id string, body []byte) error {
	query := s.bind(fmt.Sprintf(
		"INSERT INTO %s (collection, id, body) VALUES (?, ?, ?)", s.tableName))

	_, err := s.db.ExecContext(ctx, query, collection, id, string(body))
	return ConvertDBError(err)
}

// Replace overwrites an existing document
func (s *SQLStore) Replace(ctx context.Context, collection, id string, body []byte) error {
	query := s.bind(fmt.Sprintf(
		"UPDATE %s SET body = ? WHERE collection = ? AND id = ?", s.tableName))

	result, err := s.db.ExecContext(ctx, query, string(body), collection, id)
	if err != nil {
		return ConvertDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ConvertDBError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a document body
func (s *SQLStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	query := s.bind(fmt.Sprintf(
		"SELECT body FROM %s WHERE collection = ? AND id = ?", s.tableName))

	var body []byte
	if err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&body); err != nil {
		return nil, ConvertDBError(err)
	}
	return body, nil
}

// List returns every document body in a collection, ordered by id
func (s *SQLStore) List(ctx context.Context, collection string) ([][]byte, error) {
	query := s.bind(fmt.Sprintf(
		"SELECT body FROM %s WHERE collection = ? ORDER BY id", s.tableName))

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, ConvertDBError(err)
	}
	defer rows.Close()

	bodies := make([][]byte, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, ConvertDBError(err)
		}
		bodies = append(bodies, body)
	}
	return bodies, ConvertDBError(rows.Err())
}

// Delete removes a document
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	query := s.bind(fmt.Sprintf(
		"DELETE FROM %s WHERE collection = ? AND id = ?", s.tableName))

	result, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return ConvertDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ConvertDBError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Collections returns the names of collections holding documents
func (s *SQLStore) Collections(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT collection FROM %s ORDER BY collection", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ConvertDBError(err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ConvertDBError(err)
		}
		names = append(names, name)
	}
	return names, ConvertDBError(rows.Err())
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Dialect returns the store's SQL dialect
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

var _ Store = (*SQLStore)(nil)
