package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Common store error types
var (
	// ErrNotFound is returned when a document is not found
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateID is returned when inserting a document whose id already exists
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrUnsupportedScheme is returned by Open for an unknown store URL scheme
	ErrUnsupportedScheme = errors.New("unsupported store scheme")

	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")
)

// ConvertDBError converts database-specific errors to store errors
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	// PostgreSQL through pgx
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: %s", ErrDuplicateID, pgErr.Detail)
		}
		return err
	}

	// PostgreSQL through lib/pq
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateID, pqErr.Detail)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", ErrDuplicateID, liteErr.Error())
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateID returns true if the error is ErrDuplicateID
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}
