package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name      string
		err       error
		duplicate bool
	}{
		{name: "nil", err: nil},
		{name: "plain", err: other},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, duplicate: true},
		{name: "pgx wrapped unique", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), duplicate: true},
		{name: "pgx not null", err: &pgconn.PgError{Code: "23502"}},
		{name: "pq unique", err: &pq.Error{Code: "23505"}, duplicate: true},
		{name: "pq other", err: &pq.Error{Code: "42P01"}},
		{name: "sqlite primary key", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, duplicate: true},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, duplicate: true},
		{name: "sqlite not null", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertDBError(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.duplicate, IsDuplicateID(got))
			if !tt.duplicate {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}

func TestConvertDBErrorNoRows(t *testing.T) {
	assert.True(t, IsNotFound(ConvertDBError(sql.ErrNoRows)))
	assert.True(t, IsNotFound(ConvertDBError(fmt.Errorf("scan: %w", sql.ErrNoRows))))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("people/a: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrDuplicateID))
	assert.False(t, IsNotFound(nil))
}
