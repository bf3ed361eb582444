// Package store provides the persistence backends documents are written to.
// Every backend stores opaque JSON bodies keyed by (collection, id); the model
// layer owns encoding, casting and lifecycle hooks.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Store defines the interface for all document backends
type Store interface {
	// Insert stores a new document; ErrDuplicateID if the id is taken
	Insert(ctx context.Context, collection, id string, body []byte) error

	// Replace overwrites an existing document; ErrNotFound if missing
	Replace(ctx context.Context, collection, id string, body []byte) error

	// Get retrieves a document body
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// List returns every document body in a collection, ordered by id
	List(ctx context.Context, collection string) ([][]byte, error)

	// Delete removes a document; ErrNotFound if missing
	Delete(ctx context.Context, collection, id string) error

	// Collections returns the names of collections holding documents
	Collections(ctx context.Context) ([]string, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// OpenOptions tunes how Open builds a backend
type OpenOptions struct {
	// SQLDriver selects the database/sql driver for postgres URLs:
	// "pgx" (default) or "postgres" (lib/pq)
	SQLDriver string
	// KeyPrefix is prepended to redis keys
	KeyPrefix string
}

// DefaultOpenOptions returns the default open options
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		SQLDriver: "pgx",
		KeyPrefix: "odm:",
	}
}

// Open creates a store from a URL. Supported schemes are memory, redis,
// sqlite (sqlite3) and postgres (postgresql).
func Open(ctx context.Context, rawURL string, opts OpenOptions) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory", "mem":
		return NewMemoryStore(), nil

	case "redis", "rediss":
		redisOpts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		s := NewRedisStoreFromClient(redis.NewClient(redisOpts), opts.KeyPrefix)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return s, nil

	case "sqlite", "sqlite3":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", rawURL)
		}
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return openSQLStore(ctx, db, SQLite)

	case "postgres", "postgresql":
		driver := opts.SQLDriver
		if driver == "" {
			driver = "pgx"
		}
		db, err := sql.Open(driver, rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return openSQLStore(ctx, db, Postgres)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// openSQLStore wraps a freshly opened database; the database is closed when
// the store cannot be set up
func openSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (Store, error) {
	st, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}
