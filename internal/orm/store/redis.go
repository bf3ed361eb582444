package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// replaceScript overwrites a hash field only when it already exists
var replaceScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// RedisStore is a Redis-backed document store. Each collection is a hash
// keyed by document id; a set tracks the collection names.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string

	// Password is the Redis password (empty if no auth)
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix is the prefix for all document keys
	KeyPrefix string
}

// DefaultRedisConfig returns default Redis configuration
func DefaultRedisConfig(addr string) *RedisConfig {
	return &RedisConfig{
		Addr:      addr,
		KeyPrefix: "odm:",
	}
}

// NewRedisStore creates a new Redis document store
func NewRedisStore(config *RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return NewRedisStoreFromClient(client, config.KeyPrefix)
}

// NewRedisStoreFromClient creates a new Redis store from an existing client
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
	}
}

func (r *RedisStore) collectionKey(collection string) string {
	return r.prefix + "docs:" + collection
}

func (r *RedisStore) indexKey() string {
	return r.prefix + "collections"
}

// Insert stores a new document
func (r *RedisStore) Insert(ctx context.Context, collection, id string, body []byte) error {
	created, err := r.client.HSetNX(ctx, r.collectionKey(collection), id, body).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicateID
	}
	return r.client.SAdd(ctx, r.indexKey(), collection).Err()
}

// Replace overwrites an existing document
func (r *RedisStore) Replace(ctx context.Context, collection, id string, body []byte) error {
	replaced, err := replaceScript.Run(ctx, r.client, []string{r.collectionKey(collection)}, id, body).Int()
	if err != nil {
		return err
	}
	if replaced == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a document body
func (r *RedisStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	body, err := r.client.HGet(ctx, r.collectionKey(collection), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

// List returns every document body in a collection, ordered by id
func (r *RedisStore) List(ctx context.Context, collection string) ([][]byte, error) {
	docs, err := r.client.HGetAll(ctx, r.collectionKey(collection)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bodies := make([][]byte, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, []byte(docs[id]))
	}
	return bodies, nil
}

// Delete removes a document
func (r *RedisStore) Delete(ctx context.Context, collection, id string) error {
	key := r.collectionKey(collection)

	removed, err := r.client.HDel(ctx, key, id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}

	remaining, err := r.client.HLen(ctx, key).Result()
	if err != nil {
		return err
	}
	if remaining == 0 {
		return r.client.SRem(ctx, r.indexKey(), collection).Err()
	}
	return nil
}

// Collections returns the names of collections holding documents
func (r *RedisStore) Collections(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
