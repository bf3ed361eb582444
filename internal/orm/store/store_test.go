package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore exercises the behavior every backend shares
func testStore(t *testing.T, st Store) {
	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		require.NoError(t, st.Insert(ctx, "people", "b", []byte(`{"name":"Bob"}`)))
		require.NoError(t, st.Insert(ctx, "people", "a", []byte(`{"name":"Ada"}`)))

		body, err := st.Get(ctx, "people", "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada"}`, string(body))
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := st.Insert(ctx, "people", "a", []byte(`{"name":"Again"}`))
		assert.True(t, IsDuplicateID(err), "got %v", err)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := st.Get(ctx, "people", "zzz")
		assert.True(t, IsNotFound(err), "got %v", err)
	})

	t.Run("list ordered by id", func(t *testing.T) {
		bodies, err := st.List(ctx, "people")
		require.NoError(t, err)
		require.Len(t, bodies, 2)
		assert.JSONEq(t, `{"name":"Ada"}`, string(bodies[0]))
		assert.JSONEq(t, `{"name":"Bob"}`, string(bodies[1]))

		empty, err := st.List(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("replace", func(t *testing.T) {
		require.NoError(t, st.Replace(ctx, "people", "a", []byte(`{"name":"Ada L"}`)))
		body, err := st.Get(ctx, "people", "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada L"}`, string(body))

		err = st.Replace(ctx, "people", "zzz", []byte(`{}`))
		assert.True(t, IsNotFound(err), "got %v", err)
	})

	t.Run("collections", func(t *testing.T) {
		require.NoError(t, st.Insert(ctx, "pets", "rex", []byte(`{"name":"Rex"}`)))
		names, err := st.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"people", "pets"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, st.Delete(ctx, "pets", "rex"))
		_, err := st.Get(ctx, "pets", "rex")
		assert.True(t, IsNotFound(err))

		err = st.Delete(ctx, "pets", "rex")
		assert.True(t, IsNotFound(err), "got %v", err)

		names, err := st.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"people"}, names)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, st.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	testStore(t, st)

	require.NoError(t, st.Close())
	assert.ErrorIs(t, st.Ping(context.Background()), ErrClosed)
	assert.ErrorIs(t, st.Insert(context.Background(), "people", "x", []byte(`{}`)), ErrClosed)
}

func TestMemoryStoreCopiesBodies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	body := []byte(`{"n":1}`)
	require.NoError(t, st.Insert(ctx, "c", "1", body))
	body[5] = '2'

	got, err := st.Get(ctx, "c", "1")
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(got))
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := NewRedisStoreFromClient(client, "test:")
	t.Cleanup(func() { st.Close() })
	return st, mr
}

func TestRedisStore(t *testing.T) {
	st, mr := setupRedisStore(t)
	testStore(t, st)

	assert.True(t, mr.Exists("test:docs:people"))
	assert.False(t, mr.Exists("test:docs:pets"))

	members, err := mr.Members("test:collections")
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, members)
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	st := NewRedisStore(DefaultRedisConfig(mr.Addr()))
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Ping(ctx))
	require.NoError(t, st.Insert(ctx, "people", "a", []byte(`{}`)))
	assert.True(t, mr.Exists("odm:docs:people"))
}

func TestSQLStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")

	st, err := Open(context.Background(), "sqlite://"+path, DefaultOpenOptions())
	require.NoError(t, err)
	defer st.Close()

	sqlStore, ok := st.(*SQLStore)
	require.True(t, ok)
	assert.Equal(t, SQLite, sqlStore.Dialect())

	testStore(t, st)
}

func TestSQLStoreSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "docs.db")

	st, err := Open(ctx, url, DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, st.Insert(ctx, "people", "a", []byte(`{"name":"Ada"}`)))
	require.NoError(t, st.Close())

	st, err = Open(ctx, url, DefaultOpenOptions())
	require.NoError(t, err)
	defer st.Close()

	body, err := st.Get(ctx, "people", "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(body))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		st, err := Open(ctx, "memory://", DefaultOpenOptions())
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, st)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		st, err := Open(ctx, "redis://"+mr.Addr()+"/0", DefaultOpenOptions())
		require.NoError(t, err)
		defer st.Close()
		assert.IsType(t, &RedisStore{}, st)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := Open(ctx, "redis://"+addr+"/0", DefaultOpenOptions())
		assert.Error(t, err)
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(ctx, "sqlite://", DefaultOpenOptions())
		assert.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := Open(ctx, "mongodb://localhost/db", DefaultOpenOptions())
		assert.ErrorIs(t, err, ErrUnsupportedScheme)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := Open(ctx, "://bad", DefaultOpenOptions())
		assert.Error(t, err)
	})
}
