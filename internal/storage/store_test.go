package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the same contract against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k1", []byte("hello")))
	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)

	require.NoError(t, store.Set(ctx, "k1", []byte("again")))
	val, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("again"), val)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k1"))
}

func TestInMemoryStore(t *testing.T) {
	exerciseStore(t, NewInMemoryStore())
}

func TestInMemoryStore_CopiesValues(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", buf))
	buf[0] = 'x'

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), val)
}

func TestSQLiteStore(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "portal.db")
	store, err := NewSQLiteStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "portal.db")

	first, err := NewSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "tournament_user", []byte(`{"id":7}`)))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	val, err := second.Get(ctx, "tournament_user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(val))
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	store, err := NewRedisStore(context.Background(), url, "portal-test:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exerciseStore(t, store)
}

func TestJSONHelpers(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	type pref struct {
		Theme string `json:"theme"`
	}
	require.NoError(t, SetJSON(ctx, store, "p", pref{Theme: "dark"}))

	var got pref
	require.NoError(t, GetJSON(ctx, store, "p", &got))
	assert.Equal(t, "dark", got.Theme)

	assert.ErrorIs(t, GetJSON(ctx, store, "absent", &got), ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: BackendSQLite, SQLiteDSN: "file:" + filepath.Join(t.TempDir(), "o.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: "floppy"})
	assert.Error(t, err)
}
