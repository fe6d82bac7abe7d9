package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("session:a", []byte("hello"), 0))

	got, err := s.Get("session:a")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, s.Delete("session:a"))
	_, err = s.Get("session:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpires(t *testing.T) {
	s := openTestStore(t)

	// Badger TTLs have one-second resolution.
	require.NoError(t, s.Set("session:short", []byte("x"), time.Second))
	time.Sleep(2100 * time.Millisecond)

	_, err := s.Get("session:short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeysByPrefix(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("session:1", []byte("a"), 0))
	require.NoError(t, s.Set("session:2", []byte("b"), 0))
	require.NoError(t, s.Set("quota:snapshot", []byte("c"), 0))

	keys, err := s.Keys("session:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:1", "session:2"}, keys)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
