package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/cache"
)

func TestFingerprint_DeterministicAndKeySensitive(t *testing.T) {
	a := cache.Fingerprint("id(Int32)", 1)
	b := cache.Fingerprint("id(Int32)", 1)
	assert.Equal(t, a, b, "the same key and schema version must fingerprint identically")

	c := cache.Fingerprint("id(Int64)", 1)
	assert.NotEqual(t, a, c, "a different specialize.Key must fingerprint differently")

	d := cache.Fingerprint("id(Int32)", 2)
	assert.NotEqual(t, a, d, "a schema version bump must invalidate the old fingerprint")
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := cache.Open(path)
	require.NoError(t, err)
	defer store.Close()

	fp := cache.Fingerprint("id(Int32)", 1)

	_, ok, err := store.Get(fp)
	require.NoError(t, err)
	assert.False(t, ok, "a fresh store must not already have an entry for this fingerprint")

	require.NoError(t, store.Put(fp, []byte("payload-v1")))

	got, ok, err := store.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("payload-v1"), got)
}

func TestStore_PutOverwritesExistingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := cache.Open(path)
	require.NoError(t, err)
	defer store.Close()

	fp := cache.Fingerprint("id(Int32)", 1)
	require.NoError(t, store.Put(fp, []byte("first")))
	require.NoError(t, store.Put(fp, []byte("second")))

	got, ok, err := store.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestOpen_PersistsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	fp := cache.Fingerprint("id(Int32)", 1)

	store, err := cache.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(fp, []byte("durable")))
	require.NoError(t, store.Close())

	reopened, err := cache.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("durable"), got)
}
