package tree_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynpage/pkg/layout"
	"dynpage/pkg/storage"
	"dynpage/pkg/tree"
)

const testPageSize = 256

func newTestTree(t *testing.T) *tree.Tree[[]byte, []byte] {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "data.db"), testPageSize)
	require.NoError(t, store.Open())
	t.Cleanup(store.Close)

	tr, err := tree.New[[]byte, []byte](store, layout.NewBytesLayout(), tree.CompareBytes, nil)
	require.NoError(t, err)
	return tr
}

func TestGetOnEmptyTree(t *testing.T) {
	tr := newTestTree(t)
	_, err := tr.Get([]byte("missing"))
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestInsertAndGet(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("hello"), []byte("world")))

	got, err := tr.Get([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)

	_, err = tr.Get([]byte("nope"))
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestInsertOverwritesExistingKey(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("k"), []byte("v1")))
	require.NoError(t, tr.Insert([]byte("k"), []byte("v2")))

	got, err := tr.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestInsertOverwriteWithDifferentSizedValue(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("k"), []byte("short")))
	require.NoError(t, tr.Insert([]byte("k"), []byte("a much longer replacement value")))

	got, err := tr.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a much longer replacement value"), got)
}

func TestInsertManyKeysInOrder(t *testing.T) {
	tr := newTestTree(t)
	const n = 40
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%03d", i))
		val := []byte(fmt.Sprintf("value-%03d", i))
		require.NoError(t, tr.Insert(key, val))
	}
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%03d", i))
		want := []byte(fmt.Sprintf("value-%03d", i))
		got, err := tr.Get(key)
		require.NoErrorf(t, err, "key %s", key)
		assert.Equal(t, want, got)
	}
}

func TestInsertManyKeysOutOfOrder(t *testing.T) {
	tr := newTestTree(t)
	keys := []int{17, 3, 29, 1, 8, 22, 5, 31, 14, 0, 25, 11, 19, 6, 27}
	for _, k := range keys {
		key := []byte(fmt.Sprintf("k%03d", k))
		val := []byte(fmt.Sprintf("v%03d", k))
		require.NoError(t, tr.Insert(key, val))
	}
	for _, k := range keys {
		key := []byte(fmt.Sprintf("k%03d", k))
		want := []byte(fmt.Sprintf("v%03d", k))
		got, err := tr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("a"), []byte("1")))
	require.NoError(t, tr.Insert([]byte("b"), []byte("2")))

	require.NoError(t, tr.Delete([]byte("a")))

	_, err := tr.Get([]byte("a"))
	assert.ErrorIs(t, err, tree.ErrNotFound)

	got, err := tr.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestDeleteMissingKeyReturnsNotFound(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("a"), []byte("1")))
	err := tr.Delete([]byte("z"))
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestSeekAndIterateWithinLeaf(t *testing.T) {
	tr := newTestTree(t)
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tr.Insert([]byte(k), []byte(k+"v")))
	}

	it, err := tr.Seek([]byte("b"))
	require.NoError(t, err)
	require.True(t, it.Valid())
	assert.Equal(t, []byte("b"), it.Key())
	assert.Equal(t, []byte("bv"), it.Value())

	it.Next()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("c"), it.Key())

	it.Next()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("d"), it.Key())

	it.Next()
	assert.False(t, it.Valid())
}

func TestSeekPastEndOfLeafIsInvalid(t *testing.T) {
	tr := newTestTree(t)
	require.NoError(t, tr.Insert([]byte("a"), []byte("1")))

	it, err := tr.Seek([]byte("z"))
	require.NoError(t, err)
	assert.False(t, it.Valid())
}

func TestInsertTriggersLeafSplit(t *testing.T) {
	tr := newTestTree(t)
	// Large values relative to testPageSize force a split well before
	// the leaf could hold many entries.
	const n = 12
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("split-key-%02d", i))
		val := make([]byte, 20)
		for j := range val {
			val[j] = byte('A' + i)
		}
		require.NoError(t, tr.Insert(key, val))
	}
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("split-key-%02d", i))
		got, err := tr.Get(key)
		require.NoErrorf(t, err, "key %s", key)
		require.Len(t, got, 20)
		assert.Equal(t, byte('A'+i), got[0])
	}
}
