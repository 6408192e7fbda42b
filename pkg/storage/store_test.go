package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynpage/pkg/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	db := storage.NewStore(filepath.Join(t.TempDir(), "data.db"), 4096)
	require.NoError(t, db.Open())
	t.Cleanup(db.Close)
	return db
}

func TestOpenEmptyFile(t *testing.T) {
	db := openTestStore(t)
	assert.Equal(t, uint64(0), db.Root())
}

func TestAllocAndCommitPersistsRoot(t *testing.T) {
	db := openTestStore(t)

	ptr, cursor := db.Alloc()
	cursor.WriteBytes([]byte("hello"))
	db.SetRoot(ptr)

	require.NoError(t, db.Commit())
	assert.Equal(t, ptr, db.Root())

	got := db.ReadCursor(ptr)
	buf := make([]byte, 5)
	got.ReadBytes(buf, 5)
	assert.Equal(t, "hello", string(buf))
}

func TestReopenPreservesCommittedState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.db")

	db := storage.NewStore(path, 4096)
	require.NoError(t, db.Open())

	ptr, cursor := db.Alloc()
	cursor.WriteBytes([]byte("persisted"))
	db.SetRoot(ptr)
	require.NoError(t, db.Commit())
	db.Close()

	db2 := storage.NewStore(path, 4096)
	require.NoError(t, db2.Open())
	defer db2.Close()

	assert.Equal(t, ptr, db2.Root())
	got := db2.ReadCursor(ptr)
	buf := make([]byte, 9)
	got.ReadBytes(buf, 9)
	assert.Equal(t, "persisted", string(buf))
}

func TestFreeAndReallocReusesPage(t *testing.T) {
	db := openTestStore(t)

	ptr, cursor := db.Alloc()
	cursor.WriteBytes([]byte("stale"))
	db.SetRoot(ptr)
	require.NoError(t, db.Commit())

	db.Free(ptr)
	require.NoError(t, db.Commit())

	newPtr, newCursor := db.Alloc()
	newCursor.WriteBytes([]byte("fresh"))
	db.SetRoot(newPtr)
	require.NoError(t, db.Commit())

	assert.Equal(t, ptr, newPtr, "freed page should be recycled by the next allocation")
	got := db.ReadCursor(newPtr)
	buf := make([]byte, 5)
	got.ReadBytes(buf, 5)
	assert.Equal(t, "fresh", string(buf))
}

func TestUnstableGenerationAdvancesPerCommit(t *testing.T) {
	db := openTestStore(t)
	g0 := db.UnstableGeneration()

	ptr, _ := db.Alloc()
	db.SetRoot(ptr)
	require.NoError(t, db.Commit())

	assert.Greater(t, db.UnstableGeneration(), g0)
	assert.Equal(t, db.UnstableGeneration(), db.StableGeneration())
}
