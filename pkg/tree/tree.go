// Package tree implements root-to-leaf navigation, split propagation, and
// range iteration on top of the dynamic-size node layout engine
// (pkg/node). The node engine itself is comparison-agnostic — this
// package supplies the key ordering and the page-cache wiring that sit
// outside the node layout engine's scope.
//
// Grounded on a fixed-size B+tree's root-to-leaf walk and
// split-propagation idiom, generalized to the generic Layout[K,V]
// capability and to variable-length dynamic-size entries.
package tree

import (
	"fmt"

	"go.uber.org/zap"

	"dynpage/pkg/layout"
	"dynpage/pkg/node"
	"dynpage/pkg/page"
)

// PageStore is the paged-buffer subsystem pkg/tree is built on top of —
// satisfied by pkg/storage.Store.
type PageStore interface {
	PageSize() int
	Alloc() (uint64, *page.Cursor)
	Free(ptr uint64)
	NewCursor(ptr uint64) *page.Cursor
	ReadCursor(ptr uint64) *page.Cursor
	Root() uint64
	SetRoot(uint64)
	StableGeneration() uint64
	UnstableGeneration() uint64
	Commit() error
}

// Comparer orders two keys the way bytes.Compare does: negative, zero, or
// positive as a is less than, equal to, or greater than b.
type Comparer[K any] func(a, b K) int

// Tree is the generic root-to-leaf B+tree built on pkg/node's dynamic-size
// layout engine.
type Tree[K, V any] struct {
	store  PageStore
	node   *node.Node[K, V]
	layout layout.Layout[K, V]
	cmp    Comparer[K]
	logger *zap.Logger
}

// New constructs a Tree over store using l as the key/value codec and cmp
// as the key ordering. logger may be nil, in which case a no-op logger is
// used.
func New[K, V any](store PageStore, l layout.Layout[K, V], cmp Comparer[K], logger *zap.Logger) (*Tree[K, V], error) {
	n, err := node.NewNode[K, V](store.PageSize(), l)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tree[K, V]{store: store, node: n, layout: l, cmp: cmp, logger: logger}, nil
}

// pathStep records one level visited while descending from the root: the
// page pointer, a cursor over it, its key count at the time of descent,
// and the child index used to continue downward. At the leaf, childIdx is
// instead the position of the last key <= the target, or -1 if none.
type pathStep struct {
	ptr      uint64
	cursor   *page.Cursor
	keyCount int
	childIdx int
}

// lookupLE returns the largest logical position whose key is <= key, or
// -1 if every key exceeds it.
func (t *Tree[K, V]) lookupLE(cursor *page.Cursor, keyCount int, key K, nt node.Type) (int, error) {
	lo, hi, idx := 0, keyCount-1, -1
	for lo <= hi {
		mid := (lo + hi) / 2
		midKey := t.node.KeyAt(cursor, mid, nt)
		if err := cursor.CheckCursorException(); err != nil {
			return 0, checkCorrupt(err)
		}
		if t.cmp(midKey, key) <= 0 {
			idx = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return idx, nil
}

// descend walks from the root to the leaf that would contain key,
// recording every level visited. An empty tree yields a nil path.
// forWrite selects NewCursor (dirty, for Insert/Delete) over ReadCursor
// (read-only, for Get/Seek) when opening each page on the path.
func (t *Tree[K, V]) descend(key K, forWrite bool) ([]pathStep, error) {
	ptr := t.store.Root()
	if ptr == 0 {
		return nil, nil
	}
	var path []pathStep
	for {
		var cursor *page.Cursor
		if forWrite {
			cursor = t.store.NewCursor(ptr)
		} else {
			cursor = t.store.ReadCursor(ptr)
		}
		nt := t.node.NodeType(cursor)
		keyCount := t.node.KeyCount(cursor)
		if !t.node.ReasonableKeyCount(keyCount) {
			return nil, checkCorrupt(fmt.Errorf("page %d: implausible key count %d", ptr, keyCount))
		}

		idx, err := t.lookupLE(cursor, keyCount, key, nt)
		if err != nil {
			return nil, err
		}

		if nt == node.Leaf {
			path = append(path, pathStep{ptr: ptr, cursor: cursor, keyCount: keyCount, childIdx: idx})
			return path, nil
		}

		childIdx := idx + 1
		path = append(path, pathStep{ptr: ptr, cursor: cursor, keyCount: keyCount, childIdx: childIdx})
		ptr = t.node.ChildAt(cursor, childIdx, t.store.StableGeneration(), t.store.UnstableGeneration())
		if err := cursor.CheckCursorException(); err != nil {
			return nil, checkCorrupt(err)
		}
	}
}

// Get looks up key, returning ErrNotFound if absent.
func (t *Tree[K, V]) Get(key K) (V, error) {
	var zero V
	path, err := t.descend(key, false)
	if err != nil {
		return zero, err
	}
	if path == nil {
		return zero, ErrNotFound
	}
	leaf := path[len(path)-1]
	if leaf.childIdx < 0 {
		return zero, ErrNotFound
	}
	foundKey := t.node.KeyAt(leaf.cursor, leaf.childIdx, node.Leaf)
	if err := leaf.cursor.CheckCursorException(); err != nil {
		return zero, checkCorrupt(err)
	}
	if t.cmp(foundKey, key) != 0 {
		return zero, ErrNotFound
	}
	value := t.node.ValueAt(leaf.cursor, leaf.childIdx)
	if err := leaf.cursor.CheckCursorException(); err != nil {
		return zero, checkCorrupt(err)
	}
	return value, nil
}
