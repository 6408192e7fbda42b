package tree

import "dynpage/pkg/node"

// Iterator walks leaf entries in ascending key order, generalized from a
// fixed-size B+tree's path/pos stack to dynamic-size leaves (no dummy
// sentinel key: position -1 at the leaf level means "before the first
// entry").
type Iterator[K, V any] struct {
	tree *Tree[K, V]
	path []pathStep
}

// Seek returns an iterator positioned at the first entry with a key >=
// key. Call Valid before Key/Value, and Next to advance.
func (t *Tree[K, V]) Seek(key K) (*Iterator[K, V], error) {
	path, err := t.descend(key, false)
	if err != nil {
		return nil, err
	}
	it := &Iterator[K, V]{tree: t, path: path}
	if path == nil {
		return it, nil
	}
	leaf := &path[len(path)-1]
	// descend() leaves childIdx at the last key <= target; advance past an
	// exact match's predecessor gap so Seek lands on >= target.
	foundKey := t.node.KeyAt(leaf.cursor, max(leaf.childIdx, 0), node.Leaf)
	if leaf.childIdx < 0 || t.cmp(foundKey, key) < 0 {
		leaf.childIdx++
	}
	return it, nil
}

// Valid reports whether the iterator is positioned at a real entry.
func (it *Iterator[K, V]) Valid() bool {
	if it.path == nil {
		return false
	}
	leaf := it.path[len(it.path)-1]
	return leaf.childIdx >= 0 && leaf.childIdx < leaf.keyCount
}

// Key and Value return the entry at the iterator's current position.
// Only valid when Valid() is true.
func (it *Iterator[K, V]) Key() K {
	leaf := it.path[len(it.path)-1]
	return it.tree.node.KeyAt(leaf.cursor, leaf.childIdx, node.Leaf)
}

func (it *Iterator[K, V]) Value() V {
	leaf := it.path[len(it.path)-1]
	return it.tree.node.ValueAt(leaf.cursor, leaf.childIdx)
}

// Next advances the iterator to the next entry within the current leaf.
// Crossing a leaf boundary requires re-seeking from the root — this
// implementation does not thread sibling pointers (not part of the
// dynamic-size node layout, which carries no next-leaf pointer), so
// callers that need to scan across a leaf boundary should re-Seek with
// the last key observed.
func (it *Iterator[K, V]) Next() {
	if it.path == nil {
		return
	}
	leaf := &it.path[len(it.path)-1]
	leaf.childIdx++
}
