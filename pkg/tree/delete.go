package tree

import (
	"go.uber.org/zap"

	"dynpage/pkg/node"
)

// Delete removes key, returning ErrNotFound if it is absent.
//
// Deletion only tombstones the entry via node.RemoveKeyValueAt — it never
// merges or rebalances siblings, since node.CanMergeLeaves and
// node.CanRebalanceLeaves are unsupported by the dynamic-size layout. A
// tree that deletes heavily will carry
// sparser, sometimes underflowing leaves rather than shrinking back down;
// LeafUnderflow is only used to log the condition (see DESIGN.md).
func (t *Tree[K, V]) Delete(key K) error {
	path, err := t.descend(key, true)
	if err != nil {
		return err
	}
	if path == nil {
		return ErrNotFound
	}

	leaf := path[len(path)-1]
	if leaf.childIdx < 0 {
		return ErrNotFound
	}
	foundKey := t.node.KeyAt(leaf.cursor, leaf.childIdx, node.Leaf)
	if err := cursorErr(leaf.cursor); err != nil {
		return err
	}
	if t.cmp(foundKey, key) != 0 {
		return ErrNotFound
	}

	t.node.RemoveKeyValueAt(leaf.cursor, leaf.childIdx, leaf.keyCount)
	t.node.SetKeyCount(leaf.cursor, leaf.keyCount-1)
	if err := cursorErr(leaf.cursor); err != nil {
		return err
	}

	if t.node.LeafUnderflow(leaf.cursor, leaf.keyCount-1) {
		t.logger.Debug("leaf underflow after delete; no rebalance performed",
			zap.Uint64("ptr", leaf.ptr), zap.Int("keyCount", leaf.keyCount-1))
	}

	return t.store.Commit()
}
