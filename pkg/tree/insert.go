package tree

import (
	"dynpage/pkg/node"
	"dynpage/pkg/page"
	"dynpage/pkg/structprop"
)

func cursorErr(cursor *page.Cursor) error {
	return checkCorrupt(cursor.CheckCursorException())
}

// Insert adds or replaces the value stored at key, splitting leaves (and,
// when a split bubbles a key up to the root, growing the tree by one
// level) as needed. It commits the change before returning.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if t.store.Root() == 0 {
		return t.insertFirst(key, value)
	}

	path, err := t.descend(key, true)
	if err != nil {
		return err
	}

	leaf := path[len(path)-1]
	insertPos := leaf.childIdx + 1
	if leaf.childIdx >= 0 {
		existingKey := t.node.KeyAt(leaf.cursor, leaf.childIdx, node.Leaf)
		if err := leaf.cursor.CheckCursorException(); err != nil {
			return checkCorrupt(err)
		}
		if t.cmp(existingKey, key) == 0 {
			if t.node.SetValueAt(leaf.cursor, value, leaf.childIdx) {
				return t.store.Commit()
			}
			// serialized size changed: fall back to remove+insert.
			t.node.RemoveKeyValueAt(leaf.cursor, leaf.childIdx, leaf.keyCount)
			t.node.SetKeyCount(leaf.cursor, leaf.keyCount-1)
			leaf.keyCount--
			insertPos = leaf.childIdx
		}
	}

	rightKey, rightPtr, split, err := t.insertIntoLeaf(leaf.cursor, leaf.keyCount, insertPos, key, value)
	if err != nil {
		return err
	}
	if !split {
		return t.store.Commit()
	}

	var parent *pathStep
	if len(path) > 1 {
		parent = &path[len(path)-2]
	}
	if err := t.propagateSplit(parent, rightKey, rightPtr); err != nil {
		return err
	}
	return t.store.Commit()
}

func (t *Tree[K, V]) insertFirst(key K, value V) error {
	ptr, cursor := t.store.Alloc()
	t.node.WriteAdditionalHeader(cursor)
	t.node.SetNodeType(cursor, node.Leaf)
	t.node.SetKeyCount(cursor, 0)
	t.node.InsertKeyValueAt(cursor, key, value, 0, 0)
	t.node.SetKeyCount(cursor, 1)
	if err := cursor.CheckCursorException(); err != nil {
		return checkCorrupt(err)
	}
	t.store.SetRoot(ptr)
	return t.store.Commit()
}

// insertIntoLeaf inserts key/value at insertPos into cursor (which holds
// keyCount entries), defragmenting first if the fit-test says the space
// is only fragmented, or splitting the leaf if it's genuinely full.
func (t *Tree[K, V]) insertIntoLeaf(cursor *page.Cursor, keyCount, insertPos int, key K, value V) (K, uint64, bool, error) {
	var zero K
	switch t.node.LeafOverflow(cursor, keyCount, key, value) {
	case node.NO:
		t.node.InsertKeyValueAt(cursor, key, value, insertPos, keyCount)
		t.node.SetKeyCount(cursor, keyCount+1)
		return zero, 0, false, cursorErr(cursor)
	case node.NeedDefrag:
		t.node.DefragmentLeaf(cursor)
		t.node.InsertKeyValueAt(cursor, key, value, insertPos, keyCount)
		t.node.SetKeyCount(cursor, keyCount+1)
		return zero, 0, false, cursorErr(cursor)
	default:
		rightPtr, rightCursor := t.store.Alloc()
		t.node.WriteAdditionalHeader(rightCursor)
		t.node.SetNodeType(rightCursor, node.Leaf)
		t.node.SetKeyCount(rightCursor, 0)

		var prop structprop.StructurePropagation[K]
		t.node.DoSplitLeaf(cursor, keyCount, rightCursor, insertPos, key, value, &prop)
		if err := cursorErr(cursor); err != nil {
			return zero, 0, false, err
		}
		if err := cursorErr(rightCursor); err != nil {
			return zero, 0, false, err
		}
		return prop.RightKey, rightPtr, true, nil
	}
}

// propagateSplit inserts (rightKey, rightPtr) into parent, growing the
// tree by one level when parent is nil (the node that split was the
// root). Only one level of propagation is ever attempted: if parent
// itself would overflow, ErrInternalOverflow is returned rather than
// cascading into an unsupported internal split.
func (t *Tree[K, V]) propagateSplit(parent *pathStep, rightKey K, rightPtr uint64) error {
	if parent == nil {
		oldRoot := t.store.Root()
		newRootPtr, newRoot := t.store.Alloc()
		t.node.WriteAdditionalHeader(newRoot)
		t.node.SetNodeType(newRoot, node.Internal)
		t.node.SetKeyCount(newRoot, 0)
		t.node.SetChildAt(newRoot, oldRoot, 0, t.store.UnstableGeneration())
		t.node.InsertKeyAndRightChildAt(newRoot, rightKey, rightPtr, 0, 0, t.store.UnstableGeneration())
		t.node.SetKeyCount(newRoot, 1)
		t.store.SetRoot(newRootPtr)
		return cursorErr(newRoot)
	}

	insertPos := parent.childIdx // the new key separates parent.childIdx's subtree from rightPtr
	if t.node.InternalOverflow(parent.cursor, parent.keyCount, rightKey) {
		return ErrInternalOverflow
	}
	t.node.InsertKeyAndRightChildAt(parent.cursor, rightKey, rightPtr, insertPos, parent.keyCount, t.store.UnstableGeneration())
	t.node.SetKeyCount(parent.cursor, parent.keyCount+1)
	return cursorErr(parent.cursor)
}
