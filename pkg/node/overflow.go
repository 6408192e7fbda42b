package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
)

func (n *Node[K, V]) totalSpaceOfKeyValue(key K, value V) int {
	return dynsize.OffsetWordBytes + dynsize.SizeWordBytes + dynsize.SizeWordBytes + n.layout.KeySize(key) + n.layout.ValueSize(value)
}

func (n *Node[K, V]) totalSpaceOfKeyValueAt(cursor *page.Cursor, pos int) int {
	n.placeCursorAtActualKey(cursor, pos, Leaf)
	keySize := dynsize.ReadKeySize(cursor)
	valueSize := dynsize.ReadValueSize(cursor)
	return dynsize.OffsetWordBytes + dynsize.SizeWordBytes + dynsize.SizeWordBytes + keySize + valueSize
}

func (n *Node[K, V]) totalSpaceOfKeyChild(key K) int {
	return dynsize.OffsetWordBytes + dynsize.SizeWordBytes + n.childWidth + n.layout.KeySize(key)
}

// LeafOverflow is the fit-test classification for inserting newKey/newValue
// into a leaf currently holding keyCount entries.
func (n *Node[K, V]) LeafOverflow(cursor *page.Cursor, keyCount int, newKey K, newValue V) Overflow {
	deadSpace := n.DeadSpace(cursor)
	allocSpace := n.getAllocSpace(cursor, keyCount, Leaf)
	needed := n.totalSpaceOfKeyValue(newKey, newValue)

	switch {
	case needed < allocSpace:
		return NO
	case needed < allocSpace+deadSpace:
		return NeedDefrag
	default:
		return Yes
	}
}

// InternalOverflow reports whether inserting newKey into an internal node
// currently holding currentKeyCount keys would not fit in the available
// alloc space. Internal nodes do not track dead space in this layout.
func (n *Node[K, V]) InternalOverflow(cursor *page.Cursor, currentKeyCount int, newKey K) bool {
	allocSpace := n.getAllocSpace(cursor, currentKeyCount, Internal)
	needed := n.totalSpaceOfKeyChild(newKey)
	return needed > allocSpace
}

// LeafUnderflow reports whether a leaf holding keyCount entries is less
// than half full, i.e. available space (alloc gap plus dead space)
// exceeds half the node's total usable space.
func (n *Node[K, V]) LeafUnderflow(cursor *page.Cursor, keyCount int) bool {
	allocSpace := n.getAllocSpace(cursor, keyCount, Leaf)
	deadSpace := n.DeadSpace(cursor)
	available := allocSpace + deadSpace
	return available > n.halfSpace()
}
