package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
)

// RemoveKeyValueAt tombstones the key/value blob at logical leaf position
// pos, accounts the reclaimed bytes into deadSpace, and closes the
// resulting hole in the offset array.
func (n *Node[K, V]) RemoveKeyValueAt(cursor *page.Cursor, pos, keyCount int) {
	n.placeCursorAtActualKey(cursor, pos, Leaf)
	keyOffset := cursor.Offset()
	keySize := dynsize.ReadKeySize(cursor)
	valueSize := dynsize.ReadValueSize(cursor)
	cursor.SetOffset(keyOffset)
	dynsize.PutTombstone(cursor)

	deadSpace := n.DeadSpace(cursor)
	n.setDeadSpace(cursor, deadSpace+keySize+valueSize+dynsize.SizeWordBytes+dynsize.SizeWordBytes)

	removeSlotAt(cursor, pos, keyCount, n.keyPosOffsetLeaf(0), dynsize.OffsetWordBytes)
}

// RemoveKeyAndRightChildAt tombstones the key blob at internal key
// position keyPos and shifts out the slot holding that key plus its right
// child.
func (n *Node[K, V]) RemoveKeyAndRightChildAt(cursor *page.Cursor, keyPos, keyCount int) {
	n.placeCursorAtActualKey(cursor, keyPos, Internal)
	dynsize.PutTombstone(cursor)

	removeSlotAt(cursor, keyPos, keyCount, n.keyPosOffsetInternal(0), n.keyChildSize())
}

// RemoveKeyAndLeftChildAt tombstones the key blob at internal key position
// keyPos and shifts out the slot holding that key plus its left child,
// then relocates the trailing rightmost child pointer into the vacated
// last slot.
func (n *Node[K, V]) RemoveKeyAndLeftChildAt(cursor *page.Cursor, keyPos, keyCount int) {
	n.placeCursorAtActualKey(cursor, keyPos, Internal)
	dynsize.PutTombstone(cursor)

	removeSlotAt(cursor, keyPos, keyCount, n.keyPosOffsetInternal(0)-n.childWidth, n.keyChildSize())

	cursor.CopyTo(n.childOffset(keyCount), cursor, n.childOffset(keyCount-1), n.childWidth)
}
