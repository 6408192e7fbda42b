package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/gsp"
	"dynpage/pkg/page"
)

// insertSlotAt opens a hole of one slot (slotSize bytes) at logical
// position pos by shifting slots [pos, keyCount) one slot to the right.
// baseOffset is the byte offset of slot 0.
func insertSlotAt(cursor *page.Cursor, pos, keyCount, baseOffset, slotSize int) {
	if keyCount <= pos {
		return
	}
	length := (keyCount - pos) * slotSize
	cursor.CopyTo(baseOffset+pos*slotSize, cursor, baseOffset+(pos+1)*slotSize, length)
}

// removeSlotAt closes the hole left by logical position pos, shifting
// slots [pos+1, keyCount) one slot to the left.
func removeSlotAt(cursor *page.Cursor, pos, keyCount, baseOffset, slotSize int) {
	if keyCount-1 <= pos {
		return
	}
	length := (keyCount - 1 - pos) * slotSize
	cursor.CopyTo(baseOffset+(pos+1)*slotSize, cursor, baseOffset+pos*slotSize, length)
}

// InsertKeyValueAt writes a new key/value blob at the heap tail (just
// below the current allocOffset) and opens a slot for it in the leaf
// offset array at logical position pos.
func (n *Node[K, V]) InsertKeyValueAt(cursor *page.Cursor, key K, value V, pos, keyCount int) {
	currentOffset := n.AllocOffset(cursor)
	keySize := n.layout.KeySize(key)
	valueSize := n.layout.ValueSize(value)
	newOffset := currentOffset - dynsize.SizeWordBytes - dynsize.SizeWordBytes - keySize - valueSize

	cursor.SetOffset(newOffset)
	dynsize.PutKeySize(cursor, keySize)
	dynsize.PutValueSize(cursor, valueSize)
	n.layout.WriteKey(cursor, key)
	n.layout.WriteValue(cursor, value)

	n.setAllocOffset(cursor, newOffset)

	insertSlotAt(cursor, pos, keyCount, n.keyPosOffsetLeaf(0), dynsize.OffsetWordBytes)
	cursor.SetOffset(n.keyPosOffsetLeaf(pos))
	dynsize.PutKeyOffset(cursor, newOffset)
}

// InsertKeyAndRightChildAt writes a new key blob at the heap tail and
// opens a slot for it, plus its right child pointer, in the internal
// offset-array interleave at logical key position pos.
func (n *Node[K, V]) InsertKeyAndRightChildAt(cursor *page.Cursor, key K, child uint64, pos, keyCount int, unstableGeneration uint64) {
	currentOffset := n.AllocOffset(cursor)
	keySize := n.layout.KeySize(key)
	newOffset := currentOffset - dynsize.SizeWordBytes - keySize

	cursor.SetOffset(newOffset)
	dynsize.PutKeySize(cursor, keySize)
	n.layout.WriteKey(cursor, key)

	n.setAllocOffset(cursor, newOffset)

	insertSlotAt(cursor, pos, keyCount, n.keyPosOffsetInternal(0), n.keyChildSize())
	cursor.SetOffset(n.keyPosOffsetInternal(pos))
	dynsize.PutKeyOffset(cursor, newOffset)
	gsp.WriteChild(cursor, child, unstableGeneration)
}
