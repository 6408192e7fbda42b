package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
)

// byte positions within the base header.
const (
	bytePosNodeType = 0
	bytePosKeyCount = 2
)

// NodeType reads the base-header node-type field.
func (n *Node[K, V]) NodeType(cursor *page.Cursor) Type {
	cursor.SetOffset(bytePosNodeType)
	if cursor.GetUint16() == uint16(Internal) {
		return Internal
	}
	return Leaf
}

// SetNodeType writes the base-header node-type field.
func (n *Node[K, V]) SetNodeType(cursor *page.Cursor, t Type) {
	cursor.SetOffset(bytePosNodeType)
	cursor.PutUint16(uint16(t))
}

// KeyCount reads the base-header key-count field.
func (n *Node[K, V]) KeyCount(cursor *page.Cursor) int {
	cursor.SetOffset(bytePosKeyCount)
	return int(cursor.GetUint16())
}

// SetKeyCount writes the base-header key-count field.
func (n *Node[K, V]) SetKeyCount(cursor *page.Cursor, keyCount int) {
	cursor.SetOffset(bytePosKeyCount)
	cursor.PutUint16(uint16(keyCount))
}

func (n *Node[K, V]) setAllocOffset(cursor *page.Cursor, allocOffset int) {
	cursor.SetOffset(bytePosAllocOffset)
	dynsize.PutKeyOffset(cursor, allocOffset)
}

// AllocOffset reads the smallest byte offset at which a live-or-dead entry
// blob has been written.
func (n *Node[K, V]) AllocOffset(cursor *page.Cursor) int {
	cursor.SetOffset(bytePosAllocOffset)
	return dynsize.ReadKeyOffset(cursor)
}

func (n *Node[K, V]) setDeadSpace(cursor *page.Cursor, deadSpace int) {
	cursor.SetOffset(bytePosDeadSpace)
	dynsize.PutKeySize(cursor, deadSpace)
}

// DeadSpace reads the total bytes belonging to tombstoned entries still
// present in the heap. Checks that the tombstone bit is clear, as an
// invariant witness — deadSpace itself is never tombstoned; a set bit is
// recorded as a cursor exception and stripped from the returned value.
func (n *Node[K, V]) DeadSpace(cursor *page.Cursor) int {
	cursor.SetOffset(bytePosDeadSpace)
	raw := dynsize.ReadKeySize(cursor)
	assertNonNegative(raw, "node: deadSpace must not be negative")
	if dynsize.HasTombstone(raw) {
		cursor.SetCursorException(errUnexpectedTombstoneInDeadSpace)
		return dynsize.StripTombstone(raw)
	}
	return raw
}

func (n *Node[K, V]) getAllocSpace(cursor *page.Cursor, keyCount int, t Type) int {
	allocOffset := n.AllocOffset(cursor)
	endOfOffsetArray := n.keyPosOffset(keyCount, t)
	return allocOffset - endOfOffsetArray
}
