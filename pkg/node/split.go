package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
	"dynpage/pkg/structprop"
)

// middle finds the logical position that most evenly halves the used
// space of leftCursor once newKey/newValue is accounted for at insertPos.
func (n *Node[K, V]) middle(leftCursor *page.Cursor, insertPos int, newKey K, newValue V) int {
	half := n.halfSpace()
	middlePos := 0
	currentPos := 0
	middleSpace := 0
	currentDelta := half
	includedNew := false

	for {
		middlePos++
		currentPos++
		var space int
		if currentPos == insertPos && !includedNew {
			space = n.totalSpaceOfKeyValue(newKey, newValue)
			includedNew = true
			currentPos--
		} else {
			space = n.totalSpaceOfKeyValueAt(leftCursor, currentPos)
		}
		middleSpace += space
		prevDelta := currentDelta
		currentDelta = abs(middleSpace - half)
		if currentDelta >= prevDelta {
			break
		}
	}
	middlePos--
	return middlePos
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// transferRawKeyValue copies the raw blob (size words + key/value bytes) at
// logical position fromPos in fromCursor to just below rightAllocOffset in
// toCursor, tombstones the source blob, and returns the new alloc offset
// in toCursor.
func (n *Node[K, V]) transferRawKeyValue(fromCursor *page.Cursor, fromPos int, toCursor *page.Cursor, rightAllocOffset int) int {
	n.placeCursorAtActualKey(fromCursor, fromPos, Leaf)
	fromKeyOffset := fromCursor.Offset()
	keySize := dynsize.ReadKeySize(fromCursor)
	valueSize := dynsize.ReadValueSize(fromCursor)

	toCopy := dynsize.SizeWordBytes + dynsize.SizeWordBytes + keySize + valueSize
	newRightAllocOffset := rightAllocOffset - toCopy
	fromCursor.CopyTo(fromKeyOffset, toCursor, newRightAllocOffset, toCopy)

	fromCursor.SetOffset(fromKeyOffset)
	dynsize.PutTombstone(fromCursor)
	return newRightAllocOffset
}

// moveKeysAndValues transfers count entries starting at logical position
// fromPos in fromCursor into toCursor starting at logical position toPos,
// appending them to toCursor's offset array and advancing its allocOffset.
func (n *Node[K, V]) moveKeysAndValues(fromCursor *page.Cursor, fromPos int, toCursor *page.Cursor, toPos, count int) {
	rightAllocOffset := n.AllocOffset(toCursor)
	for i := 0; i < count; i++ {
		rightAllocOffset = n.transferRawKeyValue(fromCursor, fromPos+i, toCursor, rightAllocOffset)
		toCursor.SetOffset(n.keyPosOffsetLeaf(toPos))
		dynsize.PutKeyOffset(toCursor, rightAllocOffset)
		toPos++
	}
	n.setAllocOffset(toCursor, rightAllocOffset)
}

// DoSplitLeaf splits a leaf that cannot accommodate newKey/newValue at
// insertPos into leftCursor (leftKeyCount entries) and an initially-empty
// rightCursor, choosing the split point that most evenly halves used
// space rather than entry count, and writes the key to propagate upward
// into propagation.
func (n *Node[K, V]) DoSplitLeaf(leftCursor *page.Cursor, leftKeyCount int, rightCursor *page.Cursor, insertPos int, newKey K, newValue V, propagation *structprop.StructurePropagation[K]) {
	middlePos := n.middle(leftCursor, insertPos, newKey, newValue)
	keyCountAfterInsert := leftKeyCount + 1

	if middlePos == insertPos {
		propagation.RightKey = n.layout.CopyKey(newKey)
	} else {
		pos := middlePos
		if insertPos < middlePos {
			pos = middlePos - 1
		}
		propagation.RightKey = n.KeyAt(leftCursor, pos, Leaf)
	}
	propagation.HasRightKeyInsert = true
	rightKeyCount := keyCountAfterInsert - middlePos

	if insertPos < middlePos {
		// before: _,_,_,_,_,_,_,_,_,_      middle ^
		// insert: _,_,_,X,_,_,_,_,_,_,_
		n.moveKeysAndValues(leftCursor, middlePos-1, rightCursor, 0, rightKeyCount)
		n.DefragmentLeaf(leftCursor)
		n.InsertKeyValueAt(leftCursor, newKey, newValue, insertPos, middlePos-1)
	} else {
		// before: _,_,_,_,_,_,_,_,_,_      middle ^
		// insert: _,_,_,_,_,_,_,_,X,_,_
		newInsertPos := insertPos - middlePos
		keysToMove := leftKeyCount - middlePos
		n.moveKeysAndValues(leftCursor, middlePos, rightCursor, 0, keysToMove)
		n.DefragmentLeaf(leftCursor)
		n.InsertKeyValueAt(rightCursor, newKey, newValue, newInsertPos, keysToMove)
	}

	n.SetKeyCount(leftCursor, middlePos)
	n.SetKeyCount(rightCursor, rightKeyCount)
}
