package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
)

// recordDeadAndAlive walks the heap once, from allocOffset to the page end,
// classifying each blob's start offset as dead (tombstoned) or alive. Both
// stacks are pushed in ascending (low-to-high) heap order, so their tops
// hold the highest unconsumed offset of each kind.
func (n *Node[K, V]) recordDeadAndAlive(cursor *page.Cursor, dead, alive *offsetStack) {
	currentOffset := n.AllocOffset(cursor)
	for currentOffset < n.pageSize {
		cursor.SetOffset(currentOffset)
		rawKeySize := dynsize.ReadKeySize(cursor)
		valueSize := dynsize.ReadValueSize(cursor)
		isDead := dynsize.HasTombstone(rawKeySize)
		keySize := dynsize.StripTombstone(rawKeySize)

		if isDead {
			dead.push(currentOffset)
		} else {
			alive.push(currentOffset)
		}
		currentOffset += keySize + valueSize + dynsize.SizeWordBytes + dynsize.SizeWordBytes
	}
}

// DefragmentLeaf compacts a leaf's heap, reclaiming all tombstoned space by
// sliding live blobs upward toward the page tail, rewrites the offset
// array to point at the new locations, and resets deadSpace to zero.
func (n *Node[K, V]) DefragmentLeaf(cursor *page.Cursor) {
	var dead, alive offsetStack
	n.recordDeadAndAlive(cursor, &dead, &alive)

	maxKeyCount := n.pageSize / (dynsize.SizeWordBytes + dynsize.OffsetWordBytes + dynsize.SizeWordBytes)
	oldOffset := make([]int, maxKeyCount)
	newOffset := make([]int, maxKeyCount)
	oldCursor := 0
	newCursor := 0

	aliveRangeOffset := n.pageSize
	var deadRangeOffset int

	// Rightmost alive blobs already sit flush against the page tail and
	// need no move.
	for dead.peek() < alive.peek() {
		aliveRangeOffset = alive.poll()
	}

	for !alive.empty() {
		// Locate next run of dead space.
		deadRangeOffset = aliveRangeOffset
		for alive.peek() < dead.peek() {
			deadRangeOffset = dead.poll()
		}

		// Locate the run of live blobs below that gap.
		moveOffset := deadRangeOffset
		for dead.peek() < alive.peek() {
			moveKey := alive.poll()
			oldOffset[oldCursor] = moveKey
			oldCursor++
			moveOffset = moveKey
		}

		deadRangeSize := aliveRangeOffset - deadRangeOffset
		for oldCursor > newCursor {
			newOffset[newCursor] = oldOffset[newCursor] + deadRangeSize
			newCursor++
		}

		// Slide the run upward by deadRangeSize bytes at a time.
		for moveOffset < deadRangeOffset-deadRangeSize {
			deadRangeOffset -= deadRangeSize
			aliveRangeOffset -= deadRangeSize
			cursor.CopyTo(deadRangeOffset, cursor, aliveRangeOffset, deadRangeSize)
		}
		// Slide the residual piece in one final move.
		lastBlockSize := deadRangeOffset - moveOffset
		deadRangeOffset -= lastBlockSize
		aliveRangeOffset -= lastBlockSize
		cursor.CopyTo(deadRangeOffset, cursor, aliveRangeOffset, lastBlockSize)
	}

	n.setAllocOffset(cursor, aliveRangeOffset)

	keyCount := n.KeyCount(cursor)
	for pos := 0; pos < keyCount; pos++ {
		slotOffset := n.keyPosOffsetLeaf(pos)
		cursor.SetOffset(slotOffset)
		keyOffset := dynsize.ReadKeyOffset(cursor)
		for i := 0; i < oldCursor; i++ {
			if keyOffset == oldOffset[i] {
				cursor.SetOffset(slotOffset)
				dynsize.PutKeyOffset(cursor, newOffset[i])
				break
			}
		}
	}

	n.setDeadSpace(cursor, 0)
}
