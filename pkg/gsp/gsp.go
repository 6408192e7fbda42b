// Package gsp implements the cross-page, generation-safe child-pointer
// codec the dynamic-size node layout relies on for crash-tolerant internal
// links. The node engine itself treats this purely as an external
// collaborator: it only calls ReadChild/WriteChild at a
// cursor position and reacts to a cursor exception on mismatch.
//
// Grounded on a free list's head/tail generation-sequence bookkeeping
// (headSeq/tailSeq, maxVer/curVer), which supplies the stable/unstable
// generation pair consumed here, and on cespare/xxhash/v2 for the slot
// checksum, the same hash used for page/slot checksums elsewhere in the
// ecosystem (e.g. HashPageID-style page identity hashing).
package gsp

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"dynpage/pkg/page"
)

// SlotBytes is the on-page width of one generation-safe pointer slot:
// 4 bytes generation + 8 bytes page pointer + 4 bytes checksum.
const SlotBytes = 16

// WriteChild writes a generation-stamped, checksummed pointer slot at the
// cursor's current offset. unstableGeneration is the generation this write
// belongs to.
func WriteChild(cursor *page.Cursor, child uint64, unstableGeneration uint64) {
	off := cursor.Offset()
	gen := uint32(unstableGeneration)

	cursor.SetOffset(off)
	cursor.PutUint32(gen)
	cursor.SetOffset(off + 4)
	cursor.PutUint64(child)
	cursor.SetOffset(off + 12)
	cursor.PutUint32(checksum(gen, child))
}

// ReadChild reads back a pointer slot written by WriteChild, verifying its
// checksum and its generation. On a checksum mismatch, or on a generation
// stamped later than unstableGeneration (a pointer from a write this
// reader should not yet be able to see), it records a cursor exception
// and returns 0. stableGeneration is accepted to mirror the node engine's
// external child-pointer interface (a fuller implementation would use it
// to pick between redundant copies of the pointer written under
// different generations); this codec keeps a single slot.
func ReadChild(cursor *page.Cursor, stableGeneration, unstableGeneration uint64, pos int) uint64 {
	_ = stableGeneration
	off := cursor.Offset()

	cursor.SetOffset(off)
	gen := cursor.GetUint32()
	cursor.SetOffset(off + 4)
	child := cursor.GetUint64()
	cursor.SetOffset(off + 12)
	want := cursor.GetUint32()

	if got := checksum(gen, child); got != want {
		cursor.SetCursorException(fmt.Errorf("gsp: checksum mismatch at pos %d (offset %d): got %x want %x", pos, off, got, want))
		return 0
	}
	if generationAfter(gen, unstableGeneration) {
		cursor.SetCursorException(fmt.Errorf("gsp: pointer at pos %d (offset %d) stamped with generation %d, ahead of unstable generation %d", pos, off, gen, unstableGeneration))
		return 0
	}
	return child
}

// generationAfter reports whether gen is strictly newer than
// unstableGeneration, using wraparound-safe unsigned comparison the same
// way the free list compares sequence numbers against its watermark.
func generationAfter(gen uint32, unstableGeneration uint64) bool {
	return int32(gen-uint32(unstableGeneration)) > 0
}

func checksum(gen uint32, child uint64) uint32 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[:4], gen)
	binary.LittleEndian.PutUint64(buf[4:], child)
	return uint32(xxhash.Sum64(buf[:]))
}
