// Package node implements the dynamic-size B+tree page layout engine: the
// data placement inside one fixed-size page, free-space accounting, the
// tombstone/defragmentation protocol, and the leaf-split algorithm.
//
// Grounded primarily on Neo4j's TreeNodeDynamicSize node layout and on a
// fixed-size B+tree's offset-array/entry-heap packing idiom (same
// header-then-offsets-then-heap shape, adapted here to variable-length
// entries and a tombstone/defrag protocol a fixed-size layout never
// needs).
package node

import (
	"github.com/pkg/errors"

	"dynpage/internal/util"
	"dynpage/pkg/dynsize"
	"dynpage/pkg/gsp"
	"dynpage/pkg/layout"
	"dynpage/pkg/page"
)

// Type distinguishes a leaf node (holds key+value blobs) from an internal
// node (holds key blobs interleaved with generation-safe child pointers).
type Type int

const (
	Leaf Type = iota
	Internal
)

// Overflow is the fit-test classification returned by LeafOverflow.
type Overflow int

const (
	NO Overflow = iota
	NeedDefrag
	Yes
)

func (o Overflow) String() string {
	switch o {
	case NO:
		return "NO"
	case NeedDefrag:
		return "NEED_DEFRAG"
	case Yes:
		return "YES"
	default:
		return "UNKNOWN"
	}
}

const (
	// baseHeaderBytes is the fixed prefix every node carries regardless of
	// layout: node type (2B) + key count (2B) + reserved padding (4B).
	baseHeaderBytes = 8

	// leastEntriesPerPage is the minimum number of key-value entries a
	// single page must be able to hold; it drives keyValueSizeCap.
	leastEntriesPerPage = 2
	// minimumEntrySizeCap is the smallest acceptable keyValueSizeCap,
	// expressed in bytes but compared against a bit-count constant
	// (64) exactly as the original implementation does.
	minimumEntrySizeCap = 64
)

// byte positions of the dynamic header fields, right after the base header.
const (
	bytePosAllocOffset  = baseHeaderBytes
	bytePosDeadSpace    = baseHeaderBytes + dynsize.OffsetWordBytes
	headerLengthDynamic = baseHeaderBytes + dynsize.OffsetWordBytes + dynsize.SizeWordBytes
)

// totalOverhead is the per-entry bookkeeping cost in the offset array plus
// size words: one offset-array slot, one key-size word, one value-size word.
const totalOverhead = dynsize.OffsetWordBytes + dynsize.SizeWordBytes + dynsize.SizeWordBytes

// ErrMetadataMismatch is returned by NewNode when pageSize is too small to
// host two minimum-size entries per page.
var ErrMetadataMismatch = errors.New("node: page size too small to satisfy keyValueSizeCap")

// ErrUnsupported is returned by the operations this dynamic-size layout
// intentionally leaves unimplemented.
var ErrUnsupported = errors.New("node: operation unsupported by dynamic-size layout")

// Node is the dynamic-size node layout engine, parameterized by the page
// size and the key/value codec it was constructed with.
type Node[K, V any] struct {
	pageSize        int
	layout          layout.Layout[K, V]
	keyValueSizeCap int
	childWidth      int
}

// NewNode constructs the layout engine for a given page size and key/value
// codec. Construction fails with ErrMetadataMismatch when pageSize cannot
// satisfy the key/value size cap formula: totalSpace/2 - totalOverhead
// must be at least minimumEntrySizeCap.
func NewNode[K, V any](pageSize int, l layout.Layout[K, V]) (*Node[K, V], error) {
	total := pageSize - headerLengthDynamic
	capBytes := total/leastEntriesPerPage - totalOverhead
	if capBytes < minimumEntrySizeCap {
		return nil, errors.Wrapf(ErrMetadataMismatch,
			"need to fit at least %d key-value entries per page; cap would be %dB with page size %dB, require >= %dB",
			leastEntriesPerPage, capBytes, pageSize, minimumEntrySizeCap)
	}
	return &Node[K, V]{
		pageSize:        pageSize,
		layout:          l,
		keyValueSizeCap: capBytes,
		childWidth:      gsp.SlotBytes,
	}, nil
}

// PageSize returns the fixed page size this engine was constructed for.
func (n *Node[K, V]) PageSize() int { return n.pageSize }

// KeyValueSizeCap returns the hard per-field cap on serialized key and
// value sizes.
func (n *Node[K, V]) KeyValueSizeCap() int { return n.keyValueSizeCap }

func (n *Node[K, V]) totalSpace() int { return n.pageSize - headerLengthDynamic }
func (n *Node[K, V]) halfSpace() int  { return n.totalSpace() / 2 }

func (n *Node[K, V]) keyChildSize() int { return dynsize.OffsetWordBytes + n.childWidth }

func (n *Node[K, V]) keyPosOffsetLeaf(pos int) int {
	return headerLengthDynamic + pos*dynsize.OffsetWordBytes
}

func (n *Node[K, V]) keyPosOffsetInternal(pos int) int {
	return headerLengthDynamic + n.childWidth + pos*n.keyChildSize()
}

func (n *Node[K, V]) keyPosOffset(pos int, t Type) int {
	if t == Leaf {
		return n.keyPosOffsetLeaf(pos)
	}
	return n.keyPosOffsetInternal(pos)
}

// childOffset returns the byte offset of the child pointer immediately to
// the left of the key at logical position pos, in an internal node's
// offset-array interleave.
func (n *Node[K, V]) childOffset(pos int) int {
	return n.keyPosOffsetInternal(pos) - n.childWidth
}

// ReasonableKeyCount is a corruption sanity check: any genuine key count
// must fit within the bound a fully-packed page could hold. Used by the
// tree layer's descent on every page's key count, before that count
// drives a binary search.
func (n *Node[K, V]) ReasonableKeyCount(keyCount int) bool {
	return keyCount >= 0 && keyCount <= n.totalSpace()/totalOverhead
}

// WriteAdditionalHeader initializes the dynamic-layout header fields of a
// freshly allocated page: allocOffset = pageSize, deadSpace = 0. The base
// header (type, key count) is the tree layer's responsibility to write
// first.
func (n *Node[K, V]) WriteAdditionalHeader(cursor *page.Cursor) {
	n.setAllocOffset(cursor, n.pageSize)
	n.setDeadSpace(cursor, 0)
}

func assertNonNegative(v int, msg string) {
	util.Assert(v >= 0, msg)
}
