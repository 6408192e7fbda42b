package node

import (
	"dynpage/pkg/page"
	"dynpage/pkg/structprop"
)

// This file stubs the operations the dynamic-size layout intentionally
// leaves unimplemented: internal-node rebalancing, merge,
// and split-internal are out of scope for this snapshot of the layout.
// Calling any of these is a programmer error; the tree layer must not
// call them on dynamic-size nodes.

// SetKeyAt is unsupported by this layout.
func (n *Node[K, V]) SetKeyAt(cursor *page.Cursor, key K, pos int, t Type) error {
	return wrapUnsupported("SetKeyAt")
}

// LeafMaxKeyCount is unsupported by this layout: a dynamic-size leaf has
// no fixed maximum key count.
func (n *Node[K, V]) LeafMaxKeyCount() (int, error) {
	return 0, wrapUnsupported("LeafMaxKeyCount")
}

// ReasonableChildCount is unsupported by this layout.
func (n *Node[K, V]) ReasonableChildCount(childCount int) (bool, error) {
	return false, wrapUnsupported("ReasonableChildCount")
}

// CanRebalanceLeaves is unsupported by this layout.
func (n *Node[K, V]) CanRebalanceLeaves(leftKeyCount, rightKeyCount int) (bool, error) {
	return false, wrapUnsupported("CanRebalanceLeaves")
}

// CanMergeLeaves is unsupported by this layout.
func (n *Node[K, V]) CanMergeLeaves(leftKeyCount, rightKeyCount int) (bool, error) {
	return false, wrapUnsupported("CanMergeLeaves")
}

// DoSplitInternal is unsupported by this layout.
func (n *Node[K, V]) DoSplitInternal(leftCursor *page.Cursor, leftKeyCount int, rightCursor *page.Cursor, rightKeyCount, insertPos int, newKey K, newRightChild uint64, middlePos int, unstableGeneration uint64, propagation *structprop.StructurePropagation[K]) error {
	return wrapUnsupported("DoSplitInternal")
}

// MoveKeyValuesFromLeftToRight is unsupported by this layout.
func (n *Node[K, V]) MoveKeyValuesFromLeftToRight(leftCursor *page.Cursor, leftKeyCount int, rightCursor *page.Cursor, rightKeyCount, fromPosInLeftNode int) error {
	return wrapUnsupported("MoveKeyValuesFromLeftToRight")
}
