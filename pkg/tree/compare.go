package tree

import "bytes"

// CompareBytes is the Comparer for raw byte-slice keys (layout.BytesLayout),
// grounded on bytes.Compare, the same ordering a fixed-size B+tree's key
// comparator uses.
func CompareBytes(a, b []byte) int {
	return bytes.Compare(a, b)
}
