// Package layout defines the key/value codec capability the node engine
// consumes, and a concrete raw-bytes implementation of it.
//
// Grounded on a fixed-size B+tree's byte-slice keys and values (its node
// layout packs klen/vlen + raw key/val bytes directly) and on the
// Layout<KEY,VALUE> capability object described in Neo4j's
// TreeNodeDynamicSize.
package layout

import "dynpage/pkg/page"

// Layout is the small capability object the node engine is parameterized
// by. Implementations must be deterministic: KeySize/ValueSize must return
// exactly the number of bytes WriteKey/WriteValue will write.
type Layout[K, V any] interface {
	KeySize(key K) int
	ValueSize(val V) int
	WriteKey(cursor *page.Cursor, key K)
	WriteValue(cursor *page.Cursor, val V)
	ReadKey(cursor *page.Cursor, n int) K
	ReadValue(cursor *page.Cursor, n int) V
	CopyKey(key K) K
	NewKey() K
	NewValue() V
}

// BytesLayout is the Layout used throughout pkg/tree and pkg/node's tests:
// keys and values are raw, arbitrary-length byte slices.
type BytesLayout struct{}

// NewBytesLayout returns the raw-bytes Layout implementation.
func NewBytesLayout() BytesLayout {
	return BytesLayout{}
}

func (BytesLayout) KeySize(key []byte) int   { return len(key) }
func (BytesLayout) ValueSize(val []byte) int { return len(val) }

func (BytesLayout) WriteKey(cursor *page.Cursor, key []byte) {
	cursor.WriteBytes(key)
}

func (BytesLayout) WriteValue(cursor *page.Cursor, val []byte) {
	cursor.WriteBytes(val)
}

func (BytesLayout) ReadKey(cursor *page.Cursor, n int) []byte {
	out := make([]byte, n)
	cursor.ReadBytes(out, n)
	return out
}

func (BytesLayout) ReadValue(cursor *page.Cursor, n int) []byte {
	out := make([]byte, n)
	cursor.ReadBytes(out, n)
	return out
}

func (BytesLayout) CopyKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

func (BytesLayout) NewKey() []byte   { return nil }
func (BytesLayout) NewValue() []byte { return nil }
