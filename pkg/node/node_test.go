package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynpage/pkg/layout"
	"dynpage/pkg/node"
	"dynpage/pkg/page"
	"dynpage/pkg/structprop"
)

// pageSize/headerLengthDynamic match the worked layout scenarios used
// throughout this package's tests: 2-byte sizes/offsets, 12-byte header.
const testPageSize = 256

func newTestNode(t *testing.T) (*node.Node[[]byte, []byte], *page.Cursor) {
	t.Helper()
	n, err := node.NewNode[[]byte, []byte](testPageSize, layout.NewBytesLayout())
	require.NoError(t, err)
	cursor := page.NewCursor(make([]byte, testPageSize))
	n.WriteAdditionalHeader(cursor)
	n.SetNodeType(cursor, node.Leaf)
	n.SetKeyCount(cursor, 0)
	return n, cursor
}

func TestConstructionFailsWhenPageTooSmall(t *testing.T) {
	_, err := node.NewNode[[]byte, []byte](32, layout.NewBytesLayout())
	require.Error(t, err)
	assert.ErrorIs(t, err, node.ErrMetadataMismatch)
}

// S1 Insert/read.
func TestInsertAndRead(t *testing.T) {
	n, cursor := newTestNode(t)

	n.InsertKeyValueAt(cursor, []byte("hello"), []byte("world"), 0, 0)
	n.SetKeyCount(cursor, 1)

	assert.Equal(t, testPageSize-(2+2+5+5), n.AllocOffset(cursor))
	assert.Equal(t, 0, n.DeadSpace(cursor))
	assert.Equal(t, []byte("hello"), n.KeyAt(cursor, 0, node.Leaf))
	assert.Equal(t, []byte("world"), n.ValueAt(cursor, 0))

	cursor.SetOffset(12) // headerLengthDynamic: slot 0 of the offset array
	assert.Equal(t, uint16(242), cursor.GetUint16())
}

// S2 Remove and reclaim.
func TestRemoveAndReclaim(t *testing.T) {
	n, cursor := newTestNode(t)
	n.InsertKeyValueAt(cursor, []byte("hello"), []byte("world"), 0, 0)
	n.SetKeyCount(cursor, 1)

	n.RemoveKeyValueAt(cursor, 0, 1)
	n.SetKeyCount(cursor, 0)
	assert.Equal(t, 14, n.DeadSpace(cursor))

	overflow := n.LeafOverflow(cursor, 0, []byte("xx"), []byte("yy"))
	assert.Equal(t, node.NO, overflow)

	n.InsertKeyValueAt(cursor, []byte("xx"), []byte("yy"), 0, 0)
	n.SetKeyCount(cursor, 1)
	assert.Equal(t, 234, n.AllocOffset(cursor))
	assert.Equal(t, 14, n.DeadSpace(cursor))

	n.DefragmentLeaf(cursor)
	assert.Equal(t, 0, n.DeadSpace(cursor))
	assert.Equal(t, 248, n.AllocOffset(cursor))
	assert.Equal(t, []byte("xx"), n.KeyAt(cursor, 0, node.Leaf))
	assert.Equal(t, []byte("yy"), n.ValueAt(cursor, 0))
}

// S3 Overflow classification: fill with fixed-size entries, remove a few
// to leave a pattern of dead space, then verify NEED_DEFRAG is reported
// and that defrag+insert then succeeds.
func TestOverflowClassificationAndDefrag(t *testing.T) {
	n, cursor := newTestNode(t)
	key := func(i int) []byte { return []byte{byte(i), 'k', 'k', 'k', 'k', 'k'} }
	val := func(i int) []byte { return []byte{byte(i), 'v', 'v', 'v', 'v', 'v'} }

	count := 0
	for {
		if n.LeafOverflow(cursor, count, key(count), val(count)) != node.NO {
			break
		}
		n.InsertKeyValueAt(cursor, key(count), val(count), count, count)
		count++
		n.SetKeyCount(cursor, count)
	}
	require.Greater(t, count, 2)

	// Remove every other entry to create fragmented dead space.
	removed := 0
	for pos := 0; pos < count; pos += 2 {
		n.RemoveKeyValueAt(cursor, pos-removed, count-removed)
		removed++
	}
	remaining := count - removed
	n.SetKeyCount(cursor, remaining)

	require.Greater(t, n.DeadSpace(cursor), 0)

	// Refill until the fit test stops answering NO; the dead space left by
	// the removals must then make it answer NEED_DEFRAG rather than YES.
	overflow := n.LeafOverflow(cursor, remaining, key(999), val(999))
	for overflow == node.NO {
		n.InsertKeyValueAt(cursor, key(999), val(999), remaining, remaining)
		remaining++
		n.SetKeyCount(cursor, remaining)
		overflow = n.LeafOverflow(cursor, remaining, key(999), val(999))
	}
	require.Equal(t, node.NeedDefrag, overflow)
	n.DefragmentLeaf(cursor)
	assert.Equal(t, node.NO, n.LeafOverflow(cursor, remaining, key(999), val(999)))
}

// S6 In-place update.
func TestSetValueAtInPlace(t *testing.T) {
	n, cursor := newTestNode(t)
	n.InsertKeyValueAt(cursor, []byte("K"), []byte("VA"), 0, 0)
	n.SetKeyCount(cursor, 1)

	ok := n.SetValueAt(cursor, []byte("VB"), 0)
	assert.True(t, ok)
	assert.Equal(t, []byte("VB"), n.ValueAt(cursor, 0))

	ok = n.SetValueAt(cursor, []byte("VCD"), 0)
	assert.False(t, ok)
	assert.Equal(t, []byte("VB"), n.ValueAt(cursor, 0))
}

// Property: defrag idempotence and preservation.
func TestDefragPreservesLiveEntries(t *testing.T) {
	n, cursor := newTestNode(t)
	entries := [][2]string{{"aa", "11"}, {"bb", "22"}, {"cc", "33"}, {"dd", "44"}}
	for i, e := range entries {
		n.InsertKeyValueAt(cursor, []byte(e[0]), []byte(e[1]), i, i)
		n.SetKeyCount(cursor, i+1)
	}
	n.RemoveKeyValueAt(cursor, 1, len(entries))
	n.SetKeyCount(cursor, len(entries)-1)

	n.DefragmentLeaf(cursor)
	assert.Equal(t, 0, n.DeadSpace(cursor))

	assert.Equal(t, []byte("aa"), n.KeyAt(cursor, 0, node.Leaf))
	assert.Equal(t, []byte("11"), n.ValueAt(cursor, 0))
	assert.Equal(t, []byte("cc"), n.KeyAt(cursor, 1, node.Leaf))
	assert.Equal(t, []byte("33"), n.ValueAt(cursor, 1))
	assert.Equal(t, []byte("dd"), n.KeyAt(cursor, 2, node.Leaf))
	assert.Equal(t, []byte("44"), n.ValueAt(cursor, 2))

	// Idempotent: defragmenting an already-compact leaf changes nothing.
	allocBefore := n.AllocOffset(cursor)
	n.DefragmentLeaf(cursor)
	assert.Equal(t, allocBefore, n.AllocOffset(cursor))
	assert.Equal(t, 0, n.DeadSpace(cursor))
}

// S4/S5 Split halving: 10 fixed-size entries, split both before and after
// the computed middle position. Each entry (7B key + 7B value + two size
// words + one offset slot) takes 20 bytes, so ten of them fit in the page.
func fillFixedSize(t *testing.T, n *node.Node[[]byte, []byte], cursor *page.Cursor, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		k := []byte{byte('a' + i), 'x', 'x', 'x', 'x', 'x', 'x'}
		v := []byte{byte('A' + i), 'y', 'y', 'y', 'y', 'y', 'y'}
		n.InsertKeyValueAt(cursor, k, v, i, i)
		n.SetKeyCount(cursor, i+1)
	}
}

func TestSplitLeafInsertBeforeMiddle(t *testing.T) {
	n, left := newTestNode(t)
	right := page.NewCursor(make([]byte, testPageSize))
	n.WriteAdditionalHeader(right)
	n.SetNodeType(right, node.Leaf)
	n.SetKeyCount(right, 0)

	const leftKeyCount = 10
	fillFixedSize(t, n, left, leftKeyCount)

	newKey := []byte{'Z', 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x'}
	newValue := []byte{'Z', 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y'}

	var prop structprop.StructurePropagation[[]byte]
	n.DoSplitLeaf(left, leftKeyCount, right, 2, newKey, newValue, &prop)

	leftCount := n.KeyCount(left)
	rightCount := n.KeyCount(right)
	assert.Equal(t, leftKeyCount+1, leftCount+rightCount)
	require.True(t, prop.HasRightKeyInsert)

	firstRightKey := n.KeyAt(right, 0, node.Leaf)
	assert.Equal(t, firstRightKey, prop.RightKey)
}

func TestSplitLeafInsertAfterMiddle(t *testing.T) {
	n, left := newTestNode(t)
	right := page.NewCursor(make([]byte, testPageSize))
	n.WriteAdditionalHeader(right)
	n.SetNodeType(right, node.Leaf)
	n.SetKeyCount(right, 0)

	const leftKeyCount = 10
	fillFixedSize(t, n, left, leftKeyCount)

	newKey := []byte{'Z', 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x'}
	newValue := []byte{'Z', 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y'}

	var prop structprop.StructurePropagation[[]byte]
	n.DoSplitLeaf(left, leftKeyCount, right, 8, newKey, newValue, &prop)

	leftCount := n.KeyCount(left)
	rightCount := n.KeyCount(right)
	assert.Equal(t, leftKeyCount+1, leftCount+rightCount)
	require.True(t, prop.HasRightKeyInsert)

	firstRightKey := n.KeyAt(right, 0, node.Leaf)
	assert.Equal(t, firstRightKey, prop.RightKey)
}

func TestLeafUnderflow(t *testing.T) {
	n, cursor := newTestNode(t)
	assert.True(t, n.LeafUnderflow(cursor, 0))

	for i := 0; i < 8; i++ {
		k := []byte{byte('a' + i), 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x', 'x'}
		v := []byte{byte('A' + i), 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y', 'y'}
		n.InsertKeyValueAt(cursor, k, v, i, i)
		n.SetKeyCount(cursor, i+1)
	}
	assert.False(t, n.LeafUnderflow(cursor, 8))
}

func TestReasonableKeyCount(t *testing.T) {
	n, _ := newTestNode(t)
	assert.True(t, n.ReasonableKeyCount(0))
	assert.False(t, n.ReasonableKeyCount(-1))
	assert.False(t, n.ReasonableKeyCount(10_000))
}
