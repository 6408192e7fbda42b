package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynpage/pkg/dynsize"
	"dynpage/pkg/node"
)

// TestSetValueAtReadsKeySizeViaOffsetReader pins a quirk recorded in
// DESIGN.md Open Question #1: SetValueAt
// advances past the key by reading the stored key size with
// dynsize.ReadKeyOffset rather than dynsize.ReadKeySize. In this
// implementation the two words share a width (dynsize.OffsetWordBytes ==
// dynsize.SizeWordBytes), so the quirk is currently behaviorally inert —
// this test exists to catch a future change to either width silently
// reintroducing a real bug.
func TestSetValueAtReadsKeySizeViaOffsetReader(t *testing.T) {
	require.Equal(t, dynsize.OffsetWordBytes, dynsize.SizeWordBytes,
		"SetValueAt's readKeyOffset/readKeySize quirk relies on these widths matching")

	n, cursor := newTestNode(t)
	n.InsertKeyValueAt(cursor, []byte("key"), []byte("val"), 0, 0)
	n.SetKeyCount(cursor, 1)

	ok := n.SetValueAt(cursor, []byte("new"), 0)
	require.True(t, ok)
	assert.Equal(t, []byte("key"), n.KeyAt(cursor, 0, node.Leaf))
	assert.Equal(t, []byte("new"), n.ValueAt(cursor, 0))
}
