package node

import (
	"fmt"
	"strings"

	"dynpage/pkg/dynsize"
	"dynpage/pkg/page"
)

// PrintNode renders a node's header, offset array, and heap walk as a
// human-readable string, restoring the cursor's original offset before
// returning. Tombstoned blobs are marked with an "X"; live blobs with "_".
// Adapted from Neo4j's TreeNodeDynamicSize.printNode — exposed through
// the CLI's dump command.
func (n *Node[K, V]) PrintNode(cursor *page.Cursor, includeValue bool, stableGeneration, unstableGeneration uint64) string {
	currentOffset := cursor.Offset()
	defer cursor.SetOffset(currentOffset)

	t := n.NodeType(cursor)
	allocSpace := n.AllocOffset(cursor)

	var b strings.Builder
	fmt.Fprintf(&b, "[allocSpace=%d]", allocSpace)
	b.WriteString(n.readOffsetArray(cursor, stableGeneration, unstableGeneration, t))

	b.WriteString("[")
	cursor.SetOffset(allocSpace)
	first := true
	for cursor.Offset() < n.pageSize {
		if !first {
			b.WriteString("][")
		}
		first = false

		offset := cursor.Offset()
		rawKeySize := dynsize.ReadKeySize(cursor)
		var valueSize int
		if t == Leaf {
			valueSize = dynsize.ReadValueSize(cursor)
		}
		dead := dynsize.HasTombstone(rawKeySize)
		keySize := dynsize.StripTombstone(rawKeySize)

		key := n.layout.ReadKey(cursor, keySize)
		var value V
		if t == Leaf {
			value = n.layout.ReadValue(cursor, valueSize)
		}

		fmt.Fprintf(&b, "%d|", offset)
		if dead {
			b.WriteString("X|")
		} else {
			b.WriteString("_|")
		}
		fmt.Fprintf(&b, "%d", keySize)
		if t == Leaf && includeValue {
			fmt.Fprintf(&b, "|%d", valueSize)
		}
		fmt.Fprintf(&b, "|%v", key)
		if t == Leaf && includeValue {
			fmt.Fprintf(&b, "|%v", value)
		}
	}
	b.WriteString("]")

	return b.String()
}

func (n *Node[K, V]) readOffsetArray(cursor *page.Cursor, stableGeneration, unstableGeneration uint64, t Type) string {
	keyCount := n.KeyCount(cursor)
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < keyCount; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		if t == Internal {
			child := n.ChildAt(cursor, i, stableGeneration, unstableGeneration)
			fmt.Fprintf(&b, "/%d\\,", child)
		}
		cursor.SetOffset(n.keyPosOffset(i, t))
		fmt.Fprintf(&b, "%d", dynsize.ReadKeyOffset(cursor))
	}
	if t == Internal {
		if keyCount > 0 {
			b.WriteString(",")
		}
		child := n.ChildAt(cursor, keyCount, stableGeneration, unstableGeneration)
		fmt.Fprintf(&b, "/%d\\", child)
	}
	b.WriteString("]")
	return b.String()
}
