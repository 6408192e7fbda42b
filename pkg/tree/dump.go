package tree

import (
	"fmt"
	"io"

	"dynpage/pkg/node"
)

// Dump writes a human-readable rendering of every page reachable from the
// root, one node.PrintNode line per page, indented by tree depth. It is
// the CLI's "dump" subcommand's only consumer (cmd/dynpage).
func (t *Tree[K, V]) Dump(w io.Writer) error {
	root := t.store.Root()
	if root == 0 {
		fmt.Fprintln(w, "(empty tree)")
		return nil
	}
	return t.dumpPage(w, root, 0)
}

func (t *Tree[K, V]) dumpPage(w io.Writer, ptr uint64, depth int) error {
	cursor := t.store.ReadCursor(ptr)
	nt := t.node.NodeType(cursor)
	keyCount := t.node.KeyCount(cursor)

	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	kind := "leaf"
	if nt == node.Internal {
		kind = "internal"
	}
	fmt.Fprintf(w, "%sptr=%d %s keys=%d %s\n", indent, ptr, kind, keyCount,
		t.node.PrintNode(cursor, true, t.store.StableGeneration(), t.store.UnstableGeneration()))
	if err := cursor.CheckCursorException(); err != nil {
		return checkCorrupt(err)
	}

	if nt == node.Internal {
		for i := 0; i <= keyCount; i++ {
			child := t.node.ChildAt(cursor, i, t.store.StableGeneration(), t.store.UnstableGeneration())
			if err := cursor.CheckCursorException(); err != nil {
				return checkCorrupt(err)
			}
			if err := t.dumpPage(w, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
