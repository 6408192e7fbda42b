package tree

import "github.com/pkg/errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("tree: key not found")

// ErrCorrupt wraps a cursor exception surfaced from pkg/node while
// walking the tree — torn data under a concurrent writer, or a genuinely
// corrupt page.
var ErrCorrupt = errors.New("tree: corrupt page")

// ErrInternalOverflow is returned when inserting a propagated split key
// into an internal node would overflow it. Splitting an internal node
// (node.DoSplitInternal) is unsupported by the dynamic-size layout;
// pkg/tree surfaces this rather than attempting an unsupported
// operation. See DESIGN.md.
var ErrInternalOverflow = errors.New("tree: internal node overflow, split-internal unsupported")

// ErrEmptyKey names the zero-length byte key condition. No Tree operation
// returns it: an empty key is stored and looked up like any other.
var ErrEmptyKey = errors.New("tree: empty key")

func checkCorrupt(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(ErrCorrupt, err.Error())
}
