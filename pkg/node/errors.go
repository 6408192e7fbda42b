package node

import "github.com/pkg/errors"

var (
	errUnexpectedTombstoneInDeadSpace = errors.New("node: deadSpace word unexpectedly carries a tombstone bit")
	errKeyOffsetOutOfRange            = errors.New("node: key offset lies outside the page")
	errSizeExceedsCap                 = errors.New("node: size word exceeds keyValueSizeCap")
)

// wrapUnsupported builds the sentinel ErrUnsupported error for an
// operation name this layout intentionally leaves unimplemented.
func wrapUnsupported(op string) error {
	return errors.Wrap(ErrUnsupported, op)
}
