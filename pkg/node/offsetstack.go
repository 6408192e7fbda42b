package node

import "math"

// offsetStack is the dead-stack/alive-stack collaborator the defragmenter
// needs: a LIFO of page offsets. recordDeadAndAlive
// pushes offsets while walking the heap from allocOffset up to the page
// end, so the top of each stack is always the highest (closest-to-P)
// unconsumed offset — which is exactly what lets the defragmenter process
// the heap from the tail inward and recognize an already-contiguous run of
// live blobs flush against the page end before doing any work.
type offsetStack struct {
	offsets []int
}

func (s *offsetStack) push(offset int) {
	s.offsets = append(s.offsets, offset)
}

// peek returns the topmost (highest) offset without removing it, or
// math.MinInt if the stack is empty, so that comparisons against an
// exhausted stack never win a "which is higher" check against a real
// offset.
func (s *offsetStack) peek() int {
	if len(s.offsets) == 0 {
		return math.MinInt
	}
	return s.offsets[len(s.offsets)-1]
}

func (s *offsetStack) poll() int {
	v := s.peek()
	if len(s.offsets) > 0 {
		s.offsets = s.offsets[:len(s.offsets)-1]
	}
	return v
}

func (s *offsetStack) empty() bool {
	return len(s.offsets) == 0
}
