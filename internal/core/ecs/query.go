package ecs

// Each2 calls fn for every ID present in both sa and sb.
// fn must not add to or remove from either set.
func Each2[A, B any](sa *SparseSet[A], sb *SparseSet[B], fn func(uint32, *A, *B)) {
	for _, id := range shortest(sa.Entities(), sb.Entities()) {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		if b, ok := sb.Get(id); ok {
			fn(id, a, b)
		}
	}
}

// Each3 calls fn for every ID present in sa, sb and sc.
func Each3[A, B, C any](sa *SparseSet[A], sb *SparseSet[B], sc *SparseSet[C], fn func(uint32, *A, *B, *C)) {
	for _, id := range shortest(sa.Entities(), sb.Entities(), sc.Entities()) {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		if c, ok := sc.Get(id); ok {
			fn(id, a, b, c)
		}
	}
}

// shortest picks the dense ID column to drive a join: membership in the
// others is an O(1) sparse lookup, so the smallest column bounds the work.
func shortest(cols ...[]uint32) []uint32 {
	best := cols[0]
	for _, c := range cols[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}
