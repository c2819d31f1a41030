package arena

import "fmt"

// PoolCount is the number of component size classes.
const PoolCount = 6

// Size classes, smallest first. The last class takes anything larger.
var sizeThresholds = [PoolCount]uintptr{
	16,  // position, velocity, health, tags
	32,  // timers, flags, small state
	64,  // transforms, sprite data
	128, // animation state, physics bodies
	256, // AI state
	^uintptr(0),
}

// Share of the total budget per class.
var poolRatios = [PoolCount]float64{0.35, 0.25, 0.20, 0.12, 0.06, 0.02}

// ComponentAllocator partitions one master arena into fixed size-class
// sub-arenas so sets with similar component sizes share a pool.
type ComponentAllocator struct {
	master    *Arena
	pools     [PoolCount]*Arena
	poolSizes [PoolCount]int
}

// MemoryStats reports how much of each pool is in use.
type MemoryStats struct {
	TotalAllocated int
	TotalUsed      int
	PoolAllocated  [PoolCount]int
	PoolUsed       [PoolCount]int
	Utilization    float64 // percent of TotalAllocated
}

// NewComponentAllocator creates the master arena and carves the size-class
// pools. Pool sizes are rounded down to whole cache lines so every pool starts
// aligned without padding; a class whose share rounds to zero is left empty
// and skipped by ArenaFor.
func NewComponentAllocator(total int) (*ComponentAllocator, error) {
	master, err := New(total)
	if err != nil {
		return nil, fmt.Errorf("create master arena: %w", err)
	}
	ca := &ComponentAllocator{master: master}
	for i := range ca.pools {
		size := int(float64(total)*poolRatios[i]) &^ (CacheLine - 1)
		pool, err := master.Sub(size, CacheLine)
		if err != nil {
			ca.pools[i] = &Arena{}
			continue
		}
		ca.pools[i] = pool
		ca.poolSizes[i] = size
	}
	return ca, nil
}

// ArenaFor returns the smallest non-empty pool whose threshold fits
// componentSize, falling back to the overflow pool.
func (ca *ComponentAllocator) ArenaFor(componentSize uintptr) *Arena {
	for i, limit := range sizeThresholds {
		if componentSize <= limit && ca.poolSizes[i] > 0 {
			return ca.pools[i]
		}
	}
	return ca.pools[PoolCount-1]
}

// Pool returns the sub-arena for size class i.
func (ca *ComponentAllocator) Pool(i int) *Arena {
	return ca.pools[i]
}

// Threshold returns the largest component size served by class i.
func Threshold(i int) uintptr {
	return sizeThresholds[i]
}

// Reset empties every pool. The master arena is left as is since the pools
// live inside it.
func (ca *ComponentAllocator) Reset() {
	for i, pool := range ca.pools {
		if ca.poolSizes[i] > 0 {
			pool.Reset()
		}
	}
}

// Free destroys the master arena and with it every pool.
func (ca *ComponentAllocator) Free() {
	if ca.master == nil {
		return
	}
	ca.master.Destroy()
	ca.master = nil
	for i, pool := range ca.pools {
		pool.Destroy()
		ca.poolSizes[i] = 0
	}
}

func (ca *ComponentAllocator) Stats() MemoryStats {
	var st MemoryStats
	if ca.master == nil {
		return st
	}
	st.TotalAllocated = ca.master.Size()
	for i, pool := range ca.pools {
		if ca.poolSizes[i] == 0 {
			continue
		}
		st.PoolAllocated[i] = ca.poolSizes[i]
		st.PoolUsed[i] = pool.Used()
		st.TotalUsed += st.PoolUsed[i]
	}
	if st.TotalAllocated > 0 {
		st.Utilization = float64(st.TotalUsed) / float64(st.TotalAllocated) * 100
	}
	return st
}
