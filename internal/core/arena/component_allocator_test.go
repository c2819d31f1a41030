package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentAllocatorPools(t *testing.T) {
	ca, err := NewComponentAllocator(10000)
	require.NoError(t, err)

	want := [PoolCount]int{3456, 2496, 1984, 1152, 576, 192}
	st := ca.Stats()
	assert.Equal(t, 10000, st.TotalAllocated)
	assert.Equal(t, want, st.PoolAllocated)
	for i := 0; i < PoolCount; i++ {
		assert.Equal(t, want[i], ca.Pool(i).Size(), "pool %d", i)
	}
}

func TestComponentAllocatorArenaFor(t *testing.T) {
	ca, err := NewComponentAllocator(1 << 16)
	require.NoError(t, err)

	tests := []struct {
		size uintptr
		pool int
	}{
		{0, 0},
		{12, 0},
		{16, 0},
		{17, 1},
		{32, 1},
		{48, 2},
		{64, 2},
		{100, 3},
		{200, 4},
		{256, 4},
		{257, 5},
		{4096, 5},
	}
	for _, tt := range tests {
		assert.Same(t, ca.Pool(tt.pool), ca.ArenaFor(tt.size), "size %d", tt.size)
		if tt.pool < PoolCount-1 {
			assert.LessOrEqual(t, tt.size, Threshold(tt.pool))
		}
	}
}

func TestComponentAllocatorSkipsEmptyPools(t *testing.T) {
	// 1000 bytes: the 6% and 2% classes round down to nothing.
	ca, err := NewComponentAllocator(1000)
	require.NoError(t, err)

	st := ca.Stats()
	assert.Equal(t, [PoolCount]int{320, 192, 192, 64, 0, 0}, st.PoolAllocated)
	assert.Same(t, ca.Pool(3), ca.ArenaFor(100))
	assert.Same(t, ca.Pool(PoolCount-1), ca.ArenaFor(200), "falls back to overflow")
}

func TestComponentAllocatorStatsAndReset(t *testing.T) {
	ca, err := NewComponentAllocator(10000)
	require.NoError(t, err)

	_, err = ca.ArenaFor(8).Alloc(100)
	require.NoError(t, err)
	_, err = ca.ArenaFor(128).Alloc(400)
	require.NoError(t, err)

	st := ca.Stats()
	assert.Equal(t, 100, st.PoolUsed[0])
	assert.Equal(t, 400, st.PoolUsed[3])
	assert.Equal(t, 500, st.TotalUsed)
	assert.InDelta(t, 5.0, st.Utilization, 1e-9)

	first := ca.Pool(0)
	ca.Reset()
	st = ca.Stats()
	assert.Equal(t, 0, st.TotalUsed)
	assert.Same(t, first, ca.Pool(0), "reset keeps the pools")
	assert.Equal(t, 3456, ca.Pool(0).Remaining())
}

func TestComponentAllocatorPoolsAreIsolated(t *testing.T) {
	ca, err := NewComponentAllocator(10000)
	require.NoError(t, err)

	tiny := ca.ArenaFor(4)
	_, err = tiny.Alloc(tiny.Size())
	require.NoError(t, err)
	_, err = tiny.Alloc(1)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, err = ca.ArenaFor(20).Alloc(64)
	assert.NoError(t, err, "exhausting one class leaves the others usable")
}

func TestComponentAllocatorFree(t *testing.T) {
	ca, err := NewComponentAllocator(4096)
	require.NoError(t, err)
	pool := ca.ArenaFor(8)

	ca.Free()
	_, err = pool.Alloc(1)
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.Equal(t, MemoryStats{}, ca.Stats())

	ca.Free()
}
