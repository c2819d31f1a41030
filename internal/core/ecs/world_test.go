package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldLifecycle(t *testing.T) {
	w := NewWorld(Options{Capacity: 4, StorageCap: 1, DeathQueueCap: 1})
	a := newTestArena(t)
	pos, err := NewSparseSet[[2]float32](a, 4)
	require.NoError(t, err)
	w.Register(pos)

	e, ok := w.CreateEntity()
	require.True(t, ok)
	pos.Add(e.ID, [2]float32{1, 2})

	w.MarkForDestruction(e)
	assert.True(t, w.Alive(e), "destruction is deferred")
	assert.Equal(t, 1, w.Deaths().Len())

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(e))
	assert.False(t, pos.Has(e.ID))
	assert.Equal(t, uint32(0), w.Entities().Living())
}

func TestWorldReset(t *testing.T) {
	w := NewWorld(Options{Capacity: 4})
	set, err := NewSparseSet[int32](newTestArena(t), 4)
	require.NoError(t, err)
	w.Register(set)

	e1, _ := w.CreateEntity()
	e2, _ := w.CreateEntity()
	w.MarkForDestruction(e1)

	w.Reset()
	assert.Equal(t, 0, w.Deaths().Len())
	assert.Equal(t, uint32(4), w.Entities().FreeCount())
	assert.False(t, w.Alive(e1))
	assert.False(t, w.Alive(e2))
	assert.Equal(t, 1, w.Storage().Len(), "registrations survive a reset")
}
