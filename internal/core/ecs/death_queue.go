package ecs

// DeathQueue buffers entities pending destruction until a safe point, so no
// system iterating a dense column ever sees a swap-and-pop mid-loop.
// Its buffer lives on the Go heap, outside any arena, so it survives arena
// resets.
type DeathQueue struct {
	pending []Entity
}

func NewDeathQueue(initial int) *DeathQueue {
	if initial <= 0 {
		initial = 64
	}
	return &DeathQueue{
		pending: make([]Entity, 0, initial),
	}
}

// Push queues e. Capacity doubles when full.
func (q *DeathQueue) Push(e Entity) {
	if len(q.pending) == cap(q.pending) {
		grown := make([]Entity, len(q.pending), 2*cap(q.pending))
		copy(grown, q.pending)
		q.pending = grown
	}
	q.pending = append(q.pending, e)
}

// Clear discards the queue without destroying anything.
func (q *DeathQueue) Clear() {
	q.pending = q.pending[:0]
}

// Process destroys each queued handle, then strips its ID from every store,
// and clears the queue. The strip happens for every handle, stale or not, so
// an ID destroyed outside the queue never keeps its components. Callers must
// only push handles that are alive at push time: an ID recycled between push
// and flush is stripped along with its new owner. Returns the number of
// handles whose destruction took effect.
func (q *DeathQueue) Process(em *EntityManager, sm *StorageManager) int {
	destroyed := 0
	for _, e := range q.pending {
		if em.Destroy(e) {
			destroyed++
		}
		sm.RemoveEntity(e.ID)
	}
	q.Clear()
	return destroyed
}

func (q *DeathQueue) Len() int { return len(q.pending) }
func (q *DeathQueue) Cap() int { return cap(q.pending) }

// Pending returns the queued handles. The slice aliases the queue.
func (q *DeathQueue) Pending() []Entity { return q.pending }
