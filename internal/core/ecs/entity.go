package ecs

import "math"

// Entity is a handle: a dense, recycled ID plus the generation it was issued
// under. The handle is alive only while its generation matches the
// manager's current generation for ID.
type Entity struct {
	ID         uint32
	Generation uint32
}

// InvalidEntity is returned when no handle can be issued.
var InvalidEntity = Entity{ID: math.MaxUint32}

// Valid reports whether e is not the InvalidEntity sentinel. It says nothing
// about liveness; use EntityManager.IsAlive for that.
func (e Entity) Valid() bool { return e.ID != math.MaxUint32 }

// EntityManager issues entity handles from a fixed ID space with
// generational validation and a LIFO free stack.
//
// Invariant: every ID in [0, capacity) is either free (present once in
// freeIDs[:freeCount]) or living, and freeCount+living == capacity.
type EntityManager struct {
	generation []uint32
	freeIDs    []uint32
	freeCount  uint32
	living     uint32
}

func NewEntityManager(capacity uint32) *EntityManager {
	if capacity == math.MaxUint32 {
		// MaxUint32 is the InvalidEntity ID.
		capacity--
	}
	m := &EntityManager{
		generation: make([]uint32, capacity),
		freeIDs:    make([]uint32, capacity),
	}
	m.seed()
	return m
}

// seed fills the free stack with capacity-1 down to 0 so the top of the
// stack is ID 0 and recently freed IDs are reused first.
func (m *EntityManager) seed() {
	n := uint32(len(m.freeIDs))
	for i := uint32(0); i < n; i++ {
		m.freeIDs[i] = n - 1 - i
	}
	m.freeCount = n
	m.living = 0
}

// Create pops the most recently freed ID. When every ID is in use it returns
// InvalidEntity and false.
func (m *EntityManager) Create() (Entity, bool) {
	if m.freeCount == 0 {
		return InvalidEntity, false
	}
	m.freeCount--
	id := m.freeIDs[m.freeCount]
	m.living++
	return Entity{ID: id, Generation: m.generation[id]}, true
}

// Destroy invalidates every outstanding handle to e.ID and recycles the ID.
// Stale, forged and out-of-range handles are ignored. It reports whether the
// handle was alive.
func (m *EntityManager) Destroy(e Entity) bool {
	if !m.IsAlive(e) {
		return false
	}
	m.generation[e.ID]++
	m.freeIDs[m.freeCount] = e.ID
	m.freeCount++
	m.living--
	return true
}

// DestroyBatch destroys each handle in order. It is not atomic.
func (m *EntityManager) DestroyBatch(es []Entity) {
	for _, e := range es {
		m.Destroy(e)
	}
}

func (m *EntityManager) IsAlive(e Entity) bool {
	return e.ID < uint32(len(m.generation)) && m.generation[e.ID] == e.Generation
}

// Generation returns the current generation for id.
func (m *EntityManager) Generation(id uint32) (uint32, bool) {
	if id >= uint32(len(m.generation)) {
		return 0, false
	}
	return m.generation[id], true
}

// HandleOf rebuilds the current handle for an ID found by dense iteration.
// The result is only meaningful if id is known to be living.
func (m *EntityManager) HandleOf(id uint32) Entity {
	gen, ok := m.Generation(id)
	if !ok {
		return InvalidEntity
	}
	return Entity{ID: id, Generation: gen}
}

func (m *EntityManager) Capacity() uint32  { return uint32(len(m.generation)) }
func (m *EntityManager) Living() uint32    { return m.living }
func (m *EntityManager) FreeCount() uint32 { return m.freeCount }

// Reset returns every ID to the free stack. Every generation is bumped so no
// handle issued before the reset can alias one issued after it.
func (m *EntityManager) Reset() {
	for id := range m.generation {
		m.generation[id]++
	}
	m.seed()
}

// Release drops both arrays. The manager has zero capacity afterwards.
func (m *EntityManager) Release() {
	m.generation = nil
	m.freeIDs = nil
	m.freeCount = 0
	m.living = 0
}
