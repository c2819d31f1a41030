package ecs

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/kingveneer/ecs-c-learning/internal/core/arena"
)

// slotRef is an optional dense slot: the zero value means "no slot", so an
// empty sparse entry can never be mistaken for slot 0.
type slotRef uint32

func refTo(slot uint32) slotRef { return slotRef(slot + 1) }

func (r slotRef) slot() (uint32, bool) { return uint32(r) - 1, r != 0 }

// SparseSet stores one component type for a fixed ID space with O(1) add,
// lookup and removal, and a contiguous dense column for iteration.
// All three arrays are carved from an arena; the set never allocates after
// construction. A zero-sized T gives an index-only set (membership only).
//
// Removal is swap-and-pop: the last live slot moves into the hole. Dense order
// is therefore unstable, and any cached "slot N is entity E" mapping is stale
// after any Remove on this set.
type SparseSet[T any] struct {
	sparse   []slotRef
	dense    []uint32
	data     []T // nil for index-only sets
	count    uint32
	capacity uint32
}

// NewSparseSet carves a set for IDs [0, capacity) from a. The component
// column is cache-line aligned. On error the arena is rewound to where it
// was before the call.
func NewSparseSet[T any](a *arena.Arena, capacity uint32) (*SparseSet[T], error) {
	s := &SparseSet[T]{}
	if err := s.carve(a, capacity); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSparseSetFrom builds a set in the size-class pool matching T.
func NewSparseSetFrom[T any](ca *arena.ComponentAllocator, capacity uint32) (*SparseSet[T], error) {
	var zero T
	return NewSparseSet[T](ca.ArenaFor(unsafe.Sizeof(zero)), capacity)
}

// Reinit re-carves the set from a with the same capacity, dropping every
// entry. Use it after the backing arena was reset; the *SparseSet stays
// valid, so registrations with a StorageManager survive.
func (s *SparseSet[T]) Reinit(a *arena.Arena) error {
	return s.carve(a, s.capacity)
}

func (s *SparseSet[T]) carve(a *arena.Arena, capacity uint32) error {
	cp := a.Checkpoint()
	sparse, err := arena.Carve[slotRef](a, int(capacity), 0)
	if err != nil {
		return fmt.Errorf("carve sparse index: %w", err)
	}
	dense, err := arena.Carve[uint32](a, int(capacity), 0)
	if err != nil {
		a.Restore(cp)
		return fmt.Errorf("carve dense ids: %w", err)
	}
	var data []T
	var zero T
	if unsafe.Sizeof(zero) > 0 {
		data, err = arena.Carve[T](a, int(capacity), arena.CacheLine)
		if err != nil {
			a.Restore(cp)
			return fmt.Errorf("carve component data: %w", err)
		}
	}
	*s = SparseSet[T]{
		sparse:   sparse,
		dense:    dense,
		data:     data,
		capacity: capacity,
	}
	return nil
}

// Add stores v for id, overwriting in place if id is already present.
// id must be below Cap.
func (s *SparseSet[T]) Add(id uint32, v T) {
	s.mustHold(id, "add")
	if slot, ok := s.sparse[id].slot(); ok {
		if s.data != nil {
			s.data[slot] = v
		}
		return
	}
	slot := s.count
	s.dense[slot] = id
	s.sparse[id] = refTo(slot)
	if s.data != nil {
		s.data[slot] = v
	}
	s.count++
}

// Get returns a pointer into the dense column. The pointer is invalidated by
// any Remove on this set. Index-only sets return a pointer to a zero value.
func (s *SparseSet[T]) Get(id uint32) (*T, bool) {
	if id >= s.capacity {
		return nil, false
	}
	slot, ok := s.sparse[id].slot()
	if !ok {
		return nil, false
	}
	if s.data == nil {
		return new(T), true
	}
	return &s.data[slot], true
}

func (s *SparseSet[T]) Has(id uint32) bool {
	return id < s.capacity && s.sparse[id] != 0
}

// Remove drops id with swap-and-pop. Absent IDs are a no-op; an ID outside
// the set's capacity is a programming error.
func (s *SparseSet[T]) Remove(id uint32) {
	s.mustHold(id, "remove")
	slot, ok := s.sparse[id].slot()
	if !ok {
		return
	}
	last := s.count - 1
	moved := s.dense[last]
	s.dense[slot] = moved
	if s.data != nil {
		s.data[slot] = s.data[last]
	}
	s.sparse[moved] = refTo(slot)
	s.sparse[id] = 0
	s.count--
}

// Clear drops every entry in O(Len).
func (s *SparseSet[T]) Clear() {
	for _, id := range s.dense[:s.count] {
		s.sparse[id] = 0
	}
	s.count = 0
}

func (s *SparseSet[T]) Len() int    { return int(s.count) }
func (s *SparseSet[T]) Cap() uint32 { return s.capacity }

// ComponentSize is the size of one stored value; zero for index-only sets.
func (s *SparseSet[T]) ComponentSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// Entities returns the live dense IDs. The slice aliases the set.
func (s *SparseSet[T]) Entities() []uint32 {
	return s.dense[:s.count]
}

// Values returns the live dense column, parallel to Entities. Nil for
// index-only sets.
func (s *SparseSet[T]) Values() []T {
	if s.data == nil {
		return nil
	}
	return s.data[:s.count]
}

// Each calls fn for every live entry in dense order. fn may mutate *T but
// must not add to or remove from s.
func (s *SparseSet[T]) Each(fn func(id uint32, v *T)) {
	for id, v := range s.All() {
		fn(id, v)
	}
}

// All iterates live entries in dense order. The same mutation rules as Each
// apply.
func (s *SparseSet[T]) All() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		var tag T
		for i := uint32(0); i < s.count; i++ {
			v := &tag
			if s.data != nil {
				v = &s.data[i]
			}
			if !yield(s.dense[i], v) {
				return
			}
		}
	}
}

func (s *SparseSet[T]) mustHold(id uint32, op string) {
	if id >= s.capacity {
		panic(fmt.Sprintf("ecs: %s id %d outside sparse set capacity %d", op, id, s.capacity))
	}
}
