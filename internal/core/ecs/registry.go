package ecs

// Remover is implemented by every component store so the StorageManager can
// strip an entity from all of them. SparseSet satisfies it.
type Remover interface {
	Remove(id uint32)
	Cap() uint32
}

// StorageManager fans entity removal out across registered stores. It holds
// non-owning references and never touches component memory itself.
type StorageManager struct {
	stores []Remover
}

func NewStorageManager(initial int) *StorageManager {
	if initial <= 0 {
		initial = 8
	}
	return &StorageManager{
		stores: make([]Remover, 0, initial),
	}
}

// Register adds a store. Capacity doubles when full.
func (m *StorageManager) Register(r Remover) {
	if len(m.stores) == cap(m.stores) {
		grown := make([]Remover, len(m.stores), 2*cap(m.stores))
		copy(grown, m.stores)
		m.stores = grown
	}
	m.stores = append(m.stores, r)
}

// RemoveEntity clears id from every registered store. Stores smaller than id
// are skipped, so sets may be sized differently from the entity capacity.
func (m *StorageManager) RemoveEntity(id uint32) {
	for _, s := range m.stores {
		if id < s.Cap() {
			s.Remove(id)
		}
	}
}

// RemoveEntities is the batch form of RemoveEntity: stores in the outer loop,
// IDs in the inner one. Behaviorally identical to calling RemoveEntity per ID.
func (m *StorageManager) RemoveEntities(ids []uint32) {
	for _, s := range m.stores {
		limit := s.Cap()
		for _, id := range ids {
			if id < limit {
				s.Remove(id)
			}
		}
	}
}

func (m *StorageManager) Len() int { return len(m.stores) }
