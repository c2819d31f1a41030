package ecs

// World is the session context for the storage core: it owns the entity
// manager, the storage registry and the death queue. It is created by the
// session and passed by pointer; there is no global world.
type World struct {
	entities *EntityManager
	storage  *StorageManager
	deaths   *DeathQueue
}

// Options sizes a World. Zero StorageCap and DeathQueueCap fall back to
// defaults; Capacity is taken as given.
type Options struct {
	Capacity      uint32 // entity ID space
	StorageCap    int    // initial registry capacity
	DeathQueueCap int    // initial death queue capacity
}

func NewWorld(opts Options) *World {
	return &World{
		entities: NewEntityManager(opts.Capacity),
		storage:  NewStorageManager(opts.StorageCap),
		deaths:   NewDeathQueue(opts.DeathQueueCap),
	}
}

func (w *World) Entities() *EntityManager { return w.entities }
func (w *World) Storage() *StorageManager { return w.storage }
func (w *World) Deaths() *DeathQueue      { return w.deaths }

func (w *World) CreateEntity() (Entity, bool) {
	return w.entities.Create()
}

func (w *World) Alive(e Entity) bool {
	return w.entities.IsAlive(e)
}

// Register adds a component store to the removal fan-out.
func (w *World) Register(r Remover) {
	w.storage.Register(r)
}

// MarkForDestruction queues an entity for the end-of-tick flush.
func (w *World) MarkForDestruction(e Entity) {
	w.deaths.Push(e)
}

// FlushDestroyQueue destroys all queued entities and strips their components.
// Call it exactly once per tick, after every system that iterates dense
// columns has finished.
func (w *World) FlushDestroyQueue() int {
	return w.deaths.Process(w.entities, w.storage)
}

// Reset frees every entity and drops pending deaths. Stores stay registered;
// their owner is responsible for clearing or re-carving them.
func (w *World) Reset() {
	w.entities.Reset()
	w.deaths.Clear()
}
