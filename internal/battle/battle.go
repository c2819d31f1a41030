// Package battle holds the state of one skirmish session: the component
// pools, the per-tick scratch arena, the entity world and the component sets
// the combat systems read and write.
package battle

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kingveneer/ecs-c-learning/internal/core/arena"
	"github.com/kingveneer/ecs-c-learning/internal/core/ecs"
	"github.com/kingveneer/ecs-c-learning/internal/data"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Teams.
const (
	TeamA = 0
	TeamB = 1
	Draw  = -1
)

// ErrFull is returned when the entity ID space is exhausted.
var ErrFull = errors.New("battle: entity capacity exhausted")

// Combatant is the hot component bundle every fighting unit carries.
// It holds no Go pointers so it can live in arena memory.
type Combatant struct {
	Health    int32
	MaxHealth int32
	Attack    int32
	Defense   int32
	Unit      int32 // template unit_id
	Team      int32
	Attacking bool
	Target    ecs.Entity
}

// Options sizes a Battle.
type Options struct {
	Capacity      uint32
	PoolBytes     int
	ScratchBytes  int
	StorageCap    int
	DeathQueueCap int
}

// Battle is the explicit session context handed to every system.
type Battle struct {
	alloc      *arena.ComponentAllocator
	scratch    *arena.Arena
	world      *ecs.World
	combatants *ecs.SparseSet[Combatant]
	teams      [2]*ecs.SparseSet[struct{}]
	names      map[int32]string
	turn       int
	log        *zap.Logger
}

func New(opts Options, log *zap.Logger) (*Battle, error) {
	alloc, err := arena.NewComponentAllocator(opts.PoolBytes)
	if err != nil {
		return nil, fmt.Errorf("component pools: %w", err)
	}
	scratch, err := arena.New(opts.ScratchBytes)
	if err != nil {
		alloc.Free()
		return nil, fmt.Errorf("scratch arena: %w", err)
	}
	b := &Battle{
		alloc:   alloc,
		scratch: scratch,
		world: ecs.NewWorld(ecs.Options{
			Capacity:      opts.Capacity,
			StorageCap:    opts.StorageCap,
			DeathQueueCap: opts.DeathQueueCap,
		}),
		names: make(map[int32]string),
		log:   log,
	}
	if err := b.carveSets(); err != nil {
		b.Close()
		return nil, err
	}
	b.world.Register(b.combatants)
	b.world.Register(b.teams[TeamA])
	b.world.Register(b.teams[TeamB])
	return b, nil
}

func (b *Battle) carveSets() error {
	capacity := b.world.Entities().Capacity()
	var err error
	if b.combatants, err = ecs.NewSparseSetFrom[Combatant](b.alloc, capacity); err != nil {
		return fmt.Errorf("combatant set: %w", err)
	}
	for i := range b.teams {
		if b.teams[i], err = ecs.NewSparseSetFrom[struct{}](b.alloc, capacity); err != nil {
			return fmt.Errorf("team %d set: %w", i, err)
		}
	}
	return nil
}

// Reset prepares the session for a new battle: every pool is emptied, the
// sets are re-carved in place, all entities are freed and pending deaths are
// dropped. Registrations with the storage manager are kept.
func (b *Battle) Reset() error {
	b.alloc.Reset()
	b.scratch.Reset()
	if err := b.combatants.Reinit(b.alloc.ArenaFor(b.combatants.ComponentSize())); err != nil {
		return fmt.Errorf("reset combatant set: %w", err)
	}
	for i, t := range b.teams {
		if err := t.Reinit(b.alloc.ArenaFor(t.ComponentSize())); err != nil {
			return fmt.Errorf("reset team %d set: %w", i, err)
		}
	}
	b.world.Reset()
	b.turn = 0
	return nil
}

// Spawn creates one unit from t on team.
func (b *Battle) Spawn(t *data.UnitTemplate, team int) (ecs.Entity, error) {
	if team != TeamA && team != TeamB {
		return ecs.InvalidEntity, fmt.Errorf("spawn %s: invalid team %d", t.Name, team)
	}
	e, ok := b.world.CreateEntity()
	if !ok {
		return ecs.InvalidEntity, ErrFull
	}
	b.combatants.Add(e.ID, Combatant{
		Health:    t.HP,
		MaxHealth: t.HP,
		Attack:    t.Attack,
		Defense:   t.Defense,
		Unit:      t.UnitID,
		Team:      int32(team),
		Target:    ecs.InvalidEntity,
	})
	b.teams[team].Add(e.ID, struct{}{})
	b.names[t.UnitID] = t.Name
	return e, nil
}

// SpawnRoster fields every army in r. It stops at the first failure and
// returns how many units were spawned.
func (b *Battle) SpawnRoster(r *data.Roster) (int, error) {
	n := 0
	for _, army := range r.Armies() {
		t := r.Get(army.UnitID)
		for i := 0; i < army.Count; i++ {
			if _, err := b.Spawn(t, army.Team); err != nil {
				return n, fmt.Errorf("spawn roster: %w", err)
			}
			n++
		}
	}
	b.log.Debug("roster spawned",
		zap.Int("units", n),
		zap.Int("team_a", b.Alive(TeamA)),
		zap.Int("team_b", b.Alive(TeamB)),
	)
	return n, nil
}

func (b *Battle) World() *ecs.World                      { return b.world }
func (b *Battle) Combatants() *ecs.SparseSet[Combatant]  { return b.combatants }
func (b *Battle) Team(team int) *ecs.SparseSet[struct{}] { return b.teams[team] }
func (b *Battle) Scratch() *arena.Arena                  { return b.scratch }
func (b *Battle) Allocator() *arena.ComponentAllocator   { return b.alloc }
func (b *Battle) Log() *zap.Logger                       { return b.log }

// Alive returns the number of living units on team.
func (b *Battle) Alive(team int) int { return b.teams[team].Len() }

// Enemy returns the opposing team.
func Enemy(team int) int { return 1 - team }

// UnitName returns the template name for a unit_id, or "unit#<id>".
func (b *Battle) UnitName(unit int32) string {
	if n, ok := b.names[unit]; ok {
		return n
	}
	return fmt.Sprintf("unit#%d", unit)
}

func (b *Battle) Turn() int { return b.turn }

// NextTurn advances the turn counter and returns the new value.
func (b *Battle) NextTurn() int {
	b.turn++
	return b.turn
}

// Outcome summarizes a battle.
type Outcome struct {
	Winner    int // TeamA, TeamB or Draw
	Turns     int
	Survivors [2]int
	Digest    [32]byte
}

// Decided reports whether at least one team has been wiped out.
func (b *Battle) Decided() bool {
	return b.Alive(TeamA) == 0 || b.Alive(TeamB) == 0
}

// Outcome reports the current standing. The winner is the only team with
// survivors; anything else is a draw.
func (b *Battle) Outcome() Outcome {
	o := Outcome{
		Winner:    Draw,
		Turns:     b.turn,
		Survivors: [2]int{b.Alive(TeamA), b.Alive(TeamB)},
		Digest:    b.Digest(),
	}
	switch {
	case o.Survivors[TeamA] > 0 && o.Survivors[TeamB] == 0:
		o.Winner = TeamA
	case o.Survivors[TeamB] > 0 && o.Survivors[TeamA] == 0:
		o.Winner = TeamB
	}
	return o
}

// Digest hashes every living combatant in ID order. Generations are left
// out, so two rounds over the same roster with the same formula produce the
// same digest even though Reset bumps every generation in between.
func (b *Battle) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var buf [32]byte
	for id := uint32(0); id < b.combatants.Cap(); id++ {
		c, ok := b.combatants.Get(id)
		if !ok {
			continue
		}
		binary.LittleEndian.PutUint32(buf[0:], id)
		binary.LittleEndian.PutUint32(buf[4:], uint32(c.Health))
		binary.LittleEndian.PutUint32(buf[8:], uint32(c.MaxHealth))
		binary.LittleEndian.PutUint32(buf[12:], uint32(c.Attack))
		binary.LittleEndian.PutUint32(buf[16:], uint32(c.Defense))
		binary.LittleEndian.PutUint32(buf[20:], uint32(c.Unit))
		binary.LittleEndian.PutUint32(buf[24:], uint32(c.Team))
		binary.LittleEndian.PutUint32(buf[28:], c.Target.ID)
		h.Write(buf[:])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Close releases the arenas. The Battle must not be used afterwards.
func (b *Battle) Close() {
	b.alloc.Free()
	b.scratch.Destroy()
}
