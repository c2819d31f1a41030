package battle

import (
	"testing"

	"github.com/kingveneer/ecs-c-learning/internal/core/arena"
	"github.com/kingveneer/ecs-c-learning/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	goblin = &data.UnitTemplate{UnitID: 1, Name: "Goblin", HP: 30, Attack: 5, Defense: 2}
	knight = &data.UnitTemplate{UnitID: 2, Name: "Knight", HP: 60, Attack: 9, Defense: 6}
)

func newTestBattle(t *testing.T, capacity uint32) *Battle {
	t.Helper()
	b, err := New(Options{Capacity: capacity, PoolBytes: 1 << 18, ScratchBytes: 1 << 12}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestSpawn(t *testing.T) {
	b := newTestBattle(t, 8)

	e, err := b.Spawn(goblin, TeamA)
	require.NoError(t, err)
	assert.True(t, b.World().Alive(e))

	c, ok := b.Combatants().Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, int32(30), c.Health)
	assert.Equal(t, int32(30), c.MaxHealth)
	assert.Equal(t, int32(TeamA), c.Team)
	assert.False(t, c.Target.Valid())
	assert.True(t, b.Team(TeamA).Has(e.ID))
	assert.False(t, b.Team(TeamB).Has(e.ID))
	assert.Equal(t, "Goblin", b.UnitName(1))
	assert.Equal(t, "unit#9", b.UnitName(9))

	_, err = b.Spawn(goblin, 2)
	assert.ErrorContains(t, err, "invalid team")
}

func TestSpawnCapacity(t *testing.T) {
	b := newTestBattle(t, 2)
	_, err := b.Spawn(goblin, TeamA)
	require.NoError(t, err)
	_, err = b.Spawn(knight, TeamB)
	require.NoError(t, err)
	_, err = b.Spawn(goblin, TeamA)
	assert.ErrorIs(t, err, ErrFull)
}

func TestComponentPlacement(t *testing.T) {
	b := newTestBattle(t, 16)
	stats := b.Allocator().Stats()
	assert.Greater(t, stats.PoolUsed[0], 0, "index-only team sets use the smallest class")
	assert.Greater(t, stats.PoolUsed[2], 0, "combatant bundle fits the 64-byte class")
	assert.Equal(t, uintptr(36), b.Combatants().ComponentSize())
	assert.LessOrEqual(t, b.Combatants().ComponentSize(), arena.Threshold(2))
}

func TestSpawnRosterAndOutcome(t *testing.T) {
	r, err := data.ParseRoster([]byte(`
units:
  - {unit_id: 1, name: Goblin, hp: 30, attack: 5, defense: 2}
  - {unit_id: 2, name: Knight, hp: 60, attack: 9, defense: 6}
armies:
  - {unit_id: 1, team: 0, count: 3}
  - {unit_id: 2, team: 1, count: 2}
`))
	require.NoError(t, err)
	b := newTestBattle(t, 16)

	n, err := b.SpawnRoster(r)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 3, b.Alive(TeamA))
	assert.Equal(t, 2, b.Alive(TeamB))
	assert.False(t, b.Decided())

	o := b.Outcome()
	assert.Equal(t, Draw, o.Winner, "undecided battles report no winner")
	assert.Equal(t, [2]int{3, 2}, o.Survivors)

	for _, id := range append([]uint32(nil), b.Team(TeamB).Entities()...) {
		b.World().MarkForDestruction(b.World().Entities().HandleOf(id))
	}
	assert.Equal(t, 2, b.World().FlushDestroyQueue())
	assert.True(t, b.Decided())
	assert.Equal(t, TeamA, b.Outcome().Winner)
	assert.Equal(t, 3, b.Combatants().Len())
}

func TestResetReusesMemory(t *testing.T) {
	b := newTestBattle(t, 32)
	before := b.Allocator().Stats().TotalUsed

	var first []uint32
	for i := 0; i < 10; i++ {
		e, err := b.Spawn(goblin, i%2)
		require.NoError(t, err)
		first = append(first, e.ID)
	}
	old := b.World().Entities().HandleOf(first[0])
	b.NextTurn()
	_, err := b.Scratch().Alloc(128)
	require.NoError(t, err)

	require.NoError(t, b.Reset())
	assert.Equal(t, before, b.Allocator().Stats().TotalUsed, "re-carving takes exactly the same space")
	assert.Equal(t, 0, b.Scratch().Used())
	assert.Equal(t, 0, b.Combatants().Len())
	assert.Equal(t, 0, b.Alive(TeamA))
	assert.Equal(t, 0, b.Turn())
	assert.False(t, b.World().Alive(old))
	assert.Equal(t, 3, b.World().Storage().Len())

	e, err := b.Spawn(knight, TeamB)
	require.NoError(t, err)
	c, _ := b.Combatants().Get(e.ID)
	assert.Equal(t, int32(60), c.Health)
}

func TestDigest(t *testing.T) {
	spawn := func(b *Battle) {
		for i := 0; i < 4; i++ {
			_, err := b.Spawn(goblin, TeamA)
			require.NoError(t, err)
			_, err = b.Spawn(knight, TeamB)
			require.NoError(t, err)
		}
	}
	x := newTestBattle(t, 16)
	y := newTestBattle(t, 16)
	spawn(x)
	spawn(y)
	assert.Equal(t, x.Digest(), y.Digest())

	c, _ := y.Combatants().Get(3)
	c.Health--
	assert.NotEqual(t, x.Digest(), y.Digest())

	assert.NotEqual(t, [32]byte{}, x.Digest())
}
