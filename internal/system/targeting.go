package system

import (
	"math"
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/core/ecs"
	coresys "github.com/kingveneer/ecs-c-learning/internal/core/system"
)

// TargetSystem gives every idle combatant the weakest living enemy as its
// target. Phase 1 (Update), registered before AttackSystem.
//
// The weakest unit per team is found at most once per tick and only when some
// attacker actually needs a target. Targets are kept as handles and
// revalidated each tick; a handle whose unit died fails IsAlive even if its
// ID was recycled.
type TargetSystem struct {
	battle *battle.Battle

	weakest [2]ecs.Entity
	scanned [2]bool
}

func NewTargetSystem(b *battle.Battle) *TargetSystem {
	return &TargetSystem{battle: b}
}

func (s *TargetSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TargetSystem) Update(_ time.Duration) {
	s.scanned = [2]bool{}
	w := s.battle.World()

	for _, c := range s.battle.Combatants().All() {
		if c.Health <= 0 {
			continue
		}
		if c.Target.Valid() && w.Alive(c.Target) {
			continue
		}
		c.Target = s.weakestOf(battle.Enemy(int(c.Team)))
		c.Attacking = c.Target.Valid()
	}
}

// weakestOf scans team's index-only set for the living member with the
// lowest health. Ties go to the earlier dense slot.
func (s *TargetSystem) weakestOf(team int) ecs.Entity {
	if s.scanned[team] {
		return s.weakest[team]
	}
	s.scanned[team] = true

	em := s.battle.World().Entities()
	combatants := s.battle.Combatants()
	weakest := ecs.InvalidEntity
	lowest := int32(math.MaxInt32)
	for _, id := range s.battle.Team(team).Entities() {
		c, ok := combatants.Get(id)
		if !ok || c.Health <= 0 {
			continue
		}
		if c.Health < lowest {
			lowest = c.Health
			weakest = em.HandleOf(id)
		}
	}
	s.weakest[team] = weakest
	return weakest
}
