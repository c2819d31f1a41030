package system

import (
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/core/arena"
	"github.com/kingveneer/ecs-c-learning/internal/core/ecs"
	"github.com/kingveneer/ecs-c-learning/internal/core/event"
	coresys "github.com/kingveneer/ecs-c-learning/internal/core/system"
	"github.com/kingveneer/ecs-c-learning/internal/scripting"
	"go.uber.org/zap"
)

// Formula computes the result of one attack. *scripting.Engine implements it.
type Formula interface {
	CalcAttack(ctx scripting.CombatContext) scripting.CombatResult
}

// FormulaFunc adapts a plain function to Formula.
type FormulaFunc func(scripting.CombatContext) scripting.CombatResult

func (f FormulaFunc) CalcAttack(ctx scripting.CombatContext) scripting.CombatResult { return f(ctx) }

// AttackEvent is one resolved attack, gathered before any damage is applied.
type AttackEvent struct {
	Attacker ecs.Entity
	Target   ecs.Entity
	Damage   int32
	Hit      bool
}

// AttackSystem resolves every attack of the tick in two passes: gather, then
// apply. Events live in the scratch arena between a checkpoint and its
// restore, so the tick leaves no garbage behind. Units dropped to zero health
// are queued for destruction, never removed here. Phase 1 (Update).
type AttackSystem struct {
	battle  *battle.Battle
	formula Formula
	bus     *event.Bus

	attacks int
	kills   int
}

func NewAttackSystem(b *battle.Battle, formula Formula, bus *event.Bus) *AttackSystem {
	return &AttackSystem{battle: b, formula: formula, bus: bus}
}

func (s *AttackSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AttackSystem) Update(_ time.Duration) {
	combatants := s.battle.Combatants()
	if combatants.Len() == 0 {
		return
	}
	scratch := s.battle.Scratch()
	cp := scratch.Checkpoint()
	defer scratch.Restore(cp)

	events, err := arena.Carve[AttackEvent](scratch, combatants.Len(), 0)
	if err != nil {
		s.battle.Log().Error("attack events alloc failed",
			zap.Int("turn", s.battle.Turn()),
			zap.Int("combatants", combatants.Len()),
			zap.Error(err),
		)
		return
	}
	n := s.gather(events)
	s.apply(events[:n])
}

func (s *AttackSystem) gather(events []AttackEvent) int {
	w := s.battle.World()
	combatants := s.battle.Combatants()
	turn := s.battle.Turn()
	n := 0
	for id, c := range combatants.All() {
		if !c.Attacking || c.Health <= 0 {
			continue
		}
		if !c.Target.Valid() || !w.Alive(c.Target) {
			continue
		}
		t, ok := combatants.Get(c.Target.ID)
		if !ok || t.Health <= 0 {
			continue
		}
		res := s.formula.CalcAttack(scripting.CombatContext{
			AttackerAttack: c.Attack,
			AttackerUnit:   c.Unit,
			TargetDefense:  t.Defense,
			TargetHealth:   t.Health,
			TargetUnit:     t.Unit,
			Turn:           turn,
		})
		events[n] = AttackEvent{
			Attacker: w.Entities().HandleOf(id),
			Target:   c.Target,
			Damage:   res.Damage,
			Hit:      res.IsHit,
		}
		n++
	}
	return n
}

func (s *AttackSystem) apply(events []AttackEvent) {
	w := s.battle.World()
	combatants := s.battle.Combatants()
	log := s.battle.Log()
	for i := range events {
		ev := &events[i]
		s.attacks++
		if !ev.Hit {
			continue
		}
		t, ok := combatants.Get(ev.Target.ID)
		if !ok || t.Health <= 0 {
			continue
		}
		t.Health -= ev.Damage
		if t.Health > 0 {
			continue
		}

		w.MarkForDestruction(ev.Target)
		s.kills++
		if a, ok := combatants.Get(ev.Attacker.ID); ok {
			a.Target = ecs.InvalidEntity
			a.Attacking = false
		}
		event.Emit(s.bus, event.UnitDefeated{
			Attacker: ev.Attacker,
			Target:   ev.Target,
			Team:     int(t.Team),
			Turn:     s.battle.Turn(),
		})
		if ce := log.Check(zap.DebugLevel, "unit defeated"); ce != nil {
			attacker, _ := combatants.Get(ev.Attacker.ID)
			ce.Write(
				zap.String("attacker", s.battle.UnitName(attacker.Unit)),
				zap.String("target", s.battle.UnitName(t.Unit)),
				zap.Uint32("target_id", ev.Target.ID),
				zap.Int("turn", s.battle.Turn()),
			)
		}
	}
}

// Attacks returns the number of attacks resolved so far, hits and misses.
func (s *AttackSystem) Attacks() int { return s.attacks }

// Kills returns the number of units this system has dropped to zero health.
func (s *AttackSystem) Kills() int { return s.kills }

// Reset zeroes the counters for the next battle.
func (s *AttackSystem) Reset() {
	s.attacks = 0
	s.kills = 0
}
