package system

import (
	"context"
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/core/event"
	coresys "github.com/kingveneer/ecs-c-learning/internal/core/system"
)

// Pipeline wires the battle systems into a Runner in tick order:
// dispatch events, target, attack, flush deaths, check victory.
type Pipeline struct {
	Runner  *coresys.Runner
	Target  *TargetSystem
	Attack  *AttackSystem
	Cleanup *CleanupSystem
	Victory *VictorySystem
	Tally   *Tally

	battle *battle.Battle
	bus    *event.Bus
}

func NewPipeline(b *battle.Battle, bus *event.Bus, formula Formula, maxTurns int) *Pipeline {
	p := &Pipeline{
		Runner:  coresys.NewRunner(),
		Target:  NewTargetSystem(b),
		Attack:  NewAttackSystem(b, formula, bus),
		Cleanup: NewCleanupSystem(b),
		Victory: NewVictorySystem(b, bus, maxTurns),
		Tally:   NewTally(bus),
		battle:  b,
		bus:     bus,
	}
	p.Runner.Register(NewEventDispatchSystem(bus))
	p.Runner.Register(p.Target)
	p.Runner.Register(p.Attack)
	p.Runner.Register(p.Cleanup)
	p.Runner.Register(p.Victory)
	return p
}

// Run ticks until the battle ends or ctx is done. With a positive tickRate
// turns are paced by a ticker; otherwise they run back to back. Events
// emitted on the final tick are delivered before Run returns.
func (p *Pipeline) Run(ctx context.Context, tickRate time.Duration) (battle.Outcome, error) {
	defer p.Runner.TickPhase(coresys.PhasePreUpdate, 0)

	if tickRate <= 0 {
		for !p.Victory.Done() {
			if err := ctx.Err(); err != nil {
				return p.battle.Outcome(), err
			}
			p.Runner.Tick(0)
		}
		return p.Victory.Outcome(), nil
	}

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()
	for !p.Victory.Done() {
		select {
		case <-ctx.Done():
			return p.battle.Outcome(), ctx.Err()
		case <-ticker.C:
			p.Runner.Tick(tickRate)
		}
	}
	return p.Victory.Outcome(), nil
}

// Reset prepares the battle and every stateful system for another round.
// The tally keeps counting across rounds.
func (p *Pipeline) Reset() error {
	if err := p.battle.Reset(); err != nil {
		return err
	}
	p.bus.Reset()
	p.Attack.Reset()
	p.Cleanup.Reset()
	p.Victory.Reset()
	return nil
}
