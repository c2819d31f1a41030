package system

import (
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/core/event"
	coresys "github.com/kingveneer/ecs-c-learning/internal/core/system"
	"go.uber.org/zap"
)

// VictorySystem closes the turn: it advances the turn counter and ends the
// battle once a team is wiped out or the turn limit is hit. It reads the team
// sets after the death flush, so their counts are exact. Phase 4 (Output).
type VictorySystem struct {
	battle   *battle.Battle
	bus      *event.Bus
	maxTurns int

	done    bool
	outcome battle.Outcome
}

func NewVictorySystem(b *battle.Battle, bus *event.Bus, maxTurns int) *VictorySystem {
	return &VictorySystem{battle: b, bus: bus, maxTurns: maxTurns}
}

func (s *VictorySystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *VictorySystem) Update(_ time.Duration) {
	if s.done {
		return
	}
	turn := s.battle.NextTurn()
	if !s.battle.Decided() && turn < s.maxTurns {
		return
	}
	s.done = true
	s.outcome = s.battle.Outcome()
	event.Emit(s.bus, event.BattleEnded{
		Winner:    s.outcome.Winner,
		Turns:     s.outcome.Turns,
		Survivors: s.outcome.Survivors[battle.TeamA] + s.outcome.Survivors[battle.TeamB],
	})
	s.battle.Log().Info("battle complete",
		zap.String("winner", WinnerName(s.outcome.Winner)),
		zap.Int("turns", s.outcome.Turns),
		zap.Int("team_a", s.outcome.Survivors[battle.TeamA]),
		zap.Int("team_b", s.outcome.Survivors[battle.TeamB]),
		zap.Bool("timeout", !s.battle.Decided()),
	)
}

func (s *VictorySystem) Done() bool              { return s.done }
func (s *VictorySystem) Outcome() battle.Outcome { return s.outcome }

// Reset rearms the system for the next battle.
func (s *VictorySystem) Reset() {
	s.done = false
	s.outcome = battle.Outcome{}
}

// WinnerName renders a winner for logs and reports.
func WinnerName(winner int) string {
	switch winner {
	case battle.TeamA:
		return "team A"
	case battle.TeamB:
		return "team B"
	}
	return "draw"
}
