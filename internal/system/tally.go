package system

import (
	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/core/event"
)

// Tally counts defeats per team from UnitDefeated events. Events arrive one
// tick late, through EventDispatchSystem.
type Tally struct {
	Losses  [2]int
	Battles int
	Wins    [2]int
	Draws   int
}

// NewTally subscribes a Tally to bus.
func NewTally(bus *event.Bus) *Tally {
	t := &Tally{}
	event.Subscribe(bus, func(ev event.UnitDefeated) {
		if ev.Team == battle.TeamA || ev.Team == battle.TeamB {
			t.Losses[ev.Team]++
		}
	})
	event.Subscribe(bus, func(ev event.BattleEnded) {
		t.Battles++
		if ev.Winner == battle.Draw {
			t.Draws++
			return
		}
		t.Wins[ev.Winner]++
	})
	return t
}
