package event

import "github.com/kingveneer/ecs-c-learning/internal/core/ecs"

// UnitDefeated is emitted when an attack drops a unit to zero health.
type UnitDefeated struct {
	Attacker ecs.Entity
	Target   ecs.Entity
	Team     int
	Turn     int
}

// BattleEnded is emitted once, on the tick a winner is decided or the turn
// limit is reached. Winner is -1 for a draw.
type BattleEnded struct {
	Winner    int
	Turns     int
	Survivors int
}
