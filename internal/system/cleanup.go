package system

import (
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	coresys "github.com/kingveneer/ecs-c-learning/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	battle *battle.Battle
	total  int
}

func NewCleanupSystem(b *battle.Battle) *CleanupSystem {
	return &CleanupSystem{battle: b}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	n := s.battle.World().FlushDestroyQueue()
	if n == 0 {
		return
	}
	s.total += n
	s.battle.Log().Debug("deaths flushed",
		zap.Int("turn", s.battle.Turn()),
		zap.Int("count", n),
	)
}

// Destroyed returns how many entities this system has destroyed.
func (s *CleanupSystem) Destroyed() int { return s.total }

// Reset zeroes the counter for the next battle.
func (s *CleanupSystem) Reset() { s.total = 0 }
