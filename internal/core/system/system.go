package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: dispatch last tick's events
	PhaseUpdate                  // 1: targeting, attacks
	PhasePostUpdate              // 2: bookkeeping after combat
	PhaseCleanup                 // 3: flush the death queue
	PhaseOutput                  // 4: victory check, reporting
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	case PhaseOutput:
		return "output"
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
