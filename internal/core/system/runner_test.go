package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	name  string
	phase Phase
	log   *[]string
}

func (p *probe) Phase() Phase { return p.phase }
func (p *probe) Update(time.Duration) {
	*p.log = append(*p.log, p.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&probe{"victory", PhaseOutput, &log})
	r.Register(&probe{"flush", PhaseCleanup, &log})
	r.Register(&probe{"target", PhaseUpdate, &log})
	r.Register(&probe{"attack", PhaseUpdate, &log})
	r.Register(&probe{"events", PhasePreUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"events", "target", "attack", "flush", "victory"}, log)

	log = log[:0]
	r.TickPhase(PhaseUpdate, 0)
	assert.Equal(t, []string{"target", "attack"}, log)
}

func TestRunnerResortsAfterRegister(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&probe{"b", PhaseCleanup, &log})
	r.Tick(0)

	r.Register(&probe{"a", PhasePreUpdate, &log})
	log = log[:0]
	r.Tick(0)
	assert.Equal(t, []string{"a", "b"}, log)
	assert.Equal(t, 2, r.Len())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "cleanup", PhaseCleanup.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
