package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stub struct {
	phase Phase
	name  string
	log   *[]string
}

func (s stub) Phase() Phase { return s.phase }

func (s stub) Update(time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(stub{PhaseCleanup, "cleanup", &log})
	r.Register(stub{PhaseUpdate, "script", &log})
	r.Register(stub{PhaseInput, "input", &log})
	r.Register(stub{PhaseUpdate, "physics", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "script", "physics", "cleanup"}, log)
	assert.Equal(t, 4, r.Len())

	// Late registrations are sorted in on the next tick.
	log = log[:0]
	r.Register(stub{PhaseInput, "late", &log})
	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "late", "script", "physics", "cleanup"}, log)
}
