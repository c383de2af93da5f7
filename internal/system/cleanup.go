package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.World
	log   *zap.Logger
}

func NewCleanupSystem(w *world.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: w, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.FlushDestroyQueue(); n > 0 {
		s.log.Debug("destroyed queued entities", zap.Int("count", n))
	}
}
