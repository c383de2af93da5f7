package system

import (
	"sort"
	"time"
)

// Runner executes Updaters in phase order each tick. Updaters in the same
// phase run in registration order.
type Runner struct {
	updaters []Updater
	sorted   bool
}

func NewRunner() *Runner {
	return &Runner{
		updaters: make([]Updater, 0, 16),
	}
}

func (r *Runner) Register(u Updater) {
	r.updaters = append(r.updaters, u)
	r.sorted = false
}

func (r *Runner) Len() int { return len(r.updaters) }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, u := range r.updaters {
		u.Update(dt)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.updaters, func(i, j int) bool {
			return r.updaters[i].Phase() < r.updaters[j].Phase()
		})
		r.sorted = true
	}
}
