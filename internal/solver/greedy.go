// Package solver plans acquisition orders by simulating play with a greedy ROI policy.
package solver

import (
	"time"

	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/models"
)

// DefaultMaxSteps bounds the number of actions in one plan
const DefaultMaxSteps = 1000

// Step is one action applied at Tick ticks after the start of the plan
type Step struct {
	Candidate
	Tick int
}

// Plan is the result of a solver run
type Plan struct {
	Steps     []Step
	Final     models.SaveProfile
	Ticks     int
	Completed int // developments finished during the plan
}

// GreedySolver always takes the best ranked action, waiting for it when it is not
// affordable yet instead of spending on a worse one.
type GreedySolver struct {
	Settings *models.Settings
	Horizon  int
	MaxSteps int
}

// NewGreedySolver creates a solver that plans horizon ticks ahead
func NewGreedySolver(settings *models.Settings, horizon int) *GreedySolver {
	return &GreedySolver{
		Settings: settings,
		Horizon:  horizon,
		MaxSteps: DefaultMaxSteps,
	}
}

// Solve simulates the profile one tick at a time, acting whenever the top candidate
// is affordable. now is the wall-clock time of tick 0 and stamps started developments.
// The input profile is not modified.
func (s *GreedySolver) Solve(profile models.SaveProfile, now time.Time) Plan {
	state := profile.Clone()
	plan := Plan{}

	for plan.Ticks < s.Horizon {
		if len(plan.Steps) < s.MaxSteps {
			if next, step, ok := s.act(state, plan.Ticks, now); ok {
				state = next
				plan.Steps = append(plan.Steps, step)
				continue
			}
		}

		next, report := engine.Advance(state, 1, s.Settings)
		state = next
		plan.Ticks++
		plan.Completed += len(report.Completed)
	}

	plan.Final = state
	return plan
}

// act applies the best ranked candidate if it can be applied right now
func (s *GreedySolver) act(state models.SaveProfile, tick int, now time.Time) (models.SaveProfile, Step, bool) {
	candidates := Rank(state, s.Settings)
	if len(candidates) == 0 || candidates[0].WaitTicks > 0 {
		return state, Step{}, false
	}
	best := candidates[0]

	next, outcome := state, engine.UnknownDefinition
	switch best.Kind {
	case KindAsset:
		at := now.Add(time.Duration(tick) * s.Settings.TickInterval)
		next, outcome = engine.TryAcquireAsset(state, best.Category, best.ID, s.Settings, at)
	case KindContainer:
		next, outcome = engine.TryPurchaseContainer(state, best.ID, s.Settings)
	}
	if outcome != engine.Applied {
		return state, Step{}, false
	}
	return next, Step{Candidate: best, Tick: tick}, true
}
