// Package environment outlines the interfaces and structs needed to
// implement concrete robot environments
package environment

import (
	"github.com/robomesh/swarmlearn/experience"
)

// StepInfo carries the diagnostic facts of a single transition beyond
// the reward signal itself.
type StepInfo struct {
	Success     bool
	Collision   bool
	Distance    float64 // distance to the active goal after the step
	TimeElapsed float64 // seconds of simulated time since Reset
}

// Environment implements a simulated environment. An Environment is
// always ready to use after construction; Reset re-initializes it
// between episodes.
type Environment interface {
	// Reset re-initializes the environment and returns the starting
	// state. Step and reward counters are zeroed.
	Reset() experience.State

	// Step applies one action and returns the next state, the shaped
	// reward, whether the episode terminated, and transition
	// diagnostics. Step returns an error only for an action outside
	// PossibleActions, which is a programming error in the caller.
	Step(action experience.Action) (experience.State, float64, bool, StepInfo, error)

	// PossibleActions returns the authoritative action set of the
	// environment. Callers never invent actions outside this set.
	PossibleActions() []experience.Action
}

// ValidAction reports whether action is a member of the environment's
// possible-action set.
func ValidAction(env Environment, action experience.Action) bool {
	for _, a := range env.PossibleActions() {
		if a.Equal(action) {
			return true
		}
	}
	return false
}
