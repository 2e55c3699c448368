package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/robomesh/swarmlearn/experience"
)

// GoalThreshold is the distance within which a next state counts as
// having reached a relabeled goal.
const GoalThreshold = 0.5

// Strategy names a hindsight goal-relabeling scheme.
type Strategy string

const (
	// Final relabels every step with the trajectory's last reached
	// state as the goal
	Final Strategy = "final"

	// Future relabels each step with one later state of the same
	// trajectory, chosen at random
	Future Strategy = "future"

	// Episode relabels each step once per later state of the
	// trajectory, which is combinatorial in the trajectory length
	Episode Strategy = "episode"

	// Random relabels each step with a state drawn uniformly from the
	// whole trajectory
	Random Strategy = "random"
)

// ValidStrategy reports whether s names a known relabeling strategy.
func ValidStrategy(s Strategy) bool {
	switch s {
	case Final, Future, Episode, Random:
		return true
	}
	return false
}

// Hindsight wraps a Buffer with hindsight experience replay: full
// trajectories are stored verbatim and then augmented with synthetic
// experiences relabeled against goals the trajectory actually reached.
type Hindsight struct {
	*Buffer
	strategy Strategy
	rng      *rand.Rand
}

// NewHindsight creates a hindsight wrapper around buffer.
func NewHindsight(buffer *Buffer, strategy Strategy,
	seed uint64) (*Hindsight, error) {

	if buffer == nil {
		return nil, fmt.Errorf("newHindsight: nil buffer")
	}
	if !ValidStrategy(strategy) {
		return nil, fmt.Errorf("newHindsight: no such strategy %q", strategy)
	}

	return &Hindsight{
		Buffer:   buffer,
		strategy: strategy,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// relabel builds the synthetic experience for one step pursued against
// goal. The reward is binary: +1 when the step's next state lands
// within GoalThreshold of the goal, -1 otherwise, and done mirrors
// that success.
func relabel(step experience.Experience,
	goal experience.State) experience.Experience {

	success := step.NextState.DistanceTo(goal) <= GoalThreshold

	synthetic := step
	synthetic.Done = success
	synthetic.Importance = 1.0
	if success {
		synthetic.Reward = 1.0
	} else {
		synthetic.Reward = -1.0
	}
	return synthetic
}

// StoreTrajectory stores the trajectory verbatim, then stores the
// relabeled experiences produced by the configured strategy. It
// returns the number of synthetic experiences added.
func (h *Hindsight) StoreTrajectory(trajectory []experience.Experience,
	meta Metadata) int {

	for _, step := range trajectory {
		h.Store(step, meta)
	}
	if len(trajectory) == 0 {
		return 0
	}

	added := 0
	final := trajectory[len(trajectory)-1].NextState

	for t, step := range trajectory {
		switch h.strategy {
		case Final:
			h.Store(relabel(step, final), meta)
			added++

		case Future:
			// Later states of this trajectory; the step's own next
			// state is the only candidate at the trajectory end.
			later := trajectory[t+h.rng.Intn(len(trajectory)-t)]
			h.Store(relabel(step, later.NextState), meta)
			added++

		case Episode:
			for _, later := range trajectory[t:] {
				h.Store(relabel(step, later.NextState), meta)
				added++
			}

		case Random:
			any := trajectory[h.rng.Intn(len(trajectory))]
			h.Store(relabel(step, any.NextState), meta)
			added++
		}
	}
	return added
}

// Strategy returns the configured relabeling strategy.
func (h *Hindsight) Strategy() Strategy { return h.strategy }
