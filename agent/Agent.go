// Package agent defines the agent interfaces implemented by every
// learning algorithm in this module.
package agent

import (
	"github.com/robomesh/swarmlearn/experience"
)

// Agent determines the implementation details of a learning algorithm.
//
// An Agent is composed of a Policy, which chooses actions in each
// state, and a Learner, which consumes experience to improve the
// Policy. A training coordinator is written once against this
// interface; algorithm-specific capabilities are probed through the
// extension interfaces below.
type Agent interface {
	Learner
	Policy
}

// Learner consumes experience and updates learned values.
type Learner interface {
	// Update consumes a single transition and returns the magnitude
	// of the TD error or loss, for diagnostics and replay
	// prioritization. Update never fails.
	Update(exp experience.Experience) float64
}

// Policy chooses actions. SelectAction never blocks and never fails:
// when no learned signal exists for a state it falls back to a
// uniformly random choice among the possible actions.
type Policy interface {
	SelectAction(state experience.State,
		possible []experience.Action) experience.Action

	// DecayExploration applies one multiplicative decay step to the
	// exploration rate, floored at the configured minimum. It is
	// called once per completed episode.
	DecayExploration()

	Eval()        // Set policy to evaluation mode (no exploration)
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// OnPolicyLearner is a Learner whose target bootstraps from the action
// the policy actually selected next, rather than the greedy maximum.
type OnPolicyLearner interface {
	Learner

	// UpdateOnPolicy consumes a transition together with the next
	// action selected in exp.NextState. hasNext is false when the
	// episode ended or no next action exists.
	UpdateOnPolicy(exp experience.Experience, next experience.Action,
		hasNext bool) float64
}

// EpisodeLearner is a Learner whose update unit is a whole episode
// trajectory rather than a single transition.
type EpisodeLearner interface {
	Learner

	// UpdateEpisode consumes a full trajectory in step order and
	// returns the mean update magnitude across its steps.
	UpdateEpisode(trajectory []experience.Experience) float64
}

// BatchTrainer is a Learner that additionally trains on mini-batches
// drawn from its own internal experience cache.
type BatchTrainer interface {
	Learner

	// TrainStep samples one mini-batch and performs a batch update.
	// It returns the mean loss and whether an update was performed;
	// it is a no-op while the cache holds fewer than one batch.
	TrainStep() (float64, bool)
}

// RateAdapter is a Learner whose learning rate can be changed between
// updates, allowing a coordinator to drive it from a schedule.
type RateAdapter interface {
	Learner

	// SetLearningRate replaces the learning rate used by subsequent
	// updates. Rates <= 0 are ignored.
	SetLearningRate(lr float64)
}

// TDErrorer is a Learner that can report the signed TD error of a
// transition without mutating any learned state.
type TDErrorer interface {
	Learner

	TDError(exp experience.Experience, next experience.Action,
		hasNext bool) float64
}
