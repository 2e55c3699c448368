// Package valuefn implements action-value estimators. A Model maps a
// (state, action) pair to an estimated return, and is updated toward
// externally computed targets. The tabular learners use Table directly;
// the batch learner accepts any Model so that the estimator can be
// swapped for a regressor.
package valuefn

import (
	"github.com/robomesh/swarmlearn/experience"
)

// Model estimates action values and learns from scalar targets.
type Model interface {
	// Predict returns the current estimate for taking action in state.
	Predict(state experience.State, action experience.Action) float64

	// Update moves the estimate for (state, action) toward target by
	// one gradient or increment step of size learningRate, and
	// returns the signed TD error before the update.
	Update(state experience.State, action experience.Action,
		target, learningRate float64) float64
}

// MaxValue returns the largest estimate among the possible actions in
// state, and the per-action estimates in the same order as possible.
// An empty action set yields a zero value.
func MaxValue(m Model, state experience.State,
	possible []experience.Action) (float64, []float64) {

	if len(possible) == 0 {
		return 0, nil
	}

	values := make([]float64, len(possible))
	max := 0.0
	for i, a := range possible {
		values[i] = m.Predict(state, a)
		if i == 0 || values[i] > max {
			max = values[i]
		}
	}
	return max, values
}
