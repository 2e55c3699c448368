// Package sarsa implements tabular on-policy SARSA.
//
// Selection is the same ε-greedy rule as Q-Learning; the update
// bootstraps from the value of the next action the policy actually
// selected, which the caller supplies.
package sarsa

import (
	"fmt"
	"math"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/policy"
	"github.com/robomesh/swarmlearn/agent/valuefn"
	"github.com/robomesh/swarmlearn/experience"
)

// Sarsa implements the SARSA algorithm over a discretized state-action
// table.
type Sarsa struct {
	*policy.EGreedy
	table   *valuefn.Table
	actions []experience.Action
	hyper   agent.Hyperparameters
}

// New creates a new Sarsa agent acting over the environment's
// possible-action set.
func New(hyper agent.Hyperparameters, actions []experience.Action,
	seed uint64) (*Sarsa, error) {

	if err := hyper.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("new: empty action set")
	}

	table := valuefn.NewTable()
	behaviour := policy.NewEGreedy(table, hyper.Exploration,
		hyper.ExplorationDecay, hyper.MinExploration, seed)

	return &Sarsa{
		EGreedy: behaviour,
		table:   table,
		actions: actions,
		hyper:   hyper,
	}, nil
}

// target computes the SARSA update target for a transition.
func (s *Sarsa) target(exp experience.Experience, next experience.Action,
	hasNext bool) float64 {

	target := exp.Reward
	if !exp.Done && hasNext {
		target += s.hyper.Discount * s.table.Predict(exp.NextState, next)
	}
	return target
}

// TDError returns the signed TD error of the transition under the
// on-policy target, without changing the table.
func (s *Sarsa) TDError(exp experience.Experience, next experience.Action,
	hasNext bool) float64 {

	return s.target(exp, next, hasNext) -
		s.table.Predict(exp.State, exp.Action)
}

// UpdateOnPolicy applies one SARSA step using the next action the
// policy actually selected. hasNext is false on terminal transitions.
func (s *Sarsa) UpdateOnPolicy(exp experience.Experience,
	next experience.Action, hasNext bool) float64 {

	tdError := s.table.Update(exp.State, exp.Action,
		s.target(exp, next, hasNext), s.hyper.LearningRate)
	return math.Abs(tdError)
}

// Update applies one SARSA step with no next action available, which
// reduces the target to the immediate reward.
func (s *Sarsa) Update(exp experience.Experience) float64 {
	return s.UpdateOnPolicy(exp, experience.Action{}, false)
}

// SetLearningRate replaces the step size used by subsequent updates.
func (s *Sarsa) SetLearningRate(lr float64) {
	if lr > 0 {
		s.hyper.LearningRate = lr
	}
}

// Table returns the agent's value table.
func (s *Sarsa) Table() *valuefn.Table { return s.table }
