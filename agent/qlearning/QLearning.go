// Package qlearning implements tabular off-policy Q-Learning.
//
// Action selection is ε-greedy over a discretized value table; the
// update bootstraps from the maximum estimated value of the next
// state, regardless of the action the policy actually takes there.
package qlearning

import (
	"fmt"
	"math"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/policy"
	"github.com/robomesh/swarmlearn/agent/valuefn"
	"github.com/robomesh/swarmlearn/experience"
)

// QLearning implements the Q-Learning algorithm over a discretized
// state-action table. Each instance owns its table; robots sharing
// learned values must do so explicitly through coordinator
// synchronization.
type QLearning struct {
	*policy.EGreedy
	table   *valuefn.Table
	actions []experience.Action
	hyper   agent.Hyperparameters
}

// New creates a new QLearning agent acting over the environment's
// possible-action set.
func New(hyper agent.Hyperparameters, actions []experience.Action,
	seed uint64) (*QLearning, error) {

	if err := hyper.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("new: empty action set")
	}

	table := valuefn.NewTable()
	behaviour := policy.NewEGreedy(table, hyper.Exploration,
		hyper.ExplorationDecay, hyper.MinExploration, seed)

	return &QLearning{
		EGreedy: behaviour,
		table:   table,
		actions: actions,
		hyper:   hyper,
	}, nil
}

// Update applies one Q-Learning step for the transition and returns
// the TD-error magnitude.
func (q *QLearning) Update(exp experience.Experience) float64 {
	target := exp.Reward
	if !exp.Done {
		maxNext, _ := valuefn.MaxValue(q.table, exp.NextState, q.actions)
		target += q.hyper.Discount * maxNext
	}

	tdError := q.table.Update(exp.State, exp.Action, target,
		q.hyper.LearningRate)
	return math.Abs(tdError)
}

// SetLearningRate replaces the step size used by subsequent updates.
func (q *QLearning) SetLearningRate(lr float64) {
	if lr > 0 {
		q.hyper.LearningRate = lr
	}
}

// Table returns the agent's value table.
func (q *QLearning) Table() *valuefn.Table { return q.table }
