// Package reinforce implements a tabular stochastic policy trained by
// the REINFORCE policy-gradient rule with a normalized-return
// baseline.
package reinforce

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/utils/floatutils"
)

// WeightFloor is the smallest weight any action may hold in a state's
// distribution. Flooring keeps every action reachable and guards the
// renormalization against a degenerate all-zero distribution.
const WeightFloor = 1e-3

// stateDist is one state's action distribution. Weights are kept
// normalized to sum to 1 after every update.
type stateDist struct {
	actions []experience.Action
	index   map[string]int // action key -> position in actions
	weights []float64
}

// Reinforce implements the REINFORCE algorithm over per-state action
// probability tables.
type Reinforce struct {
	policy         map[string]*stateDist
	hyper          agent.Hyperparameters
	exploration    float64
	source         rand.Source
	evaluationMode bool
}

// New creates a new Reinforce agent.
func New(hyper agent.Hyperparameters, seed uint64) (*Reinforce, error) {
	if err := hyper.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Reinforce{
		policy:      make(map[string]*stateDist),
		hyper:       hyper,
		exploration: hyper.Exploration,
		source:      rand.NewSource(seed),
	}, nil
}

// dist returns the distribution for state, materializing a uniform
// distribution over possible on first sight.
func (r *Reinforce) dist(state experience.State,
	possible []experience.Action) *stateDist {

	k := state.Key()
	d, ok := r.policy[k]
	if ok {
		return d
	}

	d = &stateDist{
		actions: possible,
		index:   make(map[string]int, len(possible)),
		weights: make([]float64, len(possible)),
	}
	for i, a := range possible {
		d.index[a.Key()] = i
		d.weights[i] = 1.0 / float64(len(possible))
	}
	r.policy[k] = d
	return d
}

// SelectAction samples an action from the state's probability table,
// uniform for an unseen state. In evaluation mode the highest-weight
// action is returned instead.
func (r *Reinforce) SelectAction(state experience.State,
	possible []experience.Action) experience.Action {

	if len(possible) == 0 {
		return experience.Action{Type: experience.Wait}
	}

	d := r.dist(state, possible)

	if r.evaluationMode {
		_, greedy := floatutils.MaxSlice(d.weights)
		return d.actions[greedy[0]]
	}

	sampler := distuv.NewCategorical(d.weights, r.source)
	return d.actions[int(sampler.Rand())]
}

// Update treats the transition as a one-step trajectory.
func (r *Reinforce) Update(exp experience.Experience) float64 {
	return r.UpdateEpisode([]experience.Experience{exp})
}

// UpdateEpisode applies the REINFORCE update for a whole trajectory:
// discounted returns are computed backward from the episode end,
// normalized to zero mean and unit variance across the trajectory, and
// each taken action's weight is nudged by learningRate times its
// normalized return. Weights are floored and renormalized after every
// step so each state's distribution stays a probability simplex.
//
// The mean update magnitude across steps is returned.
func (r *Reinforce) UpdateEpisode(trajectory []experience.Experience) float64 {
	if len(trajectory) == 0 {
		return 0
	}

	returns := make([]float64, len(trajectory))
	running := 0.0
	for t := len(trajectory) - 1; t >= 0; t-- {
		running = trajectory[t].Reward + r.hyper.Discount*running
		returns[t] = running
	}

	// Baseline subtraction. A single-step trajectory, or one with
	// identical returns, has no variance to normalize by; its raw
	// return is used so the signal is not silently zeroed.
	if len(returns) > 1 {
		mean, std := stat.MeanStdDev(returns, nil)
		if std > 0 {
			for i := range returns {
				returns[i] = (returns[i] - mean) / std
			}
		} else {
			for i := range returns {
				returns[i] -= mean
			}
		}
	}

	totalMagnitude := 0.0
	for t, exp := range trajectory {
		d, ok := r.policy[exp.State.Key()]
		if !ok {
			// The state was never selected from; learn the taken
			// action as the only known option.
			d = r.dist(exp.State, []experience.Action{exp.Action})
		}

		i, ok := d.index[exp.Action.Key()]
		if !ok {
			continue
		}

		step := r.hyper.LearningRate * returns[t]
		d.weights[i] += step
		d.renormalize()
		totalMagnitude += math.Abs(step)
	}
	return totalMagnitude / float64(len(trajectory))
}

// renormalize floors every weight and rescales the distribution to sum
// to 1.
func (d *stateDist) renormalize() {
	sum := 0.0
	for i, w := range d.weights {
		if w < WeightFloor {
			d.weights[i] = WeightFloor
		}
		sum += d.weights[i]
	}
	for i := range d.weights {
		d.weights[i] /= sum
	}
}

// SetLearningRate replaces the step size used by subsequent updates.
func (r *Reinforce) SetLearningRate(lr float64) {
	if lr > 0 {
		r.hyper.LearningRate = lr
	}
}

// Probabilities returns a copy of the action distribution stored for
// state, or nil for an unseen state.
func (r *Reinforce) Probabilities(state experience.State) []float64 {
	d, ok := r.policy[state.Key()]
	if !ok {
		return nil
	}
	probs := make([]float64, len(d.weights))
	copy(probs, d.weights)
	return probs
}

// DecayExploration applies one multiplicative decay step to the
// exploration rate. The rate is tracked for schedule parity with the
// value-based agents; selection stochasticity comes from the policy
// distribution itself.
func (r *Reinforce) DecayExploration() {
	r.exploration = floatutils.Max(r.hyper.MinExploration,
		r.exploration*r.hyper.ExplorationDecay)
}

// Exploration returns the tracked exploration rate.
func (r *Reinforce) Exploration() float64 { return r.exploration }

// Eval sets the policy to evaluation mode
func (r *Reinforce) Eval() { r.evaluationMode = true }

// Train sets the policy to training mode
func (r *Reinforce) Train() { r.evaluationMode = false }

// IsEval indicates if the policy is in evaluation mode
func (r *Reinforce) IsEval() bool { return r.evaluationMode }
