// Package policy implements action-selection policies over value
// models.
package policy

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robomesh/swarmlearn/agent/valuefn"
	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a valuefn.Model.
//
// With probability ε an action is chosen uniformly at random;
// otherwise the highest-valued action is chosen, with ties broken
// uniformly at random among all maximal entries. In evaluation mode ε
// is treated as 0.
type EGreedy struct {
	model          valuefn.Model
	epsilon        float64
	decay          float64
	minEpsilon     float64
	source         rand.Source
	evaluationMode bool
}

// NewEGreedy constructs a new EGreedy policy over model, where epsilon
// is the probability of selecting a random action, decayed
// multiplicatively by decay down to minEpsilon.
func NewEGreedy(model valuefn.Model, epsilon, decay, minEpsilon float64,
	seed uint64) *EGreedy {

	return &EGreedy{
		model:      model,
		epsilon:    epsilon,
		decay:      decay,
		minEpsilon: minEpsilon,
		source:     rand.NewSource(seed),
	}
}

// SelectAction selects an action from the ε-greedy policy. It never
// fails: for a state with no learned signal every action estimate is
// equal, so the choice degenerates to uniform random.
func (p *EGreedy) SelectAction(state experience.State,
	possible []experience.Action) experience.Action {

	if len(possible) == 0 {
		return experience.Action{Type: experience.Wait}
	}

	epsilon := p.epsilon
	if p.evaluationMode {
		epsilon = 0
	}

	_, values := valuefn.MaxValue(p.model, state, possible)
	_, greedy := floatutils.MaxSlice(values)

	// Each action carries ε/n probability; the remaining 1-ε mass is
	// split evenly over the maximal entries.
	probabilities := make([]float64, len(possible))
	for i := range probabilities {
		probabilities[i] = epsilon / float64(len(possible))
	}
	greedyShare := (1.0 - epsilon) / float64(len(greedy))
	for _, i := range greedy {
		probabilities[i] += greedyShare
	}

	dist := distuv.NewCategorical(probabilities, p.source)
	return possible[int(dist.Rand())]
}

// DecayExploration applies one multiplicative decay step to ε, floored
// at the configured minimum.
func (p *EGreedy) DecayExploration() {
	p.epsilon = floatutils.Max(p.minEpsilon, p.epsilon*p.decay)
}

// Epsilon returns the current exploration rate.
func (p *EGreedy) Epsilon() float64 { return p.epsilon }

// SetEpsilon sets the exploration rate.
func (p *EGreedy) SetEpsilon(e float64) { p.epsilon = e }

// Eval sets the policy to evaluation mode
func (p *EGreedy) Eval() { p.evaluationMode = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.evaluationMode = false }

// IsEval indicates if the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.evaluationMode }
