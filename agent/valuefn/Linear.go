package valuefn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/robomesh/swarmlearn/experience"
)

// Linear is a Model using linear function approximation: one weight
// vector per action over a fixed-length state encoding, trained by
// least-mean-squares updates. Weight vectors are created on first
// touch, initialized to zero.
type Linear struct {
	weights map[string]*mat.VecDense
	dims    int // state encoding uses 2*dims features plus a bias
}

// NewLinear returns a Linear model over states with dims position
// dimensions.
func NewLinear(dims int) *Linear {
	return &Linear{
		weights: make(map[string]*mat.VecDense),
		dims:    dims,
	}
}

// features encodes a state and appends a bias term.
func (l *Linear) features(state experience.State) *mat.VecDense {
	enc := state.Encode(l.dims)
	return mat.NewVecDense(len(enc)+1, append(enc, 1.0))
}

func (l *Linear) row(action experience.Action) *mat.VecDense {
	k := action.Key()
	w, ok := l.weights[k]
	if !ok {
		w = mat.NewVecDense(2*l.dims+1, nil)
		l.weights[k] = w
	}
	return w
}

// Predict returns the linear estimate w · x for the action's weights.
func (l *Linear) Predict(state experience.State,
	action experience.Action) float64 {
	return mat.Dot(l.row(action), l.features(state))
}

// Update performs one gradient step, w += learningRate * td * x, and
// returns the signed TD error before the step.
func (l *Linear) Update(state experience.State, action experience.Action,
	target, learningRate float64) float64 {

	x := l.features(state)
	w := l.row(action)

	tdError := target - mat.Dot(w, x)
	w.AddScaledVec(w, learningRate*tdError, x)
	return tdError
}

// Weights returns the weight vector learned for action, or nil if the
// action has never been updated.
func (l *Linear) Weights(action experience.Action) *mat.VecDense {
	return l.weights[action.Key()]
}
