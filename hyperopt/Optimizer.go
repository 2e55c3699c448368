// Package hyperopt implements a random-search hyperparameter
// optimizer that switches to local perturbation of the best-known
// configuration once an initial exploration budget is spent.
package hyperopt

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/robomesh/swarmlearn/utils/floatutils"
)

const (
	// RandomTrials is the number of trials sampled uniformly before
	// perturbation of the incumbent begins
	RandomTrials = 10

	// PerturbFraction is the perturbation radius as a fraction of
	// each parameter's range
	PerturbFraction = 0.05
)

// Range declares the sampling interval of one named parameter. Log
// ranges are sampled log-uniformly and require positive bounds.
type Range struct {
	Min, Max float64
	Log      bool
}

// Validate ensures that the Range is valid
func (r Range) Validate() error {
	if r.Max < r.Min {
		return fmt.Errorf("validate: max (%v) below min (%v)", r.Max, r.Min)
	}
	if r.Log && r.Min <= 0 {
		return fmt.Errorf("validate: log range requires positive min, "+
			"have %v", r.Min)
	}
	return nil
}

// Optimizer suggests hyperparameter configurations and tracks the best
// scoring one observed.
type Optimizer struct {
	ranges    map[string]Range
	rng       *rand.Rand
	trials    int
	best      map[string]float64
	bestScore float64
}

// New creates an Optimizer over the named parameter ranges.
func New(ranges map[string]Range, seed uint64) (*Optimizer, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("new: no parameter ranges")
	}
	for name, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("new: parameter %q: %v", name, err)
		}
	}

	return &Optimizer{
		ranges: ranges,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// sample draws one value uniformly (or log-uniformly) from r.
func (o *Optimizer) sample(r Range) float64 {
	if r.Log {
		logMin, logMax := math.Log(r.Min), math.Log(r.Max)
		return math.Exp(logMin + o.rng.Float64()*(logMax-logMin))
	}
	return r.Min + o.rng.Float64()*(r.Max-r.Min)
}

// Suggest returns the next configuration to try: uniform samples for
// the first RandomTrials trials, then the best-known configuration
// perturbed by a random offset within ±PerturbFraction of each range.
func (o *Optimizer) Suggest() map[string]float64 {
	params := make(map[string]float64, len(o.ranges))

	explore := o.trials < RandomTrials || o.best == nil
	for name, r := range o.ranges {
		if explore {
			params[name] = o.sample(r)
			continue
		}

		offset := (2*o.rng.Float64() - 1) * PerturbFraction * (r.Max - r.Min)
		params[name] = floatutils.Clip(o.best[name]+offset, r.Min, r.Max)
	}
	return params
}

// Observe records the score a configuration achieved.
func (o *Optimizer) Observe(params map[string]float64, score float64) {
	o.trials++
	if o.best == nil || score > o.bestScore {
		best := make(map[string]float64, len(params))
		for name, v := range params {
			best[name] = v
		}
		o.best = best
		o.bestScore = score
	}
}

// Best returns the best (parameters, score) pair seen. ok is false
// before the first Observe call.
func (o *Optimizer) Best() (map[string]float64, float64, bool) {
	if o.best == nil {
		return nil, 0, false
	}

	best := make(map[string]float64, len(o.best))
	for name, v := range o.best {
		best[name] = v
	}
	return best, o.bestScore, true
}

// Trials returns the number of observed trials.
func (o *Optimizer) Trials() int { return o.trials }
