// Package batchq implements a batch value learner in the style of
// fitted Q iteration: transitions accumulate in a bounded FIFO cache
// and the value model is trained on uniformly sampled mini-batches.
//
// The value model is abstract (valuefn.Model), so the estimator can be
// a lookup table, a linear regressor, or any other function
// approximator.
package batchq

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/policy"
	"github.com/robomesh/swarmlearn/agent/valuefn"
	"github.com/robomesh/swarmlearn/experience"
)

const (
	// DefaultBufferCap bounds the internal experience cache
	DefaultBufferCap = 10_000

	// DecayEvery is the number of TrainStep calls between exploration
	// decays
	DecayEvery = 100
)

// Config describes a BatchQ agent.
type Config struct {
	Hyper     agent.Hyperparameters
	BatchSize int
	BufferCap int
}

// NewConfig returns a Config with the default cache bound.
func NewConfig(hyper agent.Hyperparameters, batchSize int) Config {
	return Config{Hyper: hyper, BatchSize: batchSize,
		BufferCap: DefaultBufferCap}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.Hyper.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("validate: non-positive batch size %v",
			c.BatchSize)
	}
	if c.BufferCap < c.BatchSize {
		return fmt.Errorf("validate: buffer capacity (%v) below batch "+
			"size (%v)", c.BufferCap, c.BatchSize)
	}
	return nil
}

// BatchQ implements the batch value learner.
type BatchQ struct {
	*policy.EGreedy
	model      valuefn.Model
	actions    []experience.Action
	config     Config
	buffer     []experience.Experience
	rng        *rand.Rand
	trainCalls int
}

// New creates a new BatchQ agent backed by model. The model is shared
// with the behaviour policy so value updates are reflected in action
// selection immediately.
func New(config Config, model valuefn.Model,
	actions []experience.Action, seed uint64) (*BatchQ, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if model == nil {
		return nil, fmt.Errorf("new: nil value model")
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("new: empty action set")
	}

	behaviour := policy.NewEGreedy(model, config.Hyper.Exploration,
		config.Hyper.ExplorationDecay, config.Hyper.MinExploration, seed)

	return &BatchQ{
		EGreedy: behaviour,
		model:   model,
		actions: actions,
		config:  config,
		buffer:  make([]experience.Experience, 0, config.BatchSize),
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// target computes the bootstrapped update target for one transition.
func (b *BatchQ) target(exp experience.Experience) float64 {
	target := exp.Reward
	if !exp.Done {
		maxNext, _ := valuefn.MaxValue(b.model, exp.NextState, b.actions)
		target += b.config.Hyper.Discount * maxNext
	}
	return target
}

// Update adds the transition to the FIFO cache, evicting the oldest
// entry past capacity, and returns the transition's current TD-error
// magnitude as a diagnostic. Model training happens in TrainStep.
func (b *BatchQ) Update(exp experience.Experience) float64 {
	b.buffer = append(b.buffer, exp)
	if len(b.buffer) > b.config.BufferCap {
		b.buffer = b.buffer[1:]
	}

	estimate := b.model.Predict(exp.State, exp.Action)
	return math.Abs(b.target(exp) - estimate)
}

// TrainStep samples one mini-batch uniformly without replacement and
// trains the model on squared TD errors, returning the mean loss. It
// is a no-op while the cache holds fewer than one batch. Every
// DecayEvery calls the exploration rate is decayed once.
func (b *BatchQ) TrainStep() (float64, bool) {
	b.trainCalls++
	if b.trainCalls%DecayEvery == 0 {
		b.DecayExploration()
	}

	if len(b.buffer) < b.config.BatchSize {
		return 0, false
	}

	totalLoss := 0.0
	for _, i := range b.rng.Perm(len(b.buffer))[:b.config.BatchSize] {
		exp := b.buffer[i]
		tdError := b.model.Update(exp.State, exp.Action, b.target(exp),
			b.config.Hyper.LearningRate)
		totalLoss += tdError * tdError
	}
	return totalLoss / float64(b.config.BatchSize), true
}

// SetLearningRate replaces the step size used by subsequent batches.
func (b *BatchQ) SetLearningRate(lr float64) {
	if lr > 0 {
		b.config.Hyper.LearningRate = lr
	}
}

// Len returns the number of cached transitions.
func (b *BatchQ) Len() int { return len(b.buffer) }

// Model returns the agent's value model.
func (b *BatchQ) Model() valuefn.Model { return b.model }
