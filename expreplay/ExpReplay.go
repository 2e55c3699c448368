// Package expreplay implements experience replay buffers with uniform
// and priority-proportional sampling, nearest-neighbour retrieval, and
// hindsight goal relabeling.
package expreplay

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robomesh/swarmlearn/experience"
)

// Metadata accompanies a stored experience. TDError drives the
// priority assigned on insertion.
type Metadata struct {
	TDError float64
	RobotID int
	Episode int
}

// Config implements a specific configuration of a replay Buffer.
type Config struct {
	MaxSize      int
	Prioritized  bool
	Alpha        float64 // priority exponent
	Beta         float64 // importance-sampling exponent
	Epsilon      float64 // keeps zero-TD-error priorities positive
	EncodingDims int     // state-encoding length for SampleSimilar
}

// NewConfig returns a Config with the standard prioritization
// constants.
func NewConfig(maxSize int, prioritized bool) Config {
	return Config{
		MaxSize:      maxSize,
		Prioritized:  prioritized,
		Alpha:        0.6,
		Beta:         0.4,
		Epsilon:      1e-6,
		EncodingDims: 3,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.MaxSize < 1 {
		return fmt.Errorf("validate: maxSize must be >= 1, have %v",
			c.MaxSize)
	}
	if c.Prioritized {
		if c.Alpha < 0 {
			return fmt.Errorf("validate: alpha cannot be negative")
		}
		if c.Epsilon <= 0 {
			return fmt.Errorf("validate: epsilon must be positive")
		}
	}
	if c.EncodingDims < 1 {
		return fmt.Errorf("validate: encodingDims must be >= 1, have %v",
			c.EncodingDims)
	}
	return nil
}

// Create creates and returns the Buffer with the specified Config.
func (c Config) Create(seed uint64) (*Buffer, error) {
	return New(c, seed)
}

// Sample is one batch drawn from a Buffer: the experiences, their
// buffer indices at sampling time, and a per-sample
// importance-sampling weight. Uniform sampling yields all-one weights;
// prioritized sampling yields weights normalized so the maximum is
// exactly 1.
type Sample struct {
	Experiences []experience.Experience
	Indices     []int
	Weights     []float64
}

type entry struct {
	exp      experience.Experience
	priority float64
}

// Buffer is a bounded replay buffer with first-in-first-out eviction.
// Store, Sample, and the priority operations are safe for concurrent
// use by multiple robots.
type Buffer struct {
	mu          sync.Mutex
	config      Config
	entries     []entry
	rng         *rand.Rand
	source      rand.Source
	maxPriority float64
}

// New creates and returns a new Buffer.
func New(config Config, seed uint64) (*Buffer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	source := rand.NewSource(seed)
	return &Buffer{
		config:      config,
		entries:     make([]entry, 0, config.MaxSize),
		rng:         rand.New(source),
		source:      source,
		maxPriority: 1.0,
	}, nil
}

// priority computes the insertion priority for a TD error.
func (b *Buffer) priority(tdError float64) float64 {
	if !b.config.Prioritized {
		return 1.0
	}
	return math.Pow(math.Abs(tdError)+b.config.Epsilon, b.config.Alpha)
}

// Store inserts an experience, evicting the oldest entry once the
// buffer exceeds its maximum size. Each call is atomic with respect to
// size accounting and eviction.
func (b *Buffer) Store(exp experience.Experience, meta Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.priority(meta.TDError)
	if p > b.maxPriority {
		b.maxPriority = p
	}

	b.entries = append(b.entries, entry{exp: exp, priority: p})
	if len(b.entries) > b.config.MaxSize {
		b.entries = b.entries[1:]
	}
}

// Sample draws a batch of batchSize experiences. Prioritized buffers
// draw in proportion to stored priority, with replacement; uniform
// buffers draw without replacement, clamped to the buffer size.
func (b *Buffer) Sample(batchSize int) (Sample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return Sample{}, &BufferError{Op: "sample", Err: errEmptyBuffer}
	}
	if batchSize < 1 {
		return Sample{}, &BufferError{Op: "sample", Err: errBadBatchSize}
	}

	if b.config.Prioritized {
		return b.samplePrioritized(batchSize), nil
	}
	return b.sampleUniform(batchSize), nil
}

func (b *Buffer) sampleUniform(batchSize int) Sample {
	if batchSize > len(b.entries) {
		batchSize = len(b.entries)
	}

	s := Sample{
		Experiences: make([]experience.Experience, batchSize),
		Indices:     make([]int, batchSize),
		Weights:     make([]float64, batchSize),
	}
	for i, index := range b.rng.Perm(len(b.entries))[:batchSize] {
		s.Experiences[i] = b.entries[index].exp
		s.Indices[i] = index
		s.Weights[i] = 1.0
	}
	return s
}

func (b *Buffer) samplePrioritized(batchSize int) Sample {
	n := len(b.entries)

	priorities := make([]float64, n)
	for i := range b.entries {
		priorities[i] = b.entries[i].priority
	}
	total := floats.Sum(priorities)
	dist := distuv.NewCategorical(priorities, b.source)

	s := Sample{
		Experiences: make([]experience.Experience, batchSize),
		Indices:     make([]int, batchSize),
		Weights:     make([]float64, batchSize),
	}
	for i := 0; i < batchSize; i++ {
		index := int(dist.Rand())
		s.Experiences[i] = b.entries[index].exp
		s.Indices[i] = index

		// w_i = (N * P(i))^(-beta), bias correction for the
		// non-uniform draw
		prob := b.entries[index].priority / total
		s.Weights[i] = math.Pow(float64(n)*prob, -b.config.Beta)
	}

	// Normalize so the largest weight is exactly 1
	max := floats.Max(s.Weights)
	if max > 0 {
		floats.Scale(1.0/max, s.Weights)
	}
	return s
}

// SampleSimilar returns the k stored experiences whose starting-state
// encodings lie nearest to state, ordered nearest first.
func (b *Buffer) SampleSimilar(state experience.State,
	k int) []experience.Experience {

	b.mu.Lock()
	defer b.mu.Unlock()

	if k > len(b.entries) {
		k = len(b.entries)
	}
	if k < 1 {
		return nil
	}

	query := state.Encode(b.config.EncodingDims)
	type scored struct {
		index    int
		distance float64
	}

	distances := make([]scored, len(b.entries))
	for i := range b.entries {
		enc := b.entries[i].exp.Encode(b.config.EncodingDims)
		floats.Sub(enc, query)
		distances[i] = scored{index: i, distance: floats.Norm(enc, 2)}
	}
	sort.Slice(distances, func(i, j int) bool {
		return distances[i].distance < distances[j].distance
	})

	nearest := make([]experience.Experience, k)
	for i := 0; i < k; i++ {
		nearest[i] = b.entries[distances[i].index].exp
	}
	return nearest
}

// UpdatePriorities folds freshly observed TD errors into the buffer's
// maximum-priority watermark. Historical entries keep the priority
// they were stored with; priority tracking is append-only.
func (b *Buffer) UpdatePriorities(indices []int, tdErrors []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, td := range tdErrors {
		if p := b.priority(td); p > b.maxPriority {
			b.maxPriority = p
		}
	}
}

// MaxPriority returns the largest priority observed so far.
func (b *Buffer) MaxPriority() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxPriority
}

// Len returns the current number of stored experiences.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// MaxSize returns the maximum number of experiences the buffer holds.
func (b *Buffer) MaxSize() int { return b.config.MaxSize }

// at returns the stored experience at index i, oldest first.
func (b *Buffer) at(i int) experience.Experience {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries[i].exp
}
