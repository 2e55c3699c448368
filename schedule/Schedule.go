// Package schedule implements learning-rate schedules as pure
// functions of the step count.
package schedule

import (
	"fmt"
	"math"

	"github.com/robomesh/swarmlearn/utils/floatutils"
)

// Decay names the shape of a learning-rate schedule.
type Decay string

const (
	Linear      Decay = "linear"
	Exponential Decay = "exponential"
	Cosine      Decay = "cosine"

	// Adaptive is reserved for schedules reacting to observed
	// progress; it currently follows the cosine shape.
	Adaptive Decay = "adaptive"
)

// ValidDecay reports whether d names a known schedule shape.
func ValidDecay(d Decay) bool {
	switch d {
	case Linear, Exponential, Cosine, Adaptive:
		return true
	}
	return false
}

// Schedule maps a step count to a learning rate. The rate decays from
// InitialRate to FinalRate over DecaySteps, optionally preceded by a
// linear warm-up over WarmupSteps, and is always clamped to
// [FinalRate, InitialRate].
type Schedule struct {
	Shape       Decay
	InitialRate float64
	FinalRate   float64
	DecaySteps  int
	WarmupSteps int
}

// New creates a new Schedule.
func New(shape Decay, initialRate, finalRate float64, decaySteps,
	warmupSteps int) (*Schedule, error) {

	if !ValidDecay(shape) {
		return nil, fmt.Errorf("new: no such decay shape %q", shape)
	}
	if initialRate <= 0 || finalRate <= 0 {
		return nil, fmt.Errorf("new: rates must be positive, have "+
			"initial %v, final %v", initialRate, finalRate)
	}
	if finalRate > initialRate {
		return nil, fmt.Errorf("new: final rate (%v) above initial rate "+
			"(%v)", finalRate, initialRate)
	}
	if decaySteps < 1 {
		return nil, fmt.Errorf("new: decaySteps must be >= 1, have %v",
			decaySteps)
	}

	return &Schedule{
		Shape:       shape,
		InitialRate: initialRate,
		FinalRate:   finalRate,
		DecaySteps:  decaySteps,
		WarmupSteps: warmupSteps,
	}, nil
}

// Rate returns the learning rate at step.
func (s *Schedule) Rate(step int) float64 {
	if s.WarmupSteps > 0 && step < s.WarmupSteps {
		warmup := float64(step+1) / float64(s.WarmupSteps)
		return floatutils.Clip(s.InitialRate*warmup, s.FinalRate,
			s.InitialRate)
	}

	progress := float64(step-s.WarmupSteps) / float64(s.DecaySteps)
	if progress > 1 {
		progress = 1
	}

	var rate float64
	switch s.Shape {
	case Linear:
		rate = s.InitialRate + (s.FinalRate-s.InitialRate)*progress

	case Exponential:
		rate = s.InitialRate *
			math.Pow(s.FinalRate/s.InitialRate, progress)

	default: // Cosine and, for now, Adaptive
		rate = s.FinalRate + 0.5*(s.InitialRate-s.FinalRate)*
			(1+math.Cos(math.Pi*progress))
	}

	return floatutils.Clip(rate, s.FinalRate, s.InitialRate)
}
