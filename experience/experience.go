// Package experience implements the value types passed between robots,
// environments, and learners: states, actions, and the transitions
// built from them.
package experience

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ActionType denotes the kind of command an Action encodes.
type ActionType int

const (
	Move ActionType = iota
	Rotate
	Grasp
	Release
	Wait
)

func (a ActionType) String() string {
	switch a {
	case Move:
		return "Move"
	case Rotate:
		return "Rotate"
	case Grasp:
		return "Grasp"
	case Release:
		return "Release"
	default:
		return "Wait"
	}
}

// State is a snapshot of one robot at one timestep. States are value
// objects: a transition never mutates a State, it constructs a new one.
type State struct {
	Position       []float64
	Velocity       []float64
	Orientation    [3]float64
	SensorReadings []float64
	Timestamp      int
	RobotID        int // meaningful only in multi-robot environments
}

// NewState returns a State with position and velocity copied so that
// callers may reuse their slices.
func NewState(position, velocity []float64, timestamp int) State {
	p := make([]float64, len(position))
	copy(p, position)
	v := make([]float64, len(velocity))
	copy(v, velocity)
	return State{Position: p, Velocity: v, Timestamp: timestamp}
}

// Key returns the discretized bucket key of the state. Each continuous
// component is rounded to one decimal place, so states within 0.05 of
// each other in every dimension share a bucket.
func (s State) Key() string {
	var b strings.Builder
	for i, p := range s.Position {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(round1(p), 'f', 1, 64))
	}
	b.WriteByte('|')
	for i, v := range s.Velocity {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(round1(v), 'f', 1, 64))
	}
	return b.String()
}

// Encode returns a fixed-length numeric encoding of the state for
// nearest-neighbour retrieval. Position and velocity components are
// laid out first; missing dimensions are zero-padded.
func (s State) Encode(dims int) []float64 {
	enc := make([]float64, 2*dims)
	for i := 0; i < dims && i < len(s.Position); i++ {
		enc[i] = s.Position[i]
	}
	for i := 0; i < dims && i < len(s.Velocity); i++ {
		enc[dims+i] = s.Velocity[i]
	}
	return enc
}

// DistanceTo returns the Euclidean distance between the positions of
// two states, over the shorter of the two position vectors.
func (s State) DistanceTo(other State) float64 {
	n := len(s.Position)
	if len(other.Position) < n {
		n = len(other.Position)
	}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = s.Position[i] - other.Position[i]
	}
	return floats.Norm(diff, 2)
}

// Speed returns the Euclidean norm of the velocity vector.
func (s State) Speed() float64 {
	return floats.Norm(s.Velocity, 2)
}

// Action is one command a robot can issue. Actions always come from an
// environment's possible-action set and are never synthesized freely.
type Action struct {
	Type       ActionType
	Parameters []float64
	Duration   float64
}

// Key returns the discretized key of the action, used alongside a
// state key to address value-table entries.
func (a Action) Key() string {
	var b strings.Builder
	b.WriteString(a.Type.String())
	for _, p := range a.Parameters {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(round1(p), 'f', 1, 64))
	}
	return b.String()
}

func (a Action) String() string {
	return fmt.Sprintf("%v%v", a.Type, a.Parameters)
}

// Equal reports whether two actions denote the same command.
func (a Action) Equal(other Action) bool {
	return a.Key() == other.Key()
}

// Experience is the atomic unit of learning: one environment
// transition. Experiences are immutable once constructed.
type Experience struct {
	State      State
	Action     Action
	Reward     float64
	NextState  State
	Done       bool
	Importance float64 // set by hindsight relabeling, 0 otherwise
}

// Encode returns a fixed-length encoding of the transition's starting
// state, used as the similarity-search embedding.
func (e Experience) Encode(dims int) []float64 {
	return e.State.Encode(dims)
}

func round1(f float64) float64 {
	// Round half away from zero to one decimal place. strconv
	// FormatFloat would round again, but rounding here first keeps
	// -0.04 and 0.04 in the same bucket as 0.0.
	if f < 0 {
		return float64(int(f*10-0.5)) / 10
	}
	return float64(int(f*10+0.5)) / 10
}
