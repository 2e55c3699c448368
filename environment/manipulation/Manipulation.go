// Package manipulation implements a 3D pick-and-place environment with
// a single graspable object and one or more target zones.
package manipulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/robomesh/swarmlearn/environment"
	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/utils/floatutils"
)

const (
	// StepLength is the displacement of one axis-aligned movement
	StepLength = 0.5

	// GraspRadius is the maximum gripper-object distance at which a
	// grasp succeeds
	GraspRadius = 0.3

	// SecondsPerStep converts step counts to simulated elapsed time
	SecondsPerStep = 0.1
)

// Zone is a spherical drop target with an acceptance tolerance.
type Zone struct {
	Center    [3]float64
	Tolerance float64
}

// Config describes a manipulation environment.
type Config struct {
	Workspace [3]float64 // upper bounds of the axis-aligned workspace
	Gripper   [3]float64 // gripper start position
	Object    [3]float64 // object start position
	Zones     []Zone
	MaxSteps  int
	Shaping   environment.Shaping
}

// NewConfig returns a Config for a cubic workspace with the object in
// the middle of the floor and a single target zone in the far corner.
func NewConfig(side float64, maxSteps int) Config {
	return Config{
		Workspace: [3]float64{side, side, side},
		Gripper:   [3]float64{0, 0, side / 2},
		Object:    [3]float64{side / 2, side / 2, 0},
		Zones: []Zone{
			{Center: [3]float64{side - 1, side - 1, 0}, Tolerance: 0.5},
		},
		MaxSteps: maxSteps,
		Shaping:  environment.NewShaping(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	for i, b := range c.Workspace {
		if b <= 0 {
			return fmt.Errorf("validate: non-positive workspace bound "+
				"on axis %d", i)
		}
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("validate: no target zones")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("validate: non-positive step cap %v", c.MaxSteps)
	}
	return nil
}

// Manipulation implements the pick-and-place task. The gripper moves
// by fixed increments along a single axis at a time; Grasp and Release
// are zero-displacement actions.
type Manipulation struct {
	config  Config
	gripper [3]float64
	object  [3]float64
	grasped bool
	steps   int
	actions []experience.Action
}

// New creates a new Manipulation environment from a Config.
func New(config Config) (*Manipulation, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	m := &Manipulation{config: config, actions: armActions()}
	m.Reset()
	return m, nil
}

// armActions returns the six axis-aligned movement actions plus Grasp
// and Release.
func armActions() []experience.Action {
	actions := make([]experience.Action, 0, 8)
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []float64{1, -1} {
			params := make([]float64, 3)
			params[axis] = sign * StepLength
			actions = append(actions, experience.Action{
				Type:       experience.Move,
				Parameters: params,
			})
		}
	}
	return append(actions,
		experience.Action{Type: experience.Grasp},
		experience.Action{Type: experience.Release},
	)
}

// PossibleActions returns the authoritative action set
func (m *Manipulation) PossibleActions() []experience.Action {
	return m.actions
}

// Reset returns the gripper and object to their start positions and
// releases any held object.
func (m *Manipulation) Reset() experience.State {
	m.gripper = m.config.Gripper
	m.object = m.config.Object
	m.grasped = false
	m.steps = 0
	return m.state([3]float64{})
}

// Step applies one action. The episode ends favorably only when the
// held object is released inside a target zone's tolerance.
func (m *Manipulation) Step(action experience.Action) (experience.State,
	float64, bool, environment.StepInfo, error) {

	if !environment.ValidAction(m, action) {
		return experience.State{}, 0, false, environment.StepInfo{},
			fmt.Errorf("step: action %v not in action set", action)
	}

	var velocity [3]float64
	success := false

	switch action.Type {
	case experience.Move:
		prev := m.gripper
		for axis := 0; axis < 3 && axis < len(action.Parameters); axis++ {
			bounds := r1.Interval{Min: 0, Max: m.config.Workspace[axis]}
			m.gripper[axis] = floatutils.ClipInterval(
				m.gripper[axis]+action.Parameters[axis], bounds)
			velocity[axis] = m.gripper[axis] - prev[axis]
		}
		if m.grasped {
			m.object = m.gripper
		}

	case experience.Grasp:
		if !m.grasped && m.distance(m.gripper, m.object) <= GraspRadius {
			m.grasped = true
			m.object = m.gripper
		}

	case experience.Release:
		if m.grasped {
			m.grasped = false
			success = m.inZone(m.object)
		}
	}

	m.steps++
	distance := m.taskDistance()
	done := success || m.steps >= m.config.MaxSteps

	speed := floats.Norm(velocity[:], 2)
	reward := m.config.Shaping.Reward(success, false, distance, speed)

	info := environment.StepInfo{
		Success:     success,
		Distance:    distance,
		TimeElapsed: float64(m.steps) * SecondsPerStep,
	}
	return m.state(velocity), reward, done, info, nil
}

// taskDistance is the distance the task still has to close: gripper to
// object while the object is free, object to the nearest zone once the
// object is held.
func (m *Manipulation) taskDistance() float64 {
	if !m.grasped {
		return m.distance(m.gripper, m.object)
	}

	nearest := math.Inf(1)
	for _, z := range m.config.Zones {
		if d := m.distance(m.object, z.Center); d < nearest {
			nearest = d
		}
	}
	return nearest
}

func (m *Manipulation) inZone(p [3]float64) bool {
	for _, z := range m.config.Zones {
		if m.distance(p, z.Center) <= z.Tolerance {
			return true
		}
	}
	return false
}

func (m *Manipulation) distance(a, b [3]float64) float64 {
	diff := []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
	return floats.Norm(diff, 2)
}

// state builds the current State. Sensor readings are the gripper to
// object distance, the task distance, and a grasp flag.
func (m *Manipulation) state(velocity [3]float64) experience.State {
	s := experience.NewState(m.gripper[:], velocity[:], m.steps)
	graspFlag := 0.0
	if m.grasped {
		graspFlag = 1.0
	}
	s.SensorReadings = []float64{
		m.distance(m.gripper, m.object),
		m.taskDistance(),
		graspFlag,
	}
	return s
}

// Grasped reports whether the gripper currently holds the object.
func (m *Manipulation) Grasped() bool { return m.grasped }

// Object returns the object's current position.
func (m *Manipulation) Object() [3]float64 { return m.object }
