// Package navigation implements a 2D point-robot navigation
// environment with circular obstacles and a goal region.
package navigation

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
	// StepLength is the distance covered by one movement action
	StepLength = 0.5

	// GoalRadius is the distance to the goal at which an episode
	// terminates successfully
	GoalRadius = 0.5

	// SecondsPerStep converts step counts to simulated elapsed time
	SecondsPerStep = 0.1
)

// Obstacle is a circular region the robot may not enter.
type Obstacle struct {
	X, Y, Radius float64
}

// Config describes a navigation environment.
type Config struct {
	Width, Height float64
	Start         [2]float64
	Goal          [2]float64
	Obstacles     []Obstacle
	MaxSteps      int
	Shaping       environment.Shaping
}

// NewConfig returns a Config for a width x height arena with the start
// in one corner, the goal in the far corner, and no obstacles.
func NewConfig(width, height float64, maxSteps int) Config {
	return Config{
		Width:    width,
		Height:   height,
		Start:    [2]float64{0, 0},
		Goal:     [2]float64{width - 1, height - 1},
		MaxSteps: maxSteps,
		Shaping:  environment.NewShaping(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("validate: non-positive arena dimensions "+
			"(%v x %v)", c.Width, c.Height)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("validate: non-positive step cap %v", c.MaxSteps)
	}
	return nil
}

// Navigation implements a 2D grid arena. The robot moves by half-unit
// steps in one of eight compass directions, or waits in place.
type Navigation struct {
	config   Config
	xBounds  r1.Interval
	yBounds  r1.Interval
	position [2]float64
	velocity [2]float64
	steps    int
	actions  []experience.Action
}

// New creates a new Navigation environment from a Config.
func New(config Config) (*Navigation, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	n := &Navigation{
		config:  config,
		xBounds: r1.Interval{Min: 0, Max: config.Width},
		yBounds: r1.Interval{Min: 0, Max: config.Height},
		actions: compassActions(),
	}
	n.Reset()
	return n, nil
}

// compassActions returns the eight compass movement actions plus Wait.
// Diagonal directions are normalized so every movement covers
// StepLength of distance.
func compassActions() []experience.Action {
	diag := 1.0 / math.Sqrt2
	directions := [][2]float64{
		{0, 1}, {diag, diag}, {1, 0}, {diag, -diag},
		{0, -1}, {-diag, -diag}, {-1, 0}, {-diag, diag},
	}

	actions := make([]experience.Action, 0, len(directions)+1)
	for _, d := range directions {
		actions = append(actions, experience.Action{
			Type:       experience.Move,
			Parameters: []float64{d[0] * StepLength, d[1] * StepLength},
		})
	}
	return append(actions, experience.Action{Type: experience.Wait})
}

// PossibleActions returns the authoritative action set
func (n *Navigation) PossibleActions() []experience.Action {
	return n.actions
}

// Reset places the robot back at the start position and zeroes the
// step counter.
func (n *Navigation) Reset() experience.State {
	n.position = n.config.Start
	n.velocity = [2]float64{}
	n.steps = 0
	return n.state()
}

// Step applies one action. The next position is clamped to the arena
// bounds; if it overlaps an obstacle the move is reverted and the
// transition counts as a collision.
func (n *Navigation) Step(action experience.Action) (experience.State,
	float64, bool, environment.StepInfo, error) {

	if !environment.ValidAction(n, action) {
		return experience.State{}, 0, false, environment.StepInfo{},
			fmt.Errorf("step: action %v not in action set", action)
	}

	next := n.position
	if action.Type == experience.Move && len(action.Parameters) >= 2 {
		dx, dy := action.Parameters[0], action.Parameters[1]
		// A zero-length direction cannot be normalized into a move
		if dx != 0 || dy != 0 {
			next[0] = floatutils.ClipInterval(n.position[0]+dx, n.xBounds)
			next[1] = floatutils.ClipInterval(n.position[1]+dy, n.yBounds)
		}
	}

	collision := n.collides(next)
	if collision {
		next = n.position
	}

	n.velocity = [2]float64{next[0] - n.position[0], next[1] - n.position[1]}
	n.position = next
	n.steps++

	distance := n.goalDistance()
	success := distance <= GoalRadius
	done := success || collision || n.steps >= n.config.MaxSteps

	speed := floats.Norm(n.velocity[:], 2)
	reward := n.config.Shaping.Reward(success, collision, distance, speed)

	info := environment.StepInfo{
		Success:     success,
		Collision:   collision,
		Distance:    distance,
		TimeElapsed: float64(n.steps) * SecondsPerStep,
	}
	return n.state(), reward, done, info, nil
}

// collides reports whether position p overlaps any obstacle.
func (n *Navigation) collides(p [2]float64) bool {
	for _, o := range n.config.Obstacles {
		if math.Hypot(p[0]-o.X, p[1]-o.Y) < o.Radius {
			return true
		}
	}
	return false
}

func (n *Navigation) goalDistance() float64 {
	return math.Hypot(
		n.position[0]-n.config.Goal[0],
		n.position[1]-n.config.Goal[1],
	)
}

// state builds the current State. Sensor readings are the distance to
// the goal followed by the clearance to each obstacle edge.
func (n *Navigation) state() experience.State {
	s := experience.NewState(n.position[:], n.velocity[:], n.steps)
	s.SensorReadings = make([]float64, 0, 1+len(n.config.Obstacles))
	s.SensorReadings = append(s.SensorReadings, n.goalDistance())
	for _, o := range n.config.Obstacles {
		clearance := math.Hypot(n.position[0]-o.X, n.position[1]-o.Y) - o.Radius
		s.SensorReadings = append(s.SensorReadings, clearance)
	}
	return s
}

// Goal returns the goal position.
func (n *Navigation) Goal() [2]float64 { return n.config.Goal }

// Position returns the robot's current position.
func (n *Navigation) Position() [2]float64 { return n.position }
