// Package coordination implements a shared 2D environment in which
// several robots cooperate to occupy a set of weighted target zones.
//
// The shared arena is stepped one robot at a time. Each robot interacts
// through its own RobotView, which satisfies environment.Environment,
// so a training coordinator can treat coordination exactly like the
// single-robot environments. Each step is rewarded with the robot's own
// shaped reward; the robot whose step completes full zone occupancy
// additionally receives a terminal bonus scaled by the total zone
// weight. The team reward of an episode is therefore the sum of the
// individually shaped per-robot rewards.
package coordination

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/robomesh/swarmlearn/environment"
	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/utils/floatutils"
)

const (
	// StepLength is the distance covered by one movement action
	StepLength = 0.5

	// RobotRadius is used for robot-robot collision checks
	RobotRadius = 0.25

	// SecondsPerStep converts step counts to simulated elapsed time
	SecondsPerStep = 0.1
)

// Zone is a circular target region with a weight expressing its
// importance to the team.
type Zone struct {
	X, Y, Radius, Weight float64
}

// Config describes a coordination environment.
type Config struct {
	Width, Height float64
	NumRobots     int
	Starts        [][2]float64 // one per robot; defaults spread on the left edge
	Zones         []Zone
	MaxSteps      int // per-robot step cap
	Shaping       environment.Shaping
}

// NewConfig returns a Config for numRobots robots in a width x height
// arena with one unit-weight zone per robot spread along the far edge.
func NewConfig(width, height float64, numRobots, maxSteps int) Config {
	zones := make([]Zone, numRobots)
	starts := make([][2]float64, numRobots)
	for i := 0; i < numRobots; i++ {
		frac := (float64(i) + 0.5) / float64(numRobots)
		zones[i] = Zone{X: width - 1, Y: frac * height, Radius: 0.5, Weight: 1}
		starts[i] = [2]float64{0, frac * height}
	}
	return Config{
		Width:     width,
		Height:    height,
		NumRobots: numRobots,
		Starts:    starts,
		Zones:     zones,
		MaxSteps:  maxSteps,
		Shaping:   environment.NewShaping(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.NumRobots < 1 {
		return fmt.Errorf("validate: need at least one robot, have %v",
			c.NumRobots)
	}
	if len(c.Starts) != c.NumRobots {
		return fmt.Errorf("validate: %v start positions for %v robots",
			len(c.Starts), c.NumRobots)
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("validate: no target zones")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("validate: non-positive step cap %v", c.MaxSteps)
	}
	return nil
}

type robotState struct {
	position [2]float64
	velocity [2]float64
	steps    int
}

// Coordination is the shared arena. It is not itself an
// environment.Environment; robots interact through RobotViews, which
// may step it concurrently.
type Coordination struct {
	mu      sync.Mutex
	config  Config
	xBounds r1.Interval
	yBounds r1.Interval
	robots  []robotState
	done    bool
	actions []experience.Action
}

// New creates a new Coordination arena from a Config.
func New(config Config) (*Coordination, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	c := &Coordination{
		config:  config,
		xBounds: r1.Interval{Min: 0, Max: config.Width},
		yBounds: r1.Interval{Min: 0, Max: config.Height},
		robots:  make([]robotState, config.NumRobots),
		actions: compassActions(),
	}
	c.reset()
	return c, nil
}

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

// RobotView returns the per-robot environment facade for robot id.
func (c *Coordination) RobotView(id int) (*RobotView, error) {
	if id < 0 || id >= c.config.NumRobots {
		return nil, fmt.Errorf("robotView: no robot %v in arena of %v",
			id, c.config.NumRobots)
	}
	return &RobotView{arena: c, id: id}, nil
}

func (c *Coordination) reset() {
	for i := range c.robots {
		c.robots[i] = robotState{position: c.config.Starts[i]}
	}
	c.done = false
}

// resetRobot re-initializes one robot. The first reset after a
// finished episode re-initializes the whole arena.
func (c *Coordination) resetRobot(id int) experience.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		c.reset()
	}
	c.robots[id] = robotState{position: c.config.Starts[id]}
	return c.state(id)
}

// stepRobot advances one robot by one action.
func (c *Coordination) stepRobot(id int, action experience.Action) (
	experience.State, float64, bool, environment.StepInfo, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	robot := &c.robots[id]

	next := robot.position
	if action.Type == experience.Move && len(action.Parameters) >= 2 {
		dx, dy := action.Parameters[0], action.Parameters[1]
		if dx != 0 || dy != 0 {
			next[0] = floatutils.ClipInterval(robot.position[0]+dx, c.xBounds)
			next[1] = floatutils.ClipInterval(robot.position[1]+dy, c.yBounds)
		}
	}

	collision := c.collides(id, next)
	if collision {
		next = robot.position
	}

	robot.velocity = [2]float64{
		next[0] - robot.position[0],
		next[1] - robot.position[1],
	}
	robot.position = next
	robot.steps++

	occupied := c.allZonesOccupied()
	success := occupied && !c.done
	if occupied {
		c.done = true
	}

	distance := c.nearestOpenZone(robot.position)
	speed := floats.Norm(robot.velocity[:], 2)
	reward := c.config.Shaping.Reward(success, collision, distance, speed)
	if success {
		// Terminal team bonus for the robot whose step completed
		// full occupancy, scaled by the weight of the zones won.
		reward += c.totalZoneWeight()
	}

	done := c.done || collision || robot.steps >= c.config.MaxSteps

	info := environment.StepInfo{
		Success:     success,
		Collision:   collision,
		Distance:    distance,
		TimeElapsed: float64(robot.steps) * SecondsPerStep,
	}
	return c.state(id), reward, done, info, nil
}

// collides reports whether robot id at position p would overlap another
// robot.
func (c *Coordination) collides(id int, p [2]float64) bool {
	for i := range c.robots {
		if i == id {
			continue
		}
		other := c.robots[i].position
		if math.Hypot(p[0]-other[0], p[1]-other[1]) < 2*RobotRadius {
			return true
		}
	}
	return false
}

// zoneOccupied reports whether any robot sits inside zone z.
func (c *Coordination) zoneOccupied(z Zone) bool {
	for i := range c.robots {
		p := c.robots[i].position
		if math.Hypot(p[0]-z.X, p[1]-z.Y) <= z.Radius {
			return true
		}
	}
	return false
}

func (c *Coordination) allZonesOccupied() bool {
	for _, z := range c.config.Zones {
		if !c.zoneOccupied(z) {
			return false
		}
	}
	return true
}

// nearestOpenZone returns the distance from p to the closest zone not
// yet occupied, or to the closest zone overall once all are occupied.
func (c *Coordination) nearestOpenZone(p [2]float64) float64 {
	nearest := math.Inf(1)
	nearestAny := math.Inf(1)
	for _, z := range c.config.Zones {
		d := math.Hypot(p[0]-z.X, p[1]-z.Y)
		if d < nearestAny {
			nearestAny = d
		}
		if !c.zoneOccupied(z) && d < nearest {
			nearest = d
		}
	}
	if math.IsInf(nearest, 1) {
		return nearestAny
	}
	return nearest
}

func (c *Coordination) totalZoneWeight() float64 {
	total := 0.0
	for _, z := range c.config.Zones {
		total += z.Weight
	}
	return total
}

// state builds robot id's view of the arena. Sensor readings are the
// distance to each zone followed by the distance to every other robot.
func (c *Coordination) state(id int) experience.State {
	robot := c.robots[id]
	s := experience.NewState(robot.position[:], robot.velocity[:], robot.steps)
	s.RobotID = id

	s.SensorReadings = make([]float64, 0,
		len(c.config.Zones)+len(c.robots)-1)
	for _, z := range c.config.Zones {
		s.SensorReadings = append(s.SensorReadings,
			math.Hypot(robot.position[0]-z.X, robot.position[1]-z.Y))
	}
	for i := range c.robots {
		if i == id {
			continue
		}
		other := c.robots[i].position
		s.SensorReadings = append(s.SensorReadings,
			math.Hypot(robot.position[0]-other[0], robot.position[1]-other[1]))
	}
	return s
}

// RobotView adapts one robot's slice of the shared arena to the
// environment.Environment interface.
type RobotView struct {
	arena *Coordination
	id    int
}

// Reset re-initializes this robot. The first Reset after a finished
// episode re-initializes the shared arena as well.
func (v *RobotView) Reset() experience.State {
	return v.arena.resetRobot(v.id)
}

// Step applies one action for this robot in the shared arena.
func (v *RobotView) Step(action experience.Action) (experience.State,
	float64, bool, environment.StepInfo, error) {

	if !environment.ValidAction(v, action) {
		return experience.State{}, 0, false, environment.StepInfo{},
			fmt.Errorf("step: action %v not in action set", action)
	}
	return v.arena.stepRobot(v.id, action)
}

// PossibleActions returns the authoritative action set
func (v *RobotView) PossibleActions() []experience.Action {
	return v.arena.actions
}

// RobotID returns the id of the robot this view controls.
func (v *RobotView) RobotID() int { return v.id }
