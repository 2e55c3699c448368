package environment

import "math"

// Shaping holds the reward-shaping constants shared by every
// environment variant. The same shape is applied to navigation,
// manipulation, and coordination transitions so that agents trained on
// one variant see rewards on a comparable scale on another.
type Shaping struct {
	TimeStepPenalty  float64
	ReachTargetBonus float64
	CollisionPenalty float64
	DistanceWeight   float64
	VelocityPenalty  float64
}

// NewShaping returns the default shaping constants.
func NewShaping() Shaping {
	return Shaping{
		TimeStepPenalty:  -0.1,
		ReachTargetBonus: 100.0,
		CollisionPenalty: -50.0,
		DistanceWeight:   5.0,
		VelocityPenalty:  0.5,
	}
}

// Reward computes the shaped reward of one transition. The distance
// term uses 1/(distance+1) so that reward increases smoothly as the
// robot approaches the goal, and speeds above one unit per step are
// penalized linearly.
func (s Shaping) Reward(success, collision bool, distance, speed float64) float64 {
	reward := s.TimeStepPenalty
	if success {
		reward += s.ReachTargetBonus
	}
	if collision {
		reward += s.CollisionPenalty
	}
	reward += s.DistanceWeight / (distance + 1.0)
	reward -= s.VelocityPenalty * math.Max(0, speed-1.0)
	return reward
}
