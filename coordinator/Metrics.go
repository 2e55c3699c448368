package coordinator

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SuccessThreshold is the episode reward above which an episode counts
// as a success in aggregate metrics.
const SuccessThreshold = 50.0

// RobotMetrics summarizes one robot's training run.
type RobotMetrics struct {
	RobotID     int
	EpisodesRun int
	TotalReward float64
	AvgReward   float64
	MaxReward   float64
	SuccessRate float64
	AvgSteps    float64
}

// TrainingMetrics aggregates a whole training run. EpisodeRewards and
// EpisodeSteps carry one entry per completed episode across all
// robots, append-only, in completion order.
type TrainingMetrics struct {
	EpisodeRewards []float64
	EpisodeSteps   []float64

	SuccessRate  float64
	AvgReward    float64
	MaxReward    float64
	TrainingTime time.Duration

	Robots map[int]*RobotMetrics
}

func newTrainingMetrics(numRobots int) *TrainingMetrics {
	m := &TrainingMetrics{Robots: make(map[int]*RobotMetrics, numRobots)}
	for i := 0; i < numRobots; i++ {
		m.Robots[i] = &RobotMetrics{RobotID: i}
	}
	return m
}

// record appends one completed episode.
func (m *TrainingMetrics) record(robotID int, reward float64, steps int) {
	m.EpisodeRewards = append(m.EpisodeRewards, reward)
	m.EpisodeSteps = append(m.EpisodeSteps, float64(steps))

	r := m.Robots[robotID]
	r.EpisodesRun++
	n := float64(r.EpisodesRun)
	r.TotalReward += reward
	r.AvgReward = r.TotalReward / n
	if r.EpisodesRun == 1 || reward > r.MaxReward {
		r.MaxReward = reward
	}
	outcome := 0.0
	if reward > SuccessThreshold {
		outcome = 1.0
	}
	r.SuccessRate += (outcome - r.SuccessRate) / n
	r.AvgSteps += (float64(steps) - r.AvgSteps) / n
}

// finalize computes the aggregate figures after training ends.
func (m *TrainingMetrics) finalize(elapsed time.Duration) {
	m.TrainingTime = elapsed
	if len(m.EpisodeRewards) == 0 {
		return
	}

	m.AvgReward = stat.Mean(m.EpisodeRewards, nil)
	m.MaxReward = floats.Max(m.EpisodeRewards)

	successes := 0
	for _, r := range m.EpisodeRewards {
		if r > SuccessThreshold {
			successes++
		}
	}
	m.SuccessRate = float64(successes) / float64(len(m.EpisodeRewards))
}
