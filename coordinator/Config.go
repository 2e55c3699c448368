package coordinator

import (
	"fmt"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/expreplay"
	"github.com/robomesh/swarmlearn/schedule"
)

// EnvName stores the name of environments that can be trained on.
type EnvName string

// Environments available for training
const (
	Navigation   EnvName = "Navigation"
	Manipulation EnvName = "Manipulation"
	Coordination EnvName = "Coordination"
)

// ValidEnvName reports whether name names a known environment.
func ValidEnvName(name EnvName) bool {
	switch name {
	case Navigation, Manipulation, Coordination:
		return true
	}
	return false
}

// TrainingConfig describes one multi-robot training run. The config is
// immutable once training starts; it is the entire externally-settable
// surface of the coordinator.
type TrainingConfig struct {
	NumRobots   int
	Algorithm   agent.Type
	Environment EnvName
	Hyper       agent.Hyperparameters

	EpisodesPerRobot   int
	MaxStepsPerEpisode int

	// ParallelTraining interleaves all robots' episodes within each
	// round as concurrent units of work; sequential otherwise.
	ParallelTraining bool

	// SharedReplay gives every robot the same replay buffer instead
	// of one buffer per robot.
	SharedReplay      bool
	ReplaySize        int
	PrioritizedReplay bool

	// HindsightStrategy enables goal relabeling of each completed
	// trajectory when non-empty.
	HindsightStrategy expreplay.Strategy

	// SyncFrequency is the number of episode rounds between policy
	// synchronizations; 0 disables synchronization.
	SyncFrequency int
	SyncBatchSize int

	// EvaluationFrequency is the number of episode rounds between
	// zero-exploration evaluation passes; 0 disables evaluation.
	EvaluationFrequency int

	// BatchSize is the mini-batch size of the BatchQ algorithm.
	BatchSize int

	// LearningRateDecay selects an annealing shape for the learning
	// rate across episode rounds; "" keeps the rate fixed at
	// Hyper.LearningRate. FinalLearningRate defaults to a tenth of
	// the initial rate when unset.
	LearningRateDecay schedule.Decay
	FinalLearningRate float64
	WarmupEpisodes    int

	SaveCheckpoints bool
	CheckpointPath  string

	Seed uint64
}

// NewTrainingConfig returns a TrainingConfig with defaults for
// everything but the robot count, algorithm, and environment.
func NewTrainingConfig(numRobots int, algorithm agent.Type,
	environment EnvName) TrainingConfig {

	return TrainingConfig{
		NumRobots:           numRobots,
		Algorithm:           algorithm,
		Environment:         environment,
		Hyper:               agent.NewHyperparameters(),
		EpisodesPerRobot:    100,
		MaxStepsPerEpisode:  200,
		SharedReplay:        true,
		ReplaySize:          10_000,
		SyncFrequency:       10,
		SyncBatchSize:       32,
		EvaluationFrequency: 25,
		BatchSize:           32,
		CheckpointPath:      "checkpoints/run",
	}
}

// Validate ensures that the TrainingConfig is valid. Unknown algorithm
// or environment tags are configuration errors and are reported before
// any episode runs.
func (c TrainingConfig) Validate() error {
	if c.NumRobots < 1 {
		return fmt.Errorf("validate: need at least one robot, have %v",
			c.NumRobots)
	}
	if !agent.ValidType(c.Algorithm) {
		return fmt.Errorf("validate: no such algorithm %q", c.Algorithm)
	}
	if !ValidEnvName(c.Environment) {
		return fmt.Errorf("validate: no such environment %q", c.Environment)
	}
	if err := c.Hyper.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.EpisodesPerRobot < 1 {
		return fmt.Errorf("validate: episodesPerRobot must be >= 1, "+
			"have %v", c.EpisodesPerRobot)
	}
	if c.MaxStepsPerEpisode < 1 {
		return fmt.Errorf("validate: maxStepsPerEpisode must be >= 1, "+
			"have %v", c.MaxStepsPerEpisode)
	}
	if c.ReplaySize < 1 {
		return fmt.Errorf("validate: replaySize must be >= 1, have %v",
			c.ReplaySize)
	}
	if c.HindsightStrategy != "" &&
		!expreplay.ValidStrategy(c.HindsightStrategy) {
		return fmt.Errorf("validate: no such hindsight strategy %q",
			c.HindsightStrategy)
	}
	if c.SyncFrequency > 0 && c.SyncBatchSize < 1 {
		return fmt.Errorf("validate: syncBatchSize must be >= 1 when "+
			"synchronization is enabled, have %v", c.SyncBatchSize)
	}
	if c.LearningRateDecay != "" &&
		!schedule.ValidDecay(c.LearningRateDecay) {
		return fmt.Errorf("validate: no such decay shape %q",
			c.LearningRateDecay)
	}
	if c.SaveCheckpoints && c.CheckpointPath == "" {
		return fmt.Errorf("validate: checkpointing enabled without a " +
			"checkpoint path")
	}
	return nil
}
