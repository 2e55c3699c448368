// Package coordinator implements the top-level training orchestrator:
// it owns one agent and one environment per robot, drives episode
// rounds, feeds the replay buffer, periodically synchronizes policies
// across robots, runs evaluation passes, and aggregates metrics.
package coordinator

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/actorcritic"
	"github.com/robomesh/swarmlearn/agent/batchq"
	"github.com/robomesh/swarmlearn/agent/qlearning"
	"github.com/robomesh/swarmlearn/agent/reinforce"
	"github.com/robomesh/swarmlearn/agent/sarsa"
	"github.com/robomesh/swarmlearn/agent/valuefn"
	"github.com/robomesh/swarmlearn/coordinator/tracker"
	"github.com/robomesh/swarmlearn/environment"
	"github.com/robomesh/swarmlearn/environment/coordination"
	"github.com/robomesh/swarmlearn/environment/manipulation"
	"github.com/robomesh/swarmlearn/environment/navigation"
	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/expreplay"
	"github.com/robomesh/swarmlearn/schedule"
	"github.com/robomesh/swarmlearn/strategy"
)

// CheckpointEvery is the number of episode rounds between checkpoint
// markers when checkpointing is enabled.
const CheckpointEvery = 100

// robot bundles one training agent with its environment and replay
// buffer. In shared-replay mode every robot points at the same buffer.
type robot struct {
	id        int
	agent     agent.Agent
	env       environment.Environment
	replay    *expreplay.Buffer
	hindsight *expreplay.Hindsight // nil unless relabeling is enabled
}

type episodeResult struct {
	reward  float64
	steps   int
	success bool
}

// Coordinator drives a multi-robot training run described by a
// TrainingConfig.
type Coordinator struct {
	config     TrainingConfig
	robots     []*robot
	trackers   []tracker.Tracker
	store      Store // may be nil
	strategies *strategy.Manager
	strategyID string
	metrics    *TrainingMetrics
	rates      *schedule.Schedule // nil when the rate is fixed

	// Incremented from every robot goroutine in parallel mode
	storeFailures int64
}

// NewCoordinator creates a Coordinator. Unknown algorithm or
// environment tags in the config are fatal and reported here, before
// any episode runs.
func NewCoordinator(config TrainingConfig, trackers []tracker.Tracker,
	store Store) (*Coordinator, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newCoordinator: %v", err)
	}

	envs, err := newEnvironments(config)
	if err != nil {
		return nil, fmt.Errorf("newCoordinator: %v", err)
	}

	var shared *expreplay.Buffer
	if config.SharedReplay {
		shared, err = expreplay.New(
			expreplay.NewConfig(config.ReplaySize, config.PrioritizedReplay),
			config.Seed)
		if err != nil {
			return nil, fmt.Errorf("newCoordinator: %v", err)
		}
	}

	robots := make([]*robot, config.NumRobots)
	for i := 0; i < config.NumRobots; i++ {
		robotSeed := config.Seed + uint64(i)*7919

		a, err := newAgent(config, envs[i].PossibleActions(), robotSeed)
		if err != nil {
			return nil, fmt.Errorf("newCoordinator: %v", err)
		}

		replay := shared
		if replay == nil {
			replay, err = expreplay.New(
				expreplay.NewConfig(config.ReplaySize,
					config.PrioritizedReplay), robotSeed)
			if err != nil {
				return nil, fmt.Errorf("newCoordinator: %v", err)
			}
		}

		var hindsight *expreplay.Hindsight
		if config.HindsightStrategy != "" {
			hindsight, err = expreplay.NewHindsight(replay,
				config.HindsightStrategy, robotSeed)
			if err != nil {
				return nil, fmt.Errorf("newCoordinator: %v", err)
			}
		}

		robots[i] = &robot{
			id:        i,
			agent:     a,
			env:       envs[i],
			replay:    replay,
			hindsight: hindsight,
		}
	}

	strategies := strategy.NewManager()
	strategyID := fmt.Sprintf("%v-%v", config.Algorithm, config.Environment)
	err = strategies.Register(strategy.Strategy{
		ID:              strategyID,
		Name:            strategyID,
		Algorithm:       config.Algorithm,
		Hyperparameters: config.Hyper.Map(),
	})
	if err != nil {
		return nil, fmt.Errorf("newCoordinator: %v", err)
	}

	var rates *schedule.Schedule
	if config.LearningRateDecay != "" {
		final := config.FinalLearningRate
		if final <= 0 {
			final = config.Hyper.LearningRate / 10
		}
		rates, err = schedule.New(config.LearningRateDecay,
			config.Hyper.LearningRate, final, config.EpisodesPerRobot,
			config.WarmupEpisodes)
		if err != nil {
			return nil, fmt.Errorf("newCoordinator: %v", err)
		}
	}

	return &Coordinator{
		config:     config,
		robots:     robots,
		trackers:   trackers,
		store:      store,
		strategies: strategies,
		strategyID: strategyID,
		rates:      rates,
	}, nil
}

// envDims returns the position dimensionality of an environment.
func envDims(name EnvName) int {
	if name == Manipulation {
		return 3
	}
	return 2
}

// newEnvironments constructs one environment per robot. The
// coordination arena is shared, with each robot holding its own view.
func newEnvironments(config TrainingConfig) ([]environment.Environment,
	error) {

	envs := make([]environment.Environment, config.NumRobots)

	switch config.Environment {
	case Navigation:
		for i := range envs {
			env, err := navigation.New(
				navigation.NewConfig(10, 10, config.MaxStepsPerEpisode))
			if err != nil {
				return nil, err
			}
			envs[i] = env
		}

	case Manipulation:
		for i := range envs {
			env, err := manipulation.New(
				manipulation.NewConfig(5, config.MaxStepsPerEpisode))
			if err != nil {
				return nil, err
			}
			envs[i] = env
		}

	case Coordination:
		arena, err := coordination.New(coordination.NewConfig(
			10, 10, config.NumRobots, config.MaxStepsPerEpisode))
		if err != nil {
			return nil, err
		}
		for i := range envs {
			view, err := arena.RobotView(i)
			if err != nil {
				return nil, err
			}
			envs[i] = view
		}

	default:
		return nil, fmt.Errorf("newEnvironments: no such environment %q",
			config.Environment)
	}
	return envs, nil
}

// newAgent constructs the configured algorithm over the environment's
// action set.
func newAgent(config TrainingConfig, actions []experience.Action,
	seed uint64) (agent.Agent, error) {

	switch config.Algorithm {
	case agent.QLearning:
		return qlearning.New(config.Hyper, actions, seed)

	case agent.Sarsa:
		return sarsa.New(config.Hyper, actions, seed)

	case agent.Reinforce:
		return reinforce.New(config.Hyper, seed)

	case agent.ActorCritic:
		return actorcritic.New(config.Hyper, actions, seed)

	case agent.BatchQ:
		model := valuefn.NewLinear(envDims(config.Environment))
		return batchq.New(batchq.NewConfig(config.Hyper, config.BatchSize),
			model, actions, seed)
	}

	return nil, fmt.Errorf("newAgent: no such algorithm %q",
		config.Algorithm)
}

// archive forwards one experience to the persistence collaborator.
// Failures are recoverable: they are logged once and never stop the
// training loop.
func (c *Coordinator) archive(exp experience.Experience,
	meta expreplay.Metadata) {

	if c.store == nil {
		return
	}
	if err := c.store.Store(exp, meta); err != nil {
		if atomic.AddInt64(&c.storeFailures, 1) == 1 {
			log.Printf("experience archive unavailable, continuing "+
				"without it: %v", err)
		}
	}
}

// runEpisode runs one bounded episode for one robot. With train set,
// the agent learns from every transition and the replay buffer is fed;
// without it, no learner or buffer state changes.
func (c *Coordinator) runEpisode(r *robot, episode int,
	train bool) (episodeResult, error) {

	state := r.env.Reset()
	possible := r.env.PossibleActions()

	onPolicy, isOnPolicy := r.agent.(agent.OnPolicyLearner)
	episodic, isEpisodic := r.agent.(agent.EpisodeLearner)
	batch, isBatch := r.agent.(agent.BatchTrainer)

	var trajectory []experience.Experience
	var result episodeResult

	action := r.agent.SelectAction(state, possible)
	for step := 0; step < c.config.MaxStepsPerEpisode; step++ {
		// An action outside the possible set is a programming error
		// in the estimator and fails the run immediately.
		if !environment.ValidAction(r.env, action) {
			return episodeResult{}, fmt.Errorf("runEpisode: robot %v "+
				"selected action %v outside the action set", r.id, action)
		}

		next, reward, done, info, err := r.env.Step(action)
		if err != nil {
			return episodeResult{}, fmt.Errorf("runEpisode: %v", err)
		}

		result.reward += reward
		result.steps++
		result.success = info.Success

		exp := experience.Experience{
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: next,
			Done:      done,
		}

		var nextAction experience.Action
		if !done {
			nextAction = r.agent.SelectAction(next, possible)
		}

		if train {
			var tdMagnitude float64
			switch {
			case isEpisodic:
				// Trajectory learners update once at episode end
			case isOnPolicy:
				tdMagnitude = onPolicy.UpdateOnPolicy(exp, nextAction, !done)
			default:
				tdMagnitude = r.agent.Update(exp)
			}

			trajectory = append(trajectory, exp)
			meta := expreplay.Metadata{
				TDError: tdMagnitude,
				RobotID: r.id,
				Episode: episode,
			}
			if r.hindsight == nil {
				r.replay.Store(exp, meta)
			}
			c.archive(exp, meta)

			if isBatch {
				batch.TrainStep()
			}
		}

		state = next
		action = nextAction
		if done {
			break
		}
	}

	if train {
		if isEpisodic {
			episodic.UpdateEpisode(trajectory)
		}
		if r.hindsight != nil {
			r.hindsight.StoreTrajectory(trajectory, expreplay.Metadata{
				RobotID: r.id,
				Episode: episode,
			})
		}
		// Batch learners decay on their own TrainStep cadence
		if !isBatch {
			r.agent.DecayExploration()
		}
	}
	return result, nil
}

// runRound runs one episode for every robot. In parallel mode the
// robots' episodes are scheduled as independent concurrent units of
// work; the round itself always ends at a barrier, so synchronization
// and evaluation never observe a robot mid-episode.
func (c *Coordinator) runRound(round int, train bool) ([]episodeResult,
	error) {

	results := make([]episodeResult, len(c.robots))

	if !c.config.ParallelTraining {
		for i, r := range c.robots {
			result, err := c.runEpisode(r, round, train)
			if err != nil {
				return nil, err
			}
			results[i] = result
		}
		return results, nil
	}

	errs := make([]error, len(c.robots))
	var wg sync.WaitGroup
	for i, r := range c.robots {
		wg.Add(1)
		go func(i int, r *robot) {
			defer wg.Done()
			results[i], errs[i] = c.runEpisode(r, round, train)
		}(i, r)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// synchronize exchanges learned signal between robots: a batch is
// sampled from the replay buffers and applied to every robot's agent.
// Called only between rounds, when all robots are idle.
func (c *Coordinator) synchronize() {
	buffers := []*expreplay.Buffer{c.robots[0].replay}
	if !c.config.SharedReplay {
		buffers = buffers[:0]
		for _, r := range c.robots {
			buffers = append(buffers, r.replay)
		}
	}

	for _, buffer := range buffers {
		sample, err := buffer.Sample(c.config.SyncBatchSize)
		if err != nil {
			if !expreplay.IsEmptyBuffer(err) {
				log.Printf("synchronize: %v", err)
			}
			continue
		}

		tdErrors := make([]float64, len(sample.Experiences))
		for _, r := range c.robots {
			for i, exp := range sample.Experiences {
				tdErrors[i] = r.agent.Update(exp)
			}
		}
		buffer.UpdatePriorities(sample.Indices, tdErrors)
	}
}

// checkpoint persists a progress marker through the collaborator.
// Failures are recoverable and only logged.
func (c *Coordinator) checkpoint(completed int) {
	if c.store == nil {
		return
	}

	name := fmt.Sprintf("%v-%04d", c.config.CheckpointPath, completed)
	if err := c.store.Checkpoint(name); err != nil {
		log.Printf("checkpoint %v failed: %v", name, err)
	}
}

// Evaluate runs one zero-exploration episode per robot and returns the
// aggregate result without mutating any training state.
func (c *Coordinator) Evaluate() (tracker.EvalRecord, error) {
	for _, r := range c.robots {
		r.agent.Eval()
	}
	defer func() {
		for _, r := range c.robots {
			r.agent.Train()
		}
	}()

	results, err := c.runRound(0, false)
	if err != nil {
		return tracker.EvalRecord{}, fmt.Errorf("evaluate: %v", err)
	}

	var record tracker.EvalRecord
	for _, result := range results {
		record.AvgReward += result.reward
		record.AvgSteps += float64(result.steps)
		if result.success {
			record.SuccessRate++
		}
	}
	n := float64(len(results))
	record.AvgReward /= n
	record.AvgSteps /= n
	record.SuccessRate /= n
	return record, nil
}

// Train runs the full training loop and returns the aggregated
// metrics.
func (c *Coordinator) Train() (*TrainingMetrics, error) {
	start := time.Now()
	c.metrics = newTrainingMetrics(c.config.NumRobots)

	for round := 0; round < c.config.EpisodesPerRobot; round++ {
		if c.rates != nil {
			rate := c.rates.Rate(round)
			for _, r := range c.robots {
				if adapter, ok := r.agent.(agent.RateAdapter); ok {
					adapter.SetLearningRate(rate)
				}
			}
		}

		results, err := c.runRound(round, true)
		if err != nil {
			return nil, fmt.Errorf("train: %v", err)
		}

		for id, result := range results {
			c.metrics.record(id, result.reward, result.steps)

			record := tracker.Record{
				RobotID: id,
				Episode: round,
				Reward:  result.reward,
				Steps:   result.steps,
				Success: result.success,
			}
			for _, t := range c.trackers {
				t.Track(record)
			}

			err := c.strategies.UpdatePerformance(c.strategyID,
				result.reward, result.steps, result.success)
			if err != nil {
				log.Printf("train: %v", err)
			}
		}

		completed := round + 1
		if c.config.SyncFrequency > 0 &&
			completed%c.config.SyncFrequency == 0 {
			c.synchronize()
		}

		if c.config.EvaluationFrequency > 0 &&
			completed%c.config.EvaluationFrequency == 0 {
			record, err := c.Evaluate()
			if err != nil {
				return nil, fmt.Errorf("train: %v", err)
			}
			record.Episode = completed
			for _, t := range c.trackers {
				if et, ok := t.(tracker.EvalTracker); ok {
					et.TrackEval(record)
				}
			}
		}

		if c.config.SaveCheckpoints && completed%CheckpointEvery == 0 {
			c.checkpoint(completed)
		}
	}

	c.metrics.finalize(time.Since(start))
	return c.metrics, nil
}

// SimilarExperiences retrieves up to k experiences near state, asking
// the persistence collaborator first and falling back to the replay
// buffer when the collaborator is missing or unavailable.
func (c *Coordinator) SimilarExperiences(state experience.State,
	k int) []experience.Experience {

	dims := envDims(c.config.Environment)
	if c.store != nil {
		similar, err := c.store.RetrieveSimilar(state.Encode(dims), k)
		if err == nil {
			return similar
		}
		log.Printf("similarExperiences: collaborator unavailable: %v", err)
	}
	return c.robots[0].replay.SampleSimilar(state, k)
}

// Strategies returns the coordinator's strategy manager.
func (c *Coordinator) Strategies() *strategy.Manager { return c.strategies }

// Metrics returns the metrics of the last Train call, or nil before
// training.
func (c *Coordinator) Metrics() *TrainingMetrics { return c.metrics }
