// Package strategy tracks the comparative performance of named
// (algorithm, hyperparameter) configurations and ranks them.
package strategy

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/robomesh/swarmlearn/agent"
)

// MinEpisodes is the number of recorded episodes a strategy needs
// before it is considered for selection.
const MinEpisodes = 5

// Metric names an ordering for strategy comparison.
type Metric string

const (
	// Reward orders strategies by raw average reward
	Reward Metric = "reward"

	// Success orders strategies by success rate
	Success Metric = "success"

	// Efficiency orders strategies by reward earned per step
	Efficiency Metric = "efficiency"
)

// ValidMetric reports whether m names a known ordering.
func ValidMetric(m Metric) bool {
	switch m {
	case Reward, Success, Efficiency:
		return true
	}
	return false
}

// Performance is the running record of a strategy's results. All
// running means use the strategy's own episode count as denominator.
type Performance struct {
	EpisodesRun     int
	TotalReward     float64
	AvgReward       float64
	MaxReward       float64
	MinReward       float64
	SuccessRate     float64
	AvgSteps        float64
	ConvergenceRate float64
	LastUpdated     time.Time
}

// Strategy is one named (algorithm, hyperparameter) configuration.
type Strategy struct {
	ID              string
	Name            string
	Algorithm       agent.Type
	Hyperparameters map[string]float64
	Performance     Performance
}

// score returns the strategy's value under metric.
func (s *Strategy) score(metric Metric) float64 {
	switch metric {
	case Success:
		return s.Performance.SuccessRate
	case Efficiency:
		if s.Performance.AvgSteps == 0 {
			return 0
		}
		return s.Performance.AvgReward / s.Performance.AvgSteps
	default:
		return s.Performance.AvgReward
	}
}

// Manager registers strategies and tracks their performance. It is
// safe for concurrent use by multiple robots.
type Manager struct {
	mu         sync.Mutex
	strategies map[string]*Strategy
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{strategies: make(map[string]*Strategy)}
}

// Register adds a strategy under its ID.
func (m *Manager) Register(s Strategy) error {
	if s.ID == "" {
		return fmt.Errorf("register: empty strategy id")
	}
	if !agent.ValidType(s.Algorithm) {
		return fmt.Errorf("register: unknown algorithm %q", s.Algorithm)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.strategies[s.ID]; ok {
		return fmt.Errorf("register: strategy %q already registered", s.ID)
	}
	m.strategies[s.ID] = &s
	return nil
}

// UpdatePerformance folds one episode result into the strategy's
// running record. Means are updated incrementally,
// avg += (x - avg) / n, with n the strategy's own episode count; the
// success rate uses the same denominator.
func (m *Manager) UpdatePerformance(id string, reward float64, steps int,
	success bool) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.strategies[id]
	if !ok {
		return fmt.Errorf("updatePerformance: no strategy %q", id)
	}

	p := &s.Performance
	p.EpisodesRun++
	n := float64(p.EpisodesRun)

	p.TotalReward += reward
	previousAvg := p.AvgReward
	p.AvgReward += (reward - p.AvgReward) / n

	if p.EpisodesRun == 1 {
		p.MaxReward = reward
		p.MinReward = reward
	} else {
		p.MaxReward = math.Max(p.MaxReward, reward)
		p.MinReward = math.Min(p.MinReward, reward)
	}

	outcome := 0.0
	if success {
		outcome = 1.0
	}
	p.SuccessRate += (outcome - p.SuccessRate) / n
	p.AvgSteps += (float64(steps) - p.AvgSteps) / n

	// Convergence is tracked as a smoothed magnitude of average-reward
	// movement; a settled strategy drives this toward zero.
	p.ConvergenceRate = 0.9*p.ConvergenceRate +
		0.1*math.Abs(p.AvgReward-previousAvg)

	p.LastUpdated = time.Now()
	return nil
}

// eligible returns the strategies with enough recorded episodes,
// sorted best first under metric.
func (m *Manager) eligible(metric Metric) []*Strategy {
	candidates := make([]*Strategy, 0, len(m.strategies))
	for _, s := range m.strategies {
		if s.Performance.EpisodesRun >= MinEpisodes {
			candidates = append(candidates, s)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score(metric) > candidates[j].score(metric)
	})
	return candidates
}

// SelectBest returns a copy of the best strategy under metric among
// those with at least MinEpisodes recorded episodes.
func (m *Manager) SelectBest(metric Metric) (Strategy, error) {
	if !ValidMetric(metric) {
		return Strategy{}, fmt.Errorf("selectBest: no such metric %q", metric)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.eligible(metric)
	if len(candidates) == 0 {
		return Strategy{}, fmt.Errorf("selectBest: no strategy has "+
			"reached %v episodes", MinEpisodes)
	}
	return *candidates[0], nil
}

// Top returns copies of the best n strategies under metric, best
// first, restricted to those with at least MinEpisodes episodes.
func (m *Manager) Top(n int, metric Metric) ([]Strategy, error) {
	if !ValidMetric(metric) {
		return nil, fmt.Errorf("top: no such metric %q", metric)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.eligible(metric)
	if n > len(candidates) {
		n = len(candidates)
	}

	top := make([]Strategy, n)
	for i := 0; i < n; i++ {
		top[i] = *candidates[i]
	}
	return top, nil
}

// Get returns a copy of the strategy with the given id.
func (m *Manager) Get(id string) (Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.strategies[id]
	if !ok {
		return Strategy{}, fmt.Errorf("get: no strategy %q", id)
	}
	return *s, nil
}

// Len returns the number of registered strategies.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.strategies)
}
