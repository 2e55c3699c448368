package agent

import "fmt"

// Type tags the learning algorithms available in this module.
type Type string

const (
	QLearning   Type = "QLearning"
	Sarsa       Type = "Sarsa"
	Reinforce   Type = "Reinforce"
	ActorCritic Type = "ActorCritic"
	BatchQ      Type = "BatchQ"
)

// Types lists every registered algorithm tag.
func Types() []Type {
	return []Type{QLearning, Sarsa, Reinforce, ActorCritic, BatchQ}
}

// ValidType reports whether t names a known algorithm.
func ValidType(t Type) bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Hyperparameters holds the settings shared by every algorithm in the
// module. Fields are JSON serializable so that configurations can be
// stored alongside results.
type Hyperparameters struct {
	LearningRate     float64
	Discount         float64
	Exploration      float64 // initial exploration rate
	ExplorationDecay float64 // multiplicative, applied per episode
	MinExploration   float64 // exploration floor
}

// NewHyperparameters returns the default hyperparameter settings.
func NewHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningRate:     0.1,
		Discount:         0.95,
		Exploration:      1.0,
		ExplorationDecay: 0.995,
		MinExploration:   0.01,
	}
}

// Validate ensures that the Hyperparameters are valid
func (h Hyperparameters) Validate() error {
	if h.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive, "+
			"have %v", h.LearningRate)
	}
	if h.Discount < 0 || h.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], have %v",
			h.Discount)
	}
	if h.Exploration < 0 || h.Exploration > 1 {
		return fmt.Errorf("validate: exploration must be in [0, 1], "+
			"have %v", h.Exploration)
	}
	if h.ExplorationDecay <= 0 || h.ExplorationDecay > 1 {
		return fmt.Errorf("validate: exploration decay must be in "+
			"(0, 1], have %v", h.ExplorationDecay)
	}
	if h.MinExploration < 0 {
		return fmt.Errorf("validate: minimum exploration cannot be "+
			"negative, have %v", h.MinExploration)
	}
	return nil
}

// Map returns the hyperparameters as a named-setting map, the form
// used by strategy tracking and hyperparameter search.
func (h Hyperparameters) Map() map[string]float64 {
	return map[string]float64{
		"learningRate":     h.LearningRate,
		"discount":         h.Discount,
		"exploration":      h.Exploration,
		"explorationDecay": h.ExplorationDecay,
		"minExploration":   h.MinExploration,
	}
}

// FromMap overwrites any hyperparameter named in m, leaving the rest
// untouched.
func (h Hyperparameters) FromMap(m map[string]float64) Hyperparameters {
	if v, ok := m["learningRate"]; ok {
		h.LearningRate = v
	}
	if v, ok := m["discount"]; ok {
		h.Discount = v
	}
	if v, ok := m["exploration"]; ok {
		h.Exploration = v
	}
	if v, ok := m["explorationDecay"]; ok {
		h.ExplorationDecay = v
	}
	if v, ok := m["minExploration"]; ok {
		h.MinExploration = v
	}
	return h
}
