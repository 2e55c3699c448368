// Package actorcritic implements a tabular actor-critic agent: a SARSA
// value table as the critic and a REINFORCE policy table as the actor.
//
// The critic's signed TD error serves as the advantage signal: the
// single-step reward is scaled by it before being fed to the actor as
// a one-step trajectory.
package actorcritic

import (
	"fmt"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/reinforce"
	"github.com/robomesh/swarmlearn/agent/sarsa"
	"github.com/robomesh/swarmlearn/experience"
)

// ActorCritic composes a sarsa critic and a reinforce actor. Action
// selection delegates to the actor.
type ActorCritic struct {
	actor  *reinforce.Reinforce
	critic *sarsa.Sarsa
}

// New creates a new ActorCritic agent acting over the environment's
// possible-action set.
func New(hyper agent.Hyperparameters, actions []experience.Action,
	seed uint64) (*ActorCritic, error) {

	critic, err := sarsa.New(hyper, actions, seed)
	if err != nil {
		return nil, fmt.Errorf("new: cannot create critic: %v", err)
	}
	actor, err := reinforce.New(hyper, seed+1)
	if err != nil {
		return nil, fmt.Errorf("new: cannot create actor: %v", err)
	}

	return &ActorCritic{actor: actor, critic: critic}, nil
}

// SelectAction samples from the actor's policy distribution.
func (a *ActorCritic) SelectAction(state experience.State,
	possible []experience.Action) experience.Action {
	return a.actor.SelectAction(state, possible)
}

// UpdateOnPolicy updates the critic with the on-policy target, then
// nudges the actor by the advantage-scaled reward.
func (a *ActorCritic) UpdateOnPolicy(exp experience.Experience,
	next experience.Action, hasNext bool) float64 {

	advantage := a.critic.TDError(exp, next, hasNext)
	a.critic.UpdateOnPolicy(exp, next, hasNext)

	scaled := exp
	scaled.Reward = exp.Reward * advantage
	a.actor.UpdateEpisode([]experience.Experience{scaled})

	if advantage < 0 {
		return -advantage
	}
	return advantage
}

// Update applies the actor-critic update with no next action
// available.
func (a *ActorCritic) Update(exp experience.Experience) float64 {
	return a.UpdateOnPolicy(exp, experience.Action{}, false)
}

// DecayExploration decays both components' exploration rates.
func (a *ActorCritic) DecayExploration() {
	a.actor.DecayExploration()
	a.critic.DecayExploration()
}

// SetLearningRate replaces the step size of both components.
func (a *ActorCritic) SetLearningRate(lr float64) {
	a.actor.SetLearningRate(lr)
	a.critic.SetLearningRate(lr)
}

// Eval sets both components to evaluation mode
func (a *ActorCritic) Eval() {
	a.actor.Eval()
	a.critic.Eval()
}

// Train sets both components to training mode
func (a *ActorCritic) Train() {
	a.actor.Train()
	a.critic.Train()
}

// IsEval indicates if the agent is in evaluation mode
func (a *ActorCritic) IsEval() bool { return a.actor.IsEval() }

// Critic returns the critic component.
func (a *ActorCritic) Critic() *sarsa.Sarsa { return a.critic }

// Actor returns the actor component.
func (a *ActorCritic) Actor() *reinforce.Reinforce { return a.actor }
