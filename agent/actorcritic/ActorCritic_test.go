package actorcritic

import (
	"testing"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/experience"
)

func testActions() []experience.Action {
	return []experience.Action{
		{Type: experience.Move, Parameters: []float64{0.5, 0}},
		{Type: experience.Wait},
	}
}

func testState(x float64) experience.State {
	return experience.NewState([]float64{x, 0}, []float64{0, 0}, 0)
}

func TestActorCriticAdvantageIsCriticTDError(t *testing.T) {
	ac, err := New(agent.NewHyperparameters(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	exp := experience.Experience{
		State:  testState(0),
		Action: testActions()[0],
		Reward: 2,
		Done:   true,
	}

	// With an untrained critic the TD error is the raw reward
	if adv := ac.UpdateOnPolicy(exp, experience.Action{}, false); adv != 2 {
		t.Errorf("advantage magnitude = %v, want 2", adv)
	}
	if v := ac.Critic().Table().Predict(exp.State, exp.Action); v <= 0 {
		t.Errorf("critic value = %v after update, want positive", v)
	}
}

func TestActorCriticPositiveAdvantageReinforces(t *testing.T) {
	actions := testActions()
	ac, err := New(agent.NewHyperparameters(), actions, 42)
	if err != nil {
		t.Fatal(err)
	}

	state := testState(0)
	ac.Actor().SelectAction(state, actions)

	ac.Update(experience.Experience{
		State:  state,
		Action: actions[0],
		Reward: 1,
		Done:   true,
	})

	probs := ac.Actor().Probabilities(state)
	if probs[0] <= 0.5 {
		t.Errorf("advantaged action probability = %v, want above uniform",
			probs[0])
	}
}

func TestActorCriticNegativeAdvantageMagnitude(t *testing.T) {
	ac, err := New(agent.NewHyperparameters(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	exp := experience.Experience{
		State:  testState(0),
		Action: testActions()[0],
		Reward: -3,
		Done:   true,
	}
	if adv := ac.Update(exp); adv != 3 {
		t.Errorf("advantage magnitude = %v, want 3", adv)
	}
}

func TestActorCriticModeSwitches(t *testing.T) {
	ac, err := New(agent.NewHyperparameters(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	ac.Eval()
	if !ac.IsEval() || !ac.Critic().IsEval() {
		t.Error("evaluation mode did not reach both components")
	}
	ac.Train()
	if ac.IsEval() || ac.Critic().IsEval() {
		t.Error("training mode did not reach both components")
	}
}
