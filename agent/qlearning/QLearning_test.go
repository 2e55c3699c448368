package qlearning

import (
	"testing"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/environment/navigation"
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

func testHyper() agent.Hyperparameters {
	hyper := agent.NewHyperparameters()
	hyper.LearningRate = 0.5
	hyper.Discount = 0.5
	return hyper
}

func TestQLearningTerminalTarget(t *testing.T) {
	q, err := New(testHyper(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	exp := experience.Experience{
		State:     testState(0),
		Action:    testActions()[0],
		Reward:    2,
		NextState: testState(0.5),
		Done:      true,
	}

	// Terminal target is the reward alone
	if td := q.Update(exp); td != 2 {
		t.Errorf("TD magnitude = %v, want 2", td)
	}
	if v := q.Table().Predict(exp.State, exp.Action); v != 1 {
		t.Errorf("value after update = %v, want 1", v)
	}
}

func TestQLearningBootstrapsFromMax(t *testing.T) {
	actions := testActions()
	q, err := New(testHyper(), actions, 42)
	if err != nil {
		t.Fatal(err)
	}

	next := testState(0.5)
	q.Table().Update(next, actions[0], 4, 1.0)
	q.Table().Update(next, actions[1], 8, 1.0)

	exp := experience.Experience{
		State:     testState(0),
		Action:    actions[0],
		Reward:    1,
		NextState: next,
	}

	// Target bootstraps from the maximum next value: 1 + 0.5*8
	if td := q.Update(exp); td != 5 {
		t.Errorf("TD magnitude = %v, want 5", td)
	}
}

func TestQLearningZeroTDIdempotent(t *testing.T) {
	q, err := New(testHyper(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	exp := experience.Experience{
		State:  testState(0),
		Action: testActions()[1],
		Reward: 3,
		Done:   true,
	}
	q.Table().Update(exp.State, exp.Action, 3, 1.0)

	if td := q.Update(exp); td != 0 {
		t.Errorf("TD magnitude = %v at a converged bucket, want 0", td)
	}
	if v := q.Table().Predict(exp.State, exp.Action); v != 3 {
		t.Errorf("value drifted to %v on a zero-TD update", v)
	}
}

func TestQLearningRejectsBadConfig(t *testing.T) {
	bad := testHyper()
	bad.LearningRate = 0
	if _, err := New(bad, testActions(), 42); err == nil {
		t.Error("zero learning rate accepted")
	}
	if _, err := New(testHyper(), nil, 42); err == nil {
		t.Error("empty action set accepted")
	}
}

func TestQLearningSetLearningRate(t *testing.T) {
	q, err := New(testHyper(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	exp := experience.Experience{
		State:     testState(0),
		Action:    testActions()[0],
		Reward:    2,
		NextState: testState(0.5),
		Done:      true,
	}

	q.SetLearningRate(1.0)
	q.Update(exp)
	if v := q.Table().Predict(exp.State, exp.Action); v != 2 {
		t.Errorf("value with replaced rate = %v, want 2", v)
	}

	// Non-positive rates are ignored
	q.SetLearningRate(0)
	q.Update(exp)
	if v := q.Table().Predict(exp.State, exp.Action); v != 2 {
		t.Errorf("value after zero-rate update = %v, want 2", v)
	}
}

// TestQLearningLearnsNavigation trains on a small arena and checks
// that the greedy policy reaches the goal afterwards.
func TestQLearningLearnsNavigation(t *testing.T) {
	env, err := navigation.New(navigation.NewConfig(2, 2, 50))
	if err != nil {
		t.Fatal(err)
	}

	hyper := agent.NewHyperparameters()
	hyper.ExplorationDecay = 0.99
	q, err := New(hyper, env.PossibleActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	for episode := 0; episode < 300; episode++ {
		state := env.Reset()
		for {
			action := q.SelectAction(state, env.PossibleActions())
			next, reward, done, _, err := env.Step(action)
			if err != nil {
				t.Fatal(err)
			}
			q.Update(experience.Experience{
				State:     state,
				Action:    action,
				Reward:    reward,
				NextState: next,
				Done:      done,
			})
			state = next
			if done {
				break
			}
		}
		q.DecayExploration()
	}

	q.Eval()
	state := env.Reset()
	for i := 0; i < 50; i++ {
		next, _, done, info, err := env.Step(
			q.SelectAction(state, env.PossibleActions()))
		if err != nil {
			t.Fatal(err)
		}
		if info.Success {
			return
		}
		state = next
		if done {
			break
		}
	}
	t.Error("greedy policy failed to reach the goal after training")
}

// TestQLearningSuccessRateImproves runs 200 episodes on a full-size
// obstacle-free arena and compares the success rate over the first 20
// episodes against the final 20.
func TestQLearningSuccessRateImproves(t *testing.T) {
	env, err := navigation.New(navigation.NewConfig(10, 10, 200))
	if err != nil {
		t.Fatal(err)
	}

	q, err := New(agent.NewHyperparameters(), env.PossibleActions(), 7)
	if err != nil {
		t.Fatal(err)
	}

	successes := make([]bool, 200)
	for episode := range successes {
		state := env.Reset()
		for {
			action := q.SelectAction(state, env.PossibleActions())
			next, reward, done, info, err := env.Step(action)
			if err != nil {
				t.Fatal(err)
			}
			q.Update(experience.Experience{
				State:     state,
				Action:    action,
				Reward:    reward,
				NextState: next,
				Done:      done,
			})
			successes[episode] = info.Success
			state = next
			if done {
				break
			}
		}
		q.DecayExploration()
	}

	count := func(window []bool) int {
		n := 0
		for _, s := range window {
			if s {
				n++
			}
		}
		return n
	}

	first := count(successes[:20])
	final := count(successes[180:])
	if final <= first {
		t.Errorf("final-20 successes = %v, first-20 = %v, expected "+
			"improvement", final, first)
	}
}
