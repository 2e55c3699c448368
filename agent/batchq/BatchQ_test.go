package batchq

import (
	"math"
	"testing"

	"github.com/robomesh/swarmlearn/agent"
	"github.com/robomesh/swarmlearn/agent/valuefn"
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

func terminalExp(x, reward float64) experience.Experience {
	return experience.Experience{
		State:  testState(x),
		Action: experience.Action{Type: experience.Wait},
		Reward: reward,
		Done:   true,
	}
}

func TestBatchQNoOpBelowBatchSize(t *testing.T) {
	b, err := New(NewConfig(agent.NewHyperparameters(), 4),
		valuefn.NewTable(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		b.Update(terminalExp(float64(i), 1))
	}

	if loss, trained := b.TrainStep(); trained || loss != 0 {
		t.Errorf("TrainStep below one batch trained=%v loss=%v",
			trained, loss)
	}
}

func TestBatchQLossDecreases(t *testing.T) {
	b, err := New(NewConfig(agent.NewHyperparameters(), 4),
		valuefn.NewTable(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		b.Update(terminalExp(float64(i), float64(i+1)))
	}

	// The batch covers the whole cache, so every entry is trained on
	// each step and the loss must shrink.
	first, trained := b.TrainStep()
	if !trained || first <= 0 {
		t.Fatalf("first TrainStep trained=%v loss=%v", trained, first)
	}
	for i := 0; i < 20; i++ {
		b.TrainStep()
	}
	last, _ := b.TrainStep()
	if last >= first {
		t.Errorf("loss rose from %v to %v over training", first, last)
	}
}

func TestBatchQFIFOCache(t *testing.T) {
	config := Config{
		Hyper:     agent.NewHyperparameters(),
		BatchSize: 2,
		BufferCap: 3,
	}
	b, err := New(config, valuefn.NewTable(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		b.Update(terminalExp(float64(i), 1))
	}
	if b.Len() != 3 {
		t.Errorf("cache holds %v entries, want the capacity 3", b.Len())
	}
}

func TestBatchQExplorationDecayCadence(t *testing.T) {
	b, err := New(NewConfig(agent.NewHyperparameters(), 4),
		valuefn.NewTable(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < DecayEvery-1; i++ {
		b.TrainStep()
	}
	if e := b.Epsilon(); e != 1.0 {
		t.Errorf("epsilon = %v before the decay boundary, want 1.0", e)
	}

	b.TrainStep()
	if e := b.Epsilon(); math.Abs(e-0.995) > 1e-12 {
		t.Errorf("epsilon = %v after %v train steps, want one decay",
			e, DecayEvery)
	}
}

func TestBatchQUpdateDiagnostic(t *testing.T) {
	b, err := New(NewConfig(agent.NewHyperparameters(), 4),
		valuefn.NewTable(), testActions(), 42)
	if err != nil {
		t.Fatal(err)
	}

	// Untrained model, terminal reward 3: the diagnostic is |3 - 0|
	if td := b.Update(terminalExp(0, 3)); td != 3 {
		t.Errorf("diagnostic TD magnitude = %v, want 3", td)
	}
}

func TestBatchQConfigValidate(t *testing.T) {
	config := NewConfig(agent.NewHyperparameters(), 0)
	if err := config.Validate(); err == nil {
		t.Error("zero batch size accepted")
	}

	config = Config{
		Hyper:     agent.NewHyperparameters(),
		BatchSize: 8,
		BufferCap: 4,
	}
	if err := config.Validate(); err == nil {
		t.Error("buffer capacity below batch size accepted")
	}

	if _, err := New(NewConfig(agent.NewHyperparameters(), 4), nil,
		testActions(), 42); err == nil {
		t.Error("nil model accepted")
	}
}
