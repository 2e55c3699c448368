package valuefn

import (
	"testing"

	"github.com/robomesh/swarmlearn/experience"
)

func testState(x float64) experience.State {
	return experience.NewState([]float64{x, 0}, []float64{0, 0}, 0)
}

func TestTableUpdate(t *testing.T) {
	table := NewTable()
	state := testState(1)
	action := experience.Action{Type: experience.Wait}

	if v := table.Predict(state, action); v != 0 {
		t.Errorf("unseen bucket predicts %v, want 0", v)
	}

	td := table.Update(state, action, 10, 0.5)
	if td != 10 {
		t.Errorf("first TD error = %v, want 10", td)
	}
	if v := table.Predict(state, action); v != 5 {
		t.Errorf("value after update = %v, want 5", v)
	}
	if n := table.Visits(state, action); n != 1 {
		t.Errorf("visit count = %v, want 1", n)
	}
}

func TestTableZeroTDIdempotent(t *testing.T) {
	table := NewTable()
	state := testState(1)
	action := experience.Action{Type: experience.Wait}

	table.Update(state, action, 10, 1.0)

	// A target equal to the estimate must leave the value untouched
	if td := table.Update(state, action, 10, 1.0); td != 0 {
		t.Errorf("TD error = %v at a converged bucket, want 0", td)
	}
	if v := table.Predict(state, action); v != 10 {
		t.Errorf("value drifted to %v on a zero-TD update", v)
	}
}

func TestTableBucketsByDiscretization(t *testing.T) {
	table := NewTable()
	action := experience.Action{Type: experience.Wait}

	table.Update(testState(1.02), action, 10, 1.0)

	if v := table.Predict(testState(0.98), action); v != 10 {
		t.Errorf("nearby state predicts %v, want the shared bucket value", v)
	}
	if v := table.Predict(testState(1.2), action); v != 0 {
		t.Errorf("distant state predicts %v, want 0", v)
	}
	if table.Len() != 1 {
		t.Errorf("table holds %v buckets, want 1", table.Len())
	}
}
