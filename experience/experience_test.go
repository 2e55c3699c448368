package experience

import (
	"math"
	"testing"
)

func TestStateKeyDiscretization(t *testing.T) {
	a := NewState([]float64{1.04, 2.0}, []float64{0.0, 0.0}, 0)
	b := NewState([]float64{0.96, 1.97}, []float64{-0.04, 0.04}, 3)

	if a.Key() != b.Key() {
		t.Errorf("states in the same bucket got keys %q and %q",
			a.Key(), b.Key())
	}
	if a.Key() != "1.0,2.0|0.0,0.0" {
		t.Errorf("unexpected key %q", a.Key())
	}

	c := NewState([]float64{1.06, 2.0}, []float64{0.0, 0.0}, 0)
	if a.Key() == c.Key() {
		t.Error("states one bucket apart share a key")
	}
}

func TestStateKeyNegativeRounding(t *testing.T) {
	neg := NewState([]float64{-0.06}, nil, 0)
	if neg.Key() != "-0.1|" {
		t.Errorf("unexpected key %q for negative position", neg.Key())
	}

	nearZero := NewState([]float64{-0.04}, nil, 0)
	zero := NewState([]float64{0.04}, nil, 0)
	if nearZero.Key() != zero.Key() {
		t.Errorf("keys %q and %q straddle zero in the same bucket",
			nearZero.Key(), zero.Key())
	}
}

func TestStateEncodePadding(t *testing.T) {
	s := NewState([]float64{1, 2}, []float64{3, 4}, 0)
	enc := s.Encode(3)

	want := []float64{1, 2, 0, 3, 4, 0}
	if len(enc) != len(want) {
		t.Fatalf("encoding length %v, want %v", len(enc), len(want))
	}
	for i := range want {
		if enc[i] != want[i] {
			t.Errorf("encoding[%v] = %v, want %v", i, enc[i], want[i])
		}
	}
}

func TestStateDistanceTo(t *testing.T) {
	a := NewState([]float64{0, 0}, nil, 0)
	b := NewState([]float64{3, 4}, nil, 0)

	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("distance = %v, want 5", d)
	}
}

func TestActionEqual(t *testing.T) {
	a := Action{Type: Move, Parameters: []float64{0.5, 0}}
	b := Action{Type: Move, Parameters: []float64{0.52, 0.01}}
	c := Action{Type: Move, Parameters: []float64{0, 0.5}}

	if !a.Equal(b) {
		t.Error("actions in the same parameter bucket compare unequal")
	}
	if a.Equal(c) {
		t.Error("distinct actions compare equal")
	}
	if a.Equal(Action{Type: Wait}) {
		t.Error("move compares equal to wait")
	}
}
