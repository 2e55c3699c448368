package schedule

import (
	"math"
	"testing"
)

func TestScheduleLinear(t *testing.T) {
	s, err := New(Linear, 1.0, 0.1, 10, 0)
	if err != nil {
		t.Fatal(err)
	}

	if r := s.Rate(0); r != 1.0 {
		t.Errorf("Rate(0) = %v, want the initial rate", r)
	}
	if r := s.Rate(5); math.Abs(r-0.55) > 1e-12 {
		t.Errorf("Rate(5) = %v, want 0.55", r)
	}
	if r := s.Rate(10); math.Abs(r-0.1) > 1e-12 {
		t.Errorf("Rate(10) = %v, want the final rate", r)
	}
	// Past the decay horizon the rate stays clamped at the floor
	if r := s.Rate(1000); math.Abs(r-0.1) > 1e-12 {
		t.Errorf("Rate(1000) = %v, want the final rate", r)
	}
}

func TestScheduleExponential(t *testing.T) {
	s, err := New(Exponential, 1.0, 0.01, 100, 0)
	if err != nil {
		t.Fatal(err)
	}

	if r := s.Rate(0); r != 1.0 {
		t.Errorf("Rate(0) = %v, want 1", r)
	}
	if r := s.Rate(100); math.Abs(r-0.01) > 1e-9 {
		t.Errorf("Rate(100) = %v, want 0.01", r)
	}
	if r := s.Rate(50); math.Abs(r-0.1) > 1e-9 {
		t.Errorf("Rate(50) = %v, want the geometric midpoint 0.1", r)
	}
}

func TestScheduleCosine(t *testing.T) {
	s, err := New(Cosine, 1.0, 0.2, 100, 0)
	if err != nil {
		t.Fatal(err)
	}

	if r := s.Rate(0); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Rate(0) = %v, want 1", r)
	}
	if r := s.Rate(50); math.Abs(r-0.6) > 1e-12 {
		t.Errorf("Rate(50) = %v, want the arithmetic midpoint 0.6", r)
	}
	if r := s.Rate(100); math.Abs(r-0.2) > 1e-9 {
		t.Errorf("Rate(100) = %v, want 0.2", r)
	}
}

func TestScheduleAdaptiveFollowsCosine(t *testing.T) {
	adaptive, err := New(Adaptive, 1.0, 0.2, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	cosine, err := New(Cosine, 1.0, 0.2, 100, 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, step := range []int{0, 25, 50, 75, 100} {
		if a, c := adaptive.Rate(step), cosine.Rate(step); a != c {
			t.Errorf("adaptive Rate(%v) = %v, cosine %v", step, a, c)
		}
	}
}

func TestScheduleWarmup(t *testing.T) {
	s, err := New(Linear, 1.0, 0.1, 10, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Linear ramp over the warm-up steps
	if r := s.Rate(0); math.Abs(r-0.25) > 1e-12 {
		t.Errorf("Rate(0) = %v, want 0.25", r)
	}
	if r := s.Rate(3); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Rate(3) = %v, want the full rate at warm-up end", r)
	}
	// Decay begins only after the warm-up
	if r := s.Rate(4); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Rate(4) = %v, want 1.0 at decay start", r)
	}
	if r := s.Rate(9); math.Abs(r-0.55) > 1e-12 {
		t.Errorf("Rate(9) = %v, want 0.55 at decay midpoint", r)
	}
}

func TestScheduleBounds(t *testing.T) {
	shapes := []Decay{Linear, Exponential, Cosine, Adaptive}
	for _, shape := range shapes {
		s, err := New(shape, 0.5, 0.05, 37, 5)
		if err != nil {
			t.Fatal(err)
		}
		for step := 0; step < 100; step++ {
			r := s.Rate(step)
			if r < 0.05-1e-12 || r > 0.5+1e-12 {
				t.Errorf("%v Rate(%v) = %v outside [0.05, 0.5]",
					shape, step, r)
			}
		}
	}
}

func TestScheduleValidation(t *testing.T) {
	if _, err := New("staircase", 1, 0.1, 10, 0); err == nil {
		t.Error("unknown shape accepted")
	}
	if _, err := New(Linear, 0.1, 1.0, 10, 0); err == nil {
		t.Error("final rate above initial accepted")
	}
	if _, err := New(Linear, 1, 0.1, 0, 0); err == nil {
		t.Error("zero decay steps accepted")
	}
	if _, err := New(Linear, -1, 0.1, 10, 0); err == nil {
		t.Error("negative rate accepted")
	}
}
