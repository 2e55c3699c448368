package agent

import "testing"

func TestHyperparametersValidate(t *testing.T) {
	if err := NewHyperparameters().Validate(); err != nil {
		t.Errorf("default hyperparameters rejected: %v", err)
	}

	bad := NewHyperparameters()
	bad.Discount = 1.1
	if err := bad.Validate(); err == nil {
		t.Error("discount above 1 accepted")
	}

	bad = NewHyperparameters()
	bad.ExplorationDecay = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero exploration decay accepted")
	}
}

func TestHyperparametersMapRoundTrip(t *testing.T) {
	hyper := NewHyperparameters()
	hyper.LearningRate = 0.42

	m := hyper.Map()
	if m["learningRate"] != 0.42 {
		t.Errorf("map learningRate = %v", m["learningRate"])
	}

	other := NewHyperparameters().FromMap(m)
	if other != hyper {
		t.Errorf("round trip gave %+v, want %+v", other, hyper)
	}

	// Partial maps leave unnamed settings untouched
	partial := NewHyperparameters().FromMap(
		map[string]float64{"discount": 0.5})
	if partial.Discount != 0.5 || partial.LearningRate != 0.1 {
		t.Errorf("partial override gave %+v", partial)
	}
}

func TestValidType(t *testing.T) {
	for _, tag := range Types() {
		if !ValidType(tag) {
			t.Errorf("%v not recognized", tag)
		}
	}
	if ValidType("AlphaZero") {
		t.Error("unknown algorithm recognized")
	}
}
