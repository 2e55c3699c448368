package tracker

import (
	"path/filepath"
	"testing"
)

func records() []Record {
	return []Record{
		{RobotID: 0, Episode: 0, Reward: 1.5, Steps: 10, Success: false},
		{RobotID: 1, Episode: 0, Reward: -2, Steps: 25, Success: false},
		{RobotID: 0, Episode: 1, Reward: 104, Steps: 7, Success: true},
	}
}

func TestReturnTracksAndSaves(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(filename)

	for _, rec := range records() {
		r.Track(rec)
	}

	returns := r.Returns()
	if len(returns) != 3 || returns[2] != 104 {
		t.Fatalf("cached returns = %v", returns)
	}

	r.Save()
	loaded := LoadData(filename)
	if len(loaded) != 3 {
		t.Fatalf("loaded %v returns, want 3", len(loaded))
	}
	for i := range returns {
		if loaded[i] != returns[i] {
			t.Errorf("loaded[%v] = %v, want %v", i, loaded[i], returns[i])
		}
	}
}

func TestEpisodeLengthTracksAndSaves(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(filename)

	for _, rec := range records() {
		e.Track(rec)
	}

	lengths := e.Lengths()
	if len(lengths) != 3 || lengths[1] != 25 {
		t.Fatalf("cached lengths = %v", lengths)
	}

	e.Save()
	loaded := LoadData(filename)
	if len(loaded) != 3 || loaded[0] != 10 {
		t.Fatalf("loaded lengths = %v", loaded)
	}
}
