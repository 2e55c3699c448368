// Package tracker implements metrics sinks for training runs. The
// coordinator emits one Record per completed episode and one
// EvalRecord per evaluation pass; Trackers decide which of that data
// to cache and persist.
package tracker

import (
	"encoding/gob"
	"log"
	"os"
)

// Record is the per-episode record emitted after every completed
// episode.
type Record struct {
	RobotID int
	Episode int
	Reward  float64
	Steps   int
	Success bool
}

// EvalRecord is the aggregate record emitted after every evaluation
// pass.
type EvalRecord struct {
	Episode     int
	AvgReward   float64
	AvgSteps    float64
	SuccessRate float64
}

// Tracker keeps track of training data and saves it after the run has
// finished. Tracker implementations must tolerate being called from a
// failing run: Track should never stop the training loop.
type Tracker interface {
	Track(Record)
	Save()
}

// EvalTracker is a Tracker that additionally records evaluation-pass
// aggregates. Coordinators probe for this capability by type
// assertion.
type EvalTracker interface {
	Tracker
	TrackEval(EvalRecord)
}

// LoadData loads and returns the data saved by a Return or
// EpisodeLength tracker.
func LoadData(filename string) []float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64

	if err := dec.Decode(&data); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}
	return data
}
