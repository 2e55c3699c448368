package tracker

import (
	"encoding/gob"
	"log"
	"os"
)

// Return tracks the reward of every completed episode, across all
// robots in arrival order, and saves the sequence to disk as a gob
// file.
type Return struct {
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track caches the episode's total reward
func (r *Return) Track(rec Record) {
	r.episodeReturns = append(r.episodeReturns, rec.Reward)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() {
	file, err := os.Create(r.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err := en.Encode(r.episodeReturns); err != nil {
		log.Fatalf("could not encode return data: %v", err)
	}
}

// Returns exposes the cached episode returns, oldest first.
func (r *Return) Returns() []float64 { return r.episodeReturns }

// EpisodeLength tracks the step count of every completed episode and
// saves the sequence to disk as a gob file.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength creates and returns a new *EpisodeLength Tracker
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode's step count
func (e *EpisodeLength) Track(rec Record) {
	e.episodeLengths = append(e.episodeLengths, float64(rec.Steps))
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() {
	file, err := os.Create(e.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err := en.Encode(e.episodeLengths); err != nil {
		log.Fatalf("could not encode episode length data: %v", err)
	}
}

// Lengths exposes the cached episode lengths, oldest first.
func (e *EpisodeLength) Lengths() []float64 { return e.episodeLengths }
