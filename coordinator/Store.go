package coordinator

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/robomesh/swarmlearn/experience"
	"github.com/robomesh/swarmlearn/expreplay"
)

// Store is the long-term persistence collaborator: an external,
// possibly vector-indexed archive of experience. Every call may be
// slow or unavailable; the coordinator treats all Store failures as
// recoverable and never lets them stop training.
type Store interface {
	// Store archives one experience with its metadata.
	Store(exp experience.Experience, meta expreplay.Metadata) error

	// RetrieveSimilar returns up to k archived experiences nearest to
	// the query encoding.
	RetrieveSimilar(query []float64, k int) ([]experience.Experience, error)

	// Checkpoint persists a named marker of training progress.
	Checkpoint(name string) error
}

// MemoryStore is an in-memory Store used in demonstrations and tests.
// Setting FailEvery to n > 0 makes every n-th call fail, which
// exercises the coordinator's best-effort handling.
type MemoryStore struct {
	mu          sync.Mutex
	experiences []experience.Experience
	checkpoints []string
	calls       int

	FailEvery int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) fail(op string) error {
	m.calls++
	if m.FailEvery > 0 && m.calls%m.FailEvery == 0 {
		return fmt.Errorf("%v: store unavailable", op)
	}
	return nil
}

// Store archives one experience in memory.
func (m *MemoryStore) Store(exp experience.Experience,
	meta expreplay.Metadata) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("store"); err != nil {
		return err
	}
	m.experiences = append(m.experiences, exp)
	return nil
}

// RetrieveSimilar scans the archive for the k experiences whose
// starting-state encodings lie nearest to query.
func (m *MemoryStore) RetrieveSimilar(query []float64,
	k int) ([]experience.Experience, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("retrieveSimilar"); err != nil {
		return nil, err
	}
	if len(query) == 0 || len(query)%2 != 0 {
		return nil, fmt.Errorf("retrieveSimilar: query must hold an even "+
			"number of features, have %v", len(query))
	}

	dims := len(query) / 2
	type scored struct {
		index    int
		distance float64
	}

	distances := make([]scored, len(m.experiences))
	for i, exp := range m.experiences {
		enc := exp.Encode(dims)
		floats.Sub(enc, query)
		distances[i] = scored{index: i, distance: floats.Norm(enc, 2)}
	}
	sort.Slice(distances, func(i, j int) bool {
		return distances[i].distance < distances[j].distance
	})

	if k > len(distances) {
		k = len(distances)
	}
	nearest := make([]experience.Experience, k)
	for i := 0; i < k; i++ {
		nearest[i] = m.experiences[distances[i].index]
	}
	return nearest, nil
}

// Checkpoint records a named checkpoint marker.
func (m *MemoryStore) Checkpoint(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("checkpoint"); err != nil {
		return err
	}
	m.checkpoints = append(m.checkpoints, name)
	return nil
}

// Len returns the number of archived experiences.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.experiences)
}

// Checkpoints returns the recorded checkpoint names, oldest first.
func (m *MemoryStore) Checkpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.checkpoints))
	copy(names, m.checkpoints)
	return names
}
