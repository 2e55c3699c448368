package valuefn

import (
	"github.com/robomesh/swarmlearn/experience"
)

// Table is a lookup-table Model keyed by discretized (state, action)
// buckets. Entries are created on first touch and never deleted within
// a training run, so the table grows monotonically.
type Table struct {
	values map[string]float64
	visits map[string]int
}

// NewTable returns an empty value table.
func NewTable() *Table {
	return &Table{
		values: make(map[string]float64),
		visits: make(map[string]int),
	}
}

func key(state experience.State, action experience.Action) string {
	return state.Key() + "#" + action.Key()
}

// Predict returns the stored estimate, 0 for an unseen bucket.
func (t *Table) Predict(state experience.State,
	action experience.Action) float64 {
	return t.values[key(state, action)]
}

// Update applies one incremental step toward target and returns the
// signed TD error before the update.
func (t *Table) Update(state experience.State, action experience.Action,
	target, learningRate float64) float64 {

	k := key(state, action)
	tdError := target - t.values[k]
	t.values[k] += learningRate * tdError
	t.visits[k]++
	return tdError
}

// Visits returns how many updates the (state, action) bucket has
// received.
func (t *Table) Visits(state experience.State,
	action experience.Action) int {
	return t.visits[key(state, action)]
}

// Len returns the number of buckets in the table.
func (t *Table) Len() int { return len(t.values) }
