package strategy

import (
	"math"
	"testing"

	"github.com/robomesh/swarmlearn/agent"
)

func testStrategy(id string) Strategy {
	return Strategy{
		ID:        id,
		Name:      id,
		Algorithm: agent.QLearning,
		Hyperparameters: map[string]float64{
			"learningRate": 0.1,
		},
	}
}

func TestManagerRegister(t *testing.T) {
	m := NewManager()

	if err := m.Register(testStrategy("a")); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(testStrategy("a")); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := m.Register(testStrategy("")); err == nil {
		t.Error("empty id accepted")
	}

	bad := testStrategy("b")
	bad.Algorithm = "Bogus"
	if err := m.Register(bad); err == nil {
		t.Error("unknown algorithm accepted")
	}

	if m.Len() != 1 {
		t.Errorf("manager holds %v strategies, want 1", m.Len())
	}
}

func TestManagerRunningMeans(t *testing.T) {
	m := NewManager()
	if err := m.Register(testStrategy("a")); err != nil {
		t.Fatal(err)
	}

	m.UpdatePerformance("a", 1, 10, true)
	m.UpdatePerformance("a", 2, 20, false)
	m.UpdatePerformance("a", 3, 30, true)

	s, err := m.Get("a")
	if err != nil {
		t.Fatal(err)
	}

	p := s.Performance
	if p.EpisodesRun != 3 {
		t.Errorf("episodes = %v, want 3", p.EpisodesRun)
	}
	if math.Abs(p.AvgReward-2) > 1e-12 {
		t.Errorf("average reward = %v, want 2", p.AvgReward)
	}
	if p.TotalReward != 6 || p.MaxReward != 3 || p.MinReward != 1 {
		t.Errorf("total/max/min = %v/%v/%v, want 6/3/1",
			p.TotalReward, p.MaxReward, p.MinReward)
	}
	if math.Abs(p.SuccessRate-2.0/3.0) > 1e-12 {
		t.Errorf("success rate = %v, want 2/3", p.SuccessRate)
	}
	if math.Abs(p.AvgSteps-20) > 1e-12 {
		t.Errorf("average steps = %v, want 20", p.AvgSteps)
	}
	if p.LastUpdated.IsZero() {
		t.Error("LastUpdated not set")
	}

	if err := m.UpdatePerformance("missing", 1, 1, true); err == nil {
		t.Error("update for an unregistered strategy accepted")
	}
}

func TestManagerMinEpisodesFilter(t *testing.T) {
	m := NewManager()
	m.Register(testStrategy("young"))
	m.Register(testStrategy("proven"))

	// The young strategy scores higher but sits below MinEpisodes
	for i := 0; i < MinEpisodes-1; i++ {
		m.UpdatePerformance("young", 100, 10, true)
	}
	for i := 0; i < MinEpisodes+1; i++ {
		m.UpdatePerformance("proven", 10, 10, true)
	}

	best, err := m.SelectBest(Reward)
	if err != nil {
		t.Fatal(err)
	}
	if best.ID != "proven" {
		t.Errorf("selected %q, want the strategy with enough episodes",
			best.ID)
	}

	// One more episode makes the young strategy eligible
	m.UpdatePerformance("young", 100, 10, true)
	best, err = m.SelectBest(Reward)
	if err != nil {
		t.Fatal(err)
	}
	if best.ID != "young" {
		t.Errorf("selected %q, want the higher-reward strategy", best.ID)
	}
}

func TestManagerSelectBestMetrics(t *testing.T) {
	m := NewManager()
	m.Register(testStrategy("fast"))
	m.Register(testStrategy("rich"))

	// fast earns less per episode but far more per step
	for i := 0; i < MinEpisodes; i++ {
		m.UpdatePerformance("fast", 50, 10, true)
		m.UpdatePerformance("rich", 80, 100, false)
	}

	if best, _ := m.SelectBest(Reward); best.ID != "rich" {
		t.Errorf("reward metric selected %q", best.ID)
	}
	if best, _ := m.SelectBest(Efficiency); best.ID != "fast" {
		t.Errorf("efficiency metric selected %q", best.ID)
	}
	if best, _ := m.SelectBest(Success); best.ID != "fast" {
		t.Errorf("success metric selected %q", best.ID)
	}

	if _, err := m.SelectBest("fame"); err == nil {
		t.Error("unknown metric accepted")
	}
}

func TestManagerSelectBestEmpty(t *testing.T) {
	m := NewManager()
	if _, err := m.SelectBest(Reward); err == nil {
		t.Error("selection with no eligible strategy succeeded")
	}
}

func TestManagerTop(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"a", "b", "c"} {
		m.Register(testStrategy(id))
	}
	rewards := map[string]float64{"a": 10, "b": 30, "c": 20}
	for id, r := range rewards {
		for i := 0; i < MinEpisodes; i++ {
			m.UpdatePerformance(id, r, 10, true)
		}
	}

	top, err := m.Top(2, Reward)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != "b" || top[1].ID != "c" {
		t.Errorf("top 2 = %v", top)
	}

	// Requests beyond the eligible count clamp
	top, err = m.Top(10, Reward)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Errorf("top 10 returned %v strategies, want 3", len(top))
	}
}

func TestManagerReturnsCopies(t *testing.T) {
	m := NewManager()
	m.Register(testStrategy("a"))
	m.UpdatePerformance("a", 5, 10, true)

	s, _ := m.Get("a")
	s.Performance.AvgReward = -1000

	again, _ := m.Get("a")
	if again.Performance.AvgReward == -1000 {
		t.Error("mutating a returned strategy reached the manager")
	}
}
