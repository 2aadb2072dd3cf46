package sim

import (
	"math"
	"reflect"
	"testing"
)

// simTestConfig is a small configuration that keeps rollouts fast while
// leaving enough individuals for composition statistics.
func simTestConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 2000
	cfg.TargetPanelSize = 200
	cfg.PanelGrowthPerYear = 50
	cfg.NumYears = 4
	cfg.EnableOptimization = false
	cfg.OptimizationIterations = 3
	return cfg
}

func boolPtr(b bool) *bool { return &b }

func TestSimulatorRun_DeterministicGivenSeed(t *testing.T) {
	cfg := simTestConfig()

	runOnce := func() *RunResult {
		s, err := NewSimulator(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := s.Run(nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return result
	}

	a, b := runOnce(), runOnce()
	if a.FinalPolicy != b.FinalPolicy {
		t.Error("final policies differ between identically seeded runs")
	}
	if !reflect.DeepEqual(a.Years, b.Years) {
		t.Error("yearly metrics differ between identically seeded runs")
	}
}

func TestSimulatorRun_SeedChangesOutcome(t *testing.T) {
	cfgA := simTestConfig()
	cfgB := simTestConfig()
	cfgB.Seed = 777

	runFor := func(cfg Config) []YearlyMetrics {
		s, err := NewSimulator(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := s.Run(nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return result.Years
	}

	if reflect.DeepEqual(runFor(cfgA), runFor(cfgB)) {
		t.Error("different seeds produced identical metrics")
	}
}

func TestSimulatorRun_YearSequenceAndPanelQuota(t *testing.T) {
	cfg := simTestConfig()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Years) != cfg.NumYears+1 {
		t.Fatalf("got %d yearly snapshots, want %d", len(result.Years), cfg.NumYears+1)
	}
	for i, m := range result.Years {
		if m.Year != i {
			t.Fatalf("snapshot %d reports year %d", i, m.Year)
		}
		quota := cfg.TargetPanelSize + m.Year*cfg.PanelGrowthPerYear
		if m.EnrolledCount > quota {
			t.Fatalf("year %d: enrolled %d exceeds quota %d", m.Year, m.EnrolledCount, quota)
		}
		if m.TotalCount != cfg.PopulationSize {
			t.Fatalf("year %d: total count %d, want %d", m.Year, m.TotalCount, cfg.PopulationSize)
		}
	}
	// The default policy always finds an eligible track, so the initial
	// panel fills completely.
	if got := result.Years[0].EnrolledCount; got != cfg.TargetPanelSize {
		t.Errorf("year 0 enrolled = %d, want full panel %d", got, cfg.TargetPanelSize)
	}
}

func TestSimulatorRun_PopulationStateStaysConsistent(t *testing.T) {
	cfg := simTestConfig()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatal(err)
	}

	for _, ind := range s.Population() {
		switch ind.Status {
		case StatusEnrolled:
			if ind.EnrolledTrack == TrackNone {
				t.Fatalf("individual %d enrolled without a track", ind.ID)
			}
			if ind.YearEnrolled == yearNone {
				t.Fatalf("individual %d enrolled without an enrollment year", ind.ID)
			}
		case StatusDisenrolled:
			if ind.EnrolledTrack != TrackNone {
				t.Fatalf("individual %d disenrolled but still holds a track", ind.ID)
			}
			if ind.YearDisenrolled < 1 {
				t.Fatalf("individual %d disenrolled in year %d", ind.ID, ind.YearDisenrolled)
			}
		}
		if ind.OutcomeScore < 0 || ind.OutcomeScore > 1 {
			t.Fatalf("individual %d: outcome %.4f outside [0, 1]", ind.ID, ind.OutcomeScore)
		}
	}
}

func TestSimulatorRun_StratifiedSeedingHitsTargetComposition(t *testing.T) {
	cfg := simTestConfig()
	cfg.SeedingMode = SeedingStratified
	cfg.SeedComplexFraction = 0.5

	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := result.Years[0].PctComplexEnrolled
	if math.Abs(got-50.0) > 3.0 {
		t.Errorf("year 0 complex share = %.1f%%, want ≈ 50%%", got)
	}
}

func TestSimulatorRun_OptimizationProducesHistory(t *testing.T) {
	cfg := simTestConfig()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(nil, boolPtr(true))
	if err != nil {
		t.Fatal(err)
	}

	if result.OptimizedPolicy == nil {
		t.Fatal("optimization ran but OptimizedPolicy is nil")
	}
	if *result.OptimizedPolicy != result.FinalPolicy {
		t.Error("optimized policy must equal the final policy")
	}
	if len(result.RewardHistory) != cfg.OptimizationIterations+1 {
		t.Fatalf("reward history length = %d, want %d", len(result.RewardHistory), cfg.OptimizationIterations+1)
	}
	for i := 1; i < len(result.RewardHistory); i++ {
		if result.RewardHistory[i] < result.RewardHistory[i-1] {
			t.Fatalf("incumbent reward decreased at iteration %d", i)
		}
	}
}

func TestSimulatorRun_InitialPolicyOverride(t *testing.T) {
	cfg := simTestConfig()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}

	custom := DefaultPolicy()
	custom.MinEngagement = 0.55
	result, err := s.Run(&custom, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FinalPolicy != custom {
		t.Error("with optimization off, the final policy must be the supplied one")
	}
	if result.OptimizedPolicy != nil || result.RewardHistory != nil {
		t.Error("optimization outputs must be empty when optimization is off")
	}
}

func TestSimulatorRun_SelectionShiftsPanelTowardEasy(t *testing.T) {
	cfg := simTestConfig()
	cfg.NumYears = 6
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Target-driven drops plus proxy-ranked backfill push the hidden
	// complex share of the panel below the population's 20%.
	first := result.Years[0].PctComplexEnrolled
	last := result.Years[len(result.Years)-1].PctComplexEnrolled
	if last >= first {
		t.Errorf("complex share did not fall: year 0 %.1f%%, final %.1f%%", first, last)
	}
}

func TestRunTwoOrg_PanelsConvergeDespiteDifferentStarts(t *testing.T) {
	cfg := simTestConfig()
	cfg.OptimizationIterations = 2

	result, err := RunTwoOrg(cfg, 0.8, 0.2)
	if err != nil {
		t.Fatal(err)
	}

	startA := result.MetricsA[0].PctComplexEnrolled
	startB := result.MetricsB[0].PctComplexEnrolled
	if math.Abs(startA-80.0) > 5.0 {
		t.Fatalf("org A seeded at %.1f%% complex, want ≈ 80%%", startA)
	}
	if math.Abs(startB-20.0) > 5.0 {
		t.Fatalf("org B seeded at %.1f%% complex, want ≈ 20%%", startB)
	}

	lastA := result.MetricsA[len(result.MetricsA)-1].PctComplexEnrolled
	lastB := result.MetricsB[len(result.MetricsB)-1].PctComplexEnrolled
	initialGap := math.Abs(startA - startB)
	finalGap := math.Abs(lastA - lastB)
	if finalGap >= initialGap {
		t.Errorf("panel compositions did not converge: initial gap %.1fpp, final gap %.1fpp", initialGap, finalGap)
	}
}

func TestRunTwoOrg_RejectsInvalidFractions(t *testing.T) {
	cfg := simTestConfig()
	if _, err := RunTwoOrg(cfg, 1.5, 0.2); err == nil {
		t.Error("expected error for complex fraction above 1")
	}
	if _, err := RunTwoOrg(cfg, 0.5, -0.1); err == nil {
		t.Error("expected error for negative complex fraction")
	}
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	cfg := simTestConfig()
	cfg.WithholdRate = 1.5
	if _, err := NewSimulator(cfg); err == nil {
		t.Error("expected validation error")
	}
}
