package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// RunResult bundles all outputs of a simulation run.
type RunResult struct {
	Years       []YearlyMetrics
	FinalPolicy Policy

	// OptimizedPolicy is set when optimization ran; it then equals
	// FinalPolicy.
	OptimizedPolicy *Policy

	// RewardHistory is the optimizer's incumbent objective per iteration
	// (nil when optimization was disabled).
	RewardHistory []float64
}

// TwoOrgResult holds the outputs of a two-organization comparison run.
type TwoOrgResult struct {
	MetricsA []YearlyMetrics
	MetricsB []YearlyMetrics
	PolicyA  Policy
	PolicyB  Policy
}

// Simulator owns one generated population and runs multi-year rollouts over
// it. The population is generated once and shared across every optimizer
// evaluation and the final run: rollouts reset its mutable state instead of
// regenerating, so objectives stay comparable across candidates.
type Simulator struct {
	cfg Config
	pop []*Individual
	rng *PartitionedRNG
}

// NewSimulator validates the configuration and generates the population.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	pop, err := GeneratePopulation(cfg, rng.SeedFor(SubsystemPopulation))
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}
	return &Simulator{cfg: cfg, pop: pop, rng: rng}, nil
}

// Population exposes the generated population for inspection in tests and
// reporting. Callers must not mutate it outside a rollout.
func (s *Simulator) Population() []*Individual {
	return s.pop
}

// rolloutSeeds pins the seeding and yearly RNG streams of one rollout.
// Every optimizer candidate is evaluated under identical seeds so the
// objective differences come from the policy alone.
type rolloutSeeds struct {
	seeding int64
	rollout int64
}

// seedSpec selects the initial panel seeding behavior.
type seedSpec struct {
	mode        string
	complexFrac float64 // stratified mode only
}

// Run executes the full simulation: optional policy optimization followed by
// the reported rollout. initial overrides the config-derived default policy;
// enableOptimization overrides cfg.EnableOptimization. Both may be nil.
func (s *Simulator) Run(initial *Policy, enableOptimization *bool) (*RunResult, error) {
	policy := s.cfg.DefaultPolicy()
	if initial != nil {
		policy = *initial
	}
	optimize := s.cfg.EnableOptimization
	if enableOptimization != nil {
		optimize = *enableOptimization
	}

	seeds := rolloutSeeds{
		seeding: s.rng.SeedFor(SubsystemSeeding),
		rollout: s.rng.SeedFor(SubsystemRollout),
	}
	seeding := seedSpec{mode: s.cfg.SeedingMode, complexFrac: s.cfg.SeedComplexFraction}

	result := &RunResult{}
	if optimize {
		logrus.Infof("optimizing policy over %d iterations", s.cfg.OptimizationIterations)
		evaluate := func(candidate Policy) float64 {
			return rolloutReward(s.pop, &s.cfg, &candidate, seeds, seeding)
		}
		optimized, history := OptimizePolicy(policy, evaluate, s.cfg.OptimizationIterations, s.rng.ForSubsystem(SubsystemOptimizer))
		policy = optimized
		result.OptimizedPolicy = &optimized
		result.RewardHistory = history
		logrus.Infof("optimization finished: best cumulative reward %.2f", history[len(history)-1])
	}

	result.FinalPolicy = policy
	result.Years = fullRollout(s.pop, &s.cfg, &policy, seeds, seeding)
	return result, nil
}

// RunTwoOrg simulates two organizations on the same population template with
// different starting panel compositions. Each org gets its own deterministic
// RNG streams and its own optimized policy; there is no shared mutable state
// between the two beyond the population attributes, which are reset between
// the runs.
func RunTwoOrg(cfg Config, complexFracA, complexFracB float64) (*TwoOrgResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := validateUnitInterval("complex_frac_a", complexFracA); err != nil {
		return nil, err
	}
	if err := validateUnitInterval("complex_frac_b", complexFracB); err != nil {
		return nil, err
	}

	master := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	pop, err := GeneratePopulation(cfg, master.SeedFor(SubsystemPopulation))
	if err != nil {
		return nil, fmt.Errorf("generating population: %w", err)
	}

	runOrg := func(id int, frac float64) ([]YearlyMetrics, Policy) {
		orgRNG := NewPartitionedRNG(NewSimulationKey(master.SeedFor(SubsystemOrg(id))))
		seeds := rolloutSeeds{
			seeding: orgRNG.SeedFor(SubsystemSeeding),
			rollout: orgRNG.SeedFor(SubsystemRollout),
		}
		seeding := seedSpec{mode: SeedingStratified, complexFrac: frac}

		initial := cfg.DefaultPolicy()
		evaluate := func(candidate Policy) float64 {
			return rolloutReward(pop, &cfg, &candidate, seeds, seeding)
		}
		logrus.Infof("org %d: optimizing policy (initial complex fraction %.2f)", id, frac)
		optimized, _ := OptimizePolicy(initial, evaluate, cfg.OptimizationIterations, orgRNG.ForSubsystem(SubsystemOptimizer))
		return fullRollout(pop, &cfg, &optimized, seeds, seeding), optimized
	}

	result := &TwoOrgResult{}
	result.MetricsA, result.PolicyA = runOrg(0, complexFracA)
	result.MetricsB, result.PolicyB = runOrg(1, complexFracB)
	return result, nil
}

// rolloutReward runs one full multi-year rollout and returns the cumulative
// net reward. This is the optimizer's objective function.
func rolloutReward(pop []*Individual, cfg *Config, policy *Policy, seeds rolloutSeeds, seeding seedSpec) float64 {
	ResetPopulation(pop)
	seedPanel(pop, cfg, policy, rand.New(rand.NewSource(seeds.seeding)), seeding)

	rng := rand.New(rand.NewSource(seeds.rollout))
	total := 0.0
	for year := 1; year <= cfg.NumYears; year++ {
		runYear(pop, policy, cfg, year, rng)
		fin, _ := ComputeYearFinancials(pop, year, cfg)
		total += fin.Revenue
	}
	return total
}

// fullRollout runs the reported rollout: year 0 is recorded immediately
// after initial seeding and before any environment step, then each year is
// simulated and snapshotted.
func fullRollout(pop []*Individual, cfg *Config, policy *Policy, seeds rolloutSeeds, seeding seedSpec) []YearlyMetrics {
	ResetPopulation(pop)
	seedPanel(pop, cfg, policy, rand.New(rand.NewSource(seeds.seeding)), seeding)

	years := make([]YearlyMetrics, 0, cfg.NumYears+1)
	years = append(years, ComputeYearlyMetrics(pop, 0, map[int]float64{}, cfg))

	rng := rand.New(rand.NewSource(seeds.rollout))
	for year := 1; year <= cfg.NumYears; year++ {
		deltas := runYear(pop, policy, cfg, year, rng)
		years = append(years, ComputeYearlyMetrics(pop, year, deltas, cfg))
	}
	return years
}

// seedPanel enrolls the initial panel. Uniform mode takes a random sample of
// the population; stratified mode draws a fixed fraction from each hidden
// class, so the initial panel's complex share can differ arbitrarily from
// the population's. Track assignment uses the policy's preference weights.
func seedPanel(pop []*Individual, cfg *Config, policy *Policy, rng *rand.Rand, seeding seedSpec) {
	switch seeding.mode {
	case SeedingStratified:
		var complexPool, easyPool []*Individual
		for _, ind := range pop {
			if ind.Status != StatusNotEnrolled {
				continue
			}
			if ind.Complex {
				complexPool = append(complexPool, ind)
			} else {
				easyPool = append(easyPool, ind)
			}
		}
		shuffle(complexPool, rng)
		shuffle(easyPool, rng)

		wantComplex := int(float64(cfg.TargetPanelSize) * seeding.complexFrac)
		if wantComplex > len(complexPool) {
			wantComplex = len(complexPool)
		}
		wantEasy := cfg.TargetPanelSize - wantComplex
		if wantEasy > len(easyPool) {
			wantEasy = len(easyPool)
		}
		for _, ind := range complexPool[:wantComplex] {
			enrollSeeded(ind, policy, rng)
		}
		for _, ind := range easyPool[:wantEasy] {
			enrollSeeded(ind, policy, rng)
		}

	default: // uniform
		var available []*Individual
		for _, ind := range pop {
			if ind.Status == StatusNotEnrolled {
				available = append(available, ind)
			}
		}
		shuffle(available, rng)
		n := cfg.TargetPanelSize
		if n > len(available) {
			n = len(available)
		}
		for _, ind := range available[:n] {
			enrollSeeded(ind, policy, rng)
		}
	}
}

func enrollSeeded(ind *Individual, policy *Policy, rng *rand.Rand) {
	track := policy.AssignTrack(&ind.Obs, rng)
	if track == TrackNone {
		return
	}
	ind.Enroll(track, 0)
}

// runYear advances the population one simulated year:
//  1. draw and apply every individual's outcome delta
//  2. evaluate track targets for the enrolled
//  3. spontaneous dropout
//  4. policy-driven disenrollment, worst performers first
//  5. backfill the panel to the year's quota, best proxies first
//
// Returns the per-individual outcome deltas for metrics.
func runYear(pop []*Individual, policy *Policy, cfg *Config, year int, rng *rand.Rand) map[int]float64 {
	deltas := make(map[int]float64, len(pop))
	for _, ind := range pop {
		delta := OutcomeDelta(ind, cfg, rng)
		ind.OutcomeScore = clamp(ind.OutcomeScore+delta, 0.0, 1.0)
		deltas[ind.ID] = delta
	}

	for _, ind := range pop {
		if ind.Status == StatusEnrolled {
			ind.TargetsMet = EvaluateTargets(ind, cfg, rng)
		}
	}

	for _, ind := range pop {
		if SpontaneousDropout(ind, cfg, rng) {
			ind.Disenroll(year)
		}
	}

	// Lemon-dropping: review the enrolled panel worst performer first.
	var enrolled []*Individual
	for _, ind := range pop {
		if ind.Status == StatusEnrolled {
			enrolled = append(enrolled, ind)
		}
	}
	sort.Slice(enrolled, func(i, j int) bool {
		di, dj := deltas[enrolled[i].ID], deltas[enrolled[j].ID]
		if di != dj {
			return di < dj
		}
		return enrolled[i].ID < enrolled[j].ID
	})
	for _, ind := range enrolled {
		if policy.Drops(ind.Status, ind.MeetsTrackTargets(), deltas[ind.ID]) {
			ind.Disenroll(year)
		}
	}

	// Cherry-picking: refill the panel up to the year's quota from the
	// admissible pool, ranked by the engagement + digital literacy proxy.
	quota := cfg.TargetPanelSize + year*cfg.PanelGrowthPerYear
	enrolledCount := 0
	for _, ind := range pop {
		if ind.Status == StatusEnrolled {
			enrolledCount++
		}
	}
	if slots := quota - enrolledCount; slots > 0 {
		var candidates []*Individual
		for _, ind := range pop {
			if policy.Admits(ind.Status, &ind.Obs) {
				candidates = append(candidates, ind)
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			si := candidates[i].Obs.Engagement + candidates[i].Obs.DigitalLiteracy
			sj := candidates[j].Obs.Engagement + candidates[j].Obs.DigitalLiteracy
			if si != sj {
				return si > sj
			}
			return candidates[i].ID < candidates[j].ID
		})
		for _, ind := range candidates {
			if slots == 0 {
				break
			}
			track := policy.AssignTrack(&ind.Obs, rng)
			if track == TrackNone {
				continue
			}
			ind.Enroll(track, year)
			slots--
		}
	}

	return deltas
}

func shuffle(inds []*Individual, rng *rand.Rand) {
	rng.Shuffle(len(inds), func(i, j int) {
		inds[i], inds[j] = inds[j], inds[i]
	})
}
