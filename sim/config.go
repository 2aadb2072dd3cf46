package sim

import (
	"fmt"
	"math"
)

// Seeding mode names accepted by Config.SeedingMode.
const (
	SeedingUniform    = "uniform"
	SeedingStratified = "stratified"
)

var validSeedingModes = map[string]bool{
	SeedingUniform: true, SeedingStratified: true,
}

// Config holds every tunable constant of a simulation run. All fields are
// plain values with no hidden defaults beyond DefaultConfig; a Config is
// valid only after Validate returns nil.
type Config struct {
	// Population settings
	PopulationSize     int     `yaml:"population_size"`
	ComplexFraction    float64 `yaml:"complex_fraction"` // hidden-complex share of the population
	RuralFraction      float64 `yaml:"rural_fraction"`
	TargetPanelSize    int     `yaml:"target_panel_size"`     // initial enrollment quota
	PanelGrowthPerYear int     `yaml:"panel_growth_per_year"` // new quota slots added each year

	// Simulation settings
	NumYears int   `yaml:"num_years"`
	Seed     int64 `yaml:"seed"`

	// Panel seeding
	SeedingMode         string  `yaml:"seeding_mode"`          // "uniform" or "stratified"
	SeedComplexFraction float64 `yaml:"seed_complex_fraction"` // stratified mode only

	// Withhold payment model: a fixed share of every track payment is at
	// risk and recovered according to per-track OAT performance.
	WithholdRate       float64 `yaml:"withhold_rate"`
	OATThreshold       float64 `yaml:"oat_threshold"`        // OAT at or above this recovers the full withhold
	MinWithholdReturn  float64 `yaml:"min_withhold_return"`  // recovery floor below threshold
	CostPerMember      float64 `yaml:"cost_per_member"`      // annual operating cost per enrolled member

	// Legacy single-track payment formula
	BaseRatePerMemberMonth float64 `yaml:"base_rate_per_member_month"`
	MaxEarnbackRate        float64 `yaml:"max_earnback_rate"` // per member per month at full improvement
	ImprovementCap         float64 `yaml:"improvement_cap"`   // avg improvement that earns the full earnback

	// Default policy thresholds
	DefaultMinEngagement      float64 `yaml:"default_min_engagement"`
	DefaultMaxConditions      int     `yaml:"default_max_conditions"`
	DefaultMinDigitalLiteracy float64 `yaml:"default_min_digital_literacy"`
	DefaultMinSDOHScore       float64 `yaml:"default_min_sdoh_score"`

	// Optimization settings
	EnableOptimization     bool `yaml:"enable_optimization"`
	OptimizationIterations int  `yaml:"optimization_iterations"`

	// Enrolled outcome model (legacy single improvement event per year)
	EasyImprovementProb    float64 `yaml:"easy_improvement_prob"`
	ComplexImprovementProb float64 `yaml:"complex_improvement_prob"`
	EasyImprovementMin     float64 `yaml:"easy_improvement_min"`
	EasyImprovementMax     float64 `yaml:"easy_improvement_max"`
	ComplexImprovementMin  float64 `yaml:"complex_improvement_min"`
	ComplexImprovementMax  float64 `yaml:"complex_improvement_max"`

	// Per-target attainment base probabilities, by hidden class.
	// Each target is evaluated independently; an individual must meet ALL
	// targets of their track to count toward OAT.
	BPControlProbEasy        float64 `yaml:"bp_control_prob_easy"`
	BPControlProbComplex     float64 `yaml:"bp_control_prob_complex"`
	A1CControlProbEasy       float64 `yaml:"a1c_control_prob_easy"`
	A1CControlProbComplex    float64 `yaml:"a1c_control_prob_complex"`
	KidneyStableProbEasy     float64 `yaml:"kidney_stable_prob_easy"`
	KidneyStableProbComplex  float64 `yaml:"kidney_stable_prob_complex"`
	FunctionalProbEasy       float64 `yaml:"functional_prob_easy"`
	FunctionalProbComplex    float64 `yaml:"functional_prob_complex"`
	PHQ9ProbEasy             float64 `yaml:"phq9_prob_easy"`
	PHQ9ProbComplex          float64 `yaml:"phq9_prob_complex"`

	// Spontaneous dropout parameters
	BaseDropoutRate              float64 `yaml:"base_dropout_rate"`
	LowEngagementDropoutModifier float64 `yaml:"low_engagement_dropout_modifier"`
	LowLiteracyDropoutModifier   float64 `yaml:"low_literacy_dropout_modifier"`
	ComplexDropoutModifier       float64 `yaml:"complex_dropout_modifier"`

	// Adverse-event model: expected events per year for a fully
	// uncontrolled individual.
	AnnualEventRate float64 `yaml:"annual_event_rate"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		PopulationSize:     100000,
		ComplexFraction:    0.2,
		RuralFraction:      0.25,
		TargetPanelSize:    5000,
		PanelGrowthPerYear: 1000,

		NumYears: 10,
		Seed:     42,

		SeedingMode:         SeedingUniform,
		SeedComplexFraction: 0.2,

		WithholdRate:      0.50,
		OATThreshold:      0.50,
		MinWithholdReturn: 0.50,
		CostPerMember:     240.0,

		BaseRatePerMemberMonth: 30.0,
		MaxEarnbackRate:        10.0,
		ImprovementCap:         0.15,

		DefaultMinEngagement:      0.3,
		DefaultMaxConditions:      5,
		DefaultMinDigitalLiteracy: 0.2,
		DefaultMinSDOHScore:       0.2,

		EnableOptimization:     true,
		OptimizationIterations: 20,

		EasyImprovementProb:    0.6,
		ComplexImprovementProb: 0.2,
		EasyImprovementMin:     0.1,
		EasyImprovementMax:     0.2,
		ComplexImprovementMin:  0.02,
		ComplexImprovementMax:  0.08,

		BPControlProbEasy:       0.70,
		BPControlProbComplex:    0.30,
		A1CControlProbEasy:      0.65,
		A1CControlProbComplex:   0.25,
		KidneyStableProbEasy:    0.80,
		KidneyStableProbComplex: 0.50,
		FunctionalProbEasy:      0.75,
		FunctionalProbComplex:   0.35,
		PHQ9ProbEasy:            0.60,
		PHQ9ProbComplex:         0.25,

		BaseDropoutRate:              0.05,
		LowEngagementDropoutModifier: 0.10,
		LowLiteracyDropoutModifier:   0.05,
		ComplexDropoutModifier:       0.08,

		AnnualEventRate: 0.01,
	}
}

// Validate checks that all fields hold values the simulation can run on.
// Invalid configuration fails here rather than propagating into a rollout.
func (c *Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be positive, got %d", c.PopulationSize)
	}
	if c.NumYears < 1 {
		return fmt.Errorf("num_years must be at least 1, got %d", c.NumYears)
	}
	if c.TargetPanelSize < 0 || c.TargetPanelSize > c.PopulationSize {
		return fmt.Errorf("target_panel_size must be in [0, population_size], got %d", c.TargetPanelSize)
	}
	if c.PanelGrowthPerYear < 0 {
		return fmt.Errorf("panel_growth_per_year must be non-negative, got %d", c.PanelGrowthPerYear)
	}
	if !validSeedingModes[c.SeedingMode] {
		return fmt.Errorf("unknown seeding_mode %q; valid: uniform, stratified", c.SeedingMode)
	}
	if c.OptimizationIterations < 0 {
		return fmt.Errorf("optimization_iterations must be non-negative, got %d", c.OptimizationIterations)
	}
	fractions := map[string]float64{
		"complex_fraction":      c.ComplexFraction,
		"rural_fraction":        c.RuralFraction,
		"seed_complex_fraction": c.SeedComplexFraction,
		"withhold_rate":         c.WithholdRate,
		"oat_threshold":         c.OATThreshold,
		"min_withhold_return":   c.MinWithholdReturn,
	}
	for name, val := range fractions {
		if err := validateUnitInterval(name, val); err != nil {
			return err
		}
	}
	probs := map[string]float64{
		"easy_improvement_prob":      c.EasyImprovementProb,
		"complex_improvement_prob":   c.ComplexImprovementProb,
		"bp_control_prob_easy":       c.BPControlProbEasy,
		"bp_control_prob_complex":    c.BPControlProbComplex,
		"a1c_control_prob_easy":      c.A1CControlProbEasy,
		"a1c_control_prob_complex":   c.A1CControlProbComplex,
		"kidney_stable_prob_easy":    c.KidneyStableProbEasy,
		"kidney_stable_prob_complex": c.KidneyStableProbComplex,
		"functional_prob_easy":       c.FunctionalProbEasy,
		"functional_prob_complex":    c.FunctionalProbComplex,
		"phq9_prob_easy":             c.PHQ9ProbEasy,
		"phq9_prob_complex":          c.PHQ9ProbComplex,
		"base_dropout_rate":          c.BaseDropoutRate,
		"annual_event_rate":          c.AnnualEventRate,
	}
	for name, val := range probs {
		if err := validateUnitInterval(name, val); err != nil {
			return err
		}
	}
	nonNegatives := map[string]float64{
		"cost_per_member":                 c.CostPerMember,
		"base_rate_per_member_month":      c.BaseRatePerMemberMonth,
		"max_earnback_rate":               c.MaxEarnbackRate,
		"low_engagement_dropout_modifier": c.LowEngagementDropoutModifier,
		"low_literacy_dropout_modifier":   c.LowLiteracyDropoutModifier,
		"complex_dropout_modifier":        c.ComplexDropoutModifier,
	}
	for name, val := range nonNegatives {
		if err := validateFiniteNonNegative(name, val); err != nil {
			return err
		}
	}
	if c.ImprovementCap <= 0 {
		return fmt.Errorf("improvement_cap must be positive, got %f", c.ImprovementCap)
	}
	if c.EasyImprovementMin > c.EasyImprovementMax {
		return fmt.Errorf("easy_improvement_min %f exceeds easy_improvement_max %f",
			c.EasyImprovementMin, c.EasyImprovementMax)
	}
	if c.ComplexImprovementMin > c.ComplexImprovementMax {
		return fmt.Errorf("complex_improvement_min %f exceeds complex_improvement_max %f",
			c.ComplexImprovementMin, c.ComplexImprovementMax)
	}
	if c.DefaultMaxConditions < 0 {
		return fmt.Errorf("default_max_conditions must be non-negative, got %d", c.DefaultMaxConditions)
	}
	for name, val := range map[string]float64{
		"default_min_engagement":       c.DefaultMinEngagement,
		"default_min_digital_literacy": c.DefaultMinDigitalLiteracy,
		"default_min_sdoh_score":       c.DefaultMinSDOHScore,
	} {
		if err := validateUnitInterval(name, val); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPolicy builds the policy a run starts from when the caller supplies
// none.
func (c *Config) DefaultPolicy() Policy {
	p := DefaultPolicy()
	p.MinEngagement = c.DefaultMinEngagement
	p.MaxConditions = c.DefaultMaxConditions
	p.MinDigitalLiteracy = c.DefaultMinDigitalLiteracy
	p.MinSDOHScore = c.DefaultMinSDOHScore
	return p
}

func validateUnitInterval(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
		return fmt.Errorf("%s must be a finite non-negative number, got %f", name, val)
	}
	return nil
}
