package sim

import "math/rand"

// Probability bounds applied after every additive adjustment.
const (
	probFloor = 0.05
	probCeil  = 0.95
)

// Engagement and digital literacy shift attainment probabilities around
// their 0.5 midpoint with these coefficients.
const (
	engagementProbCoeff = 0.2
	literacyProbCoeff   = 0.1
)

// OutcomeDelta draws the one-year change in an individual's outcome score.
// Pure: the caller applies the delta.
//
// Enrolled individuals draw an improvement event whose probability combines
// the hidden-class base rate with engagement and literacy adjustments.
// Disenrolled and never-enrolled individuals drift, worse for the complex
// class. The three-way branch is what makes enrolled-only reporting look
// better than population reality.
func OutcomeDelta(ind *Individual, cfg *Config, rng *rand.Rand) float64 {
	if ind.Status == StatusEnrolled {
		baseProb := cfg.EasyImprovementProb
		improveMin, improveMax := cfg.EasyImprovementMin, cfg.EasyImprovementMax
		if ind.Complex {
			baseProb = cfg.ComplexImprovementProb
			improveMin, improveMax = cfg.ComplexImprovementMin, cfg.ComplexImprovementMax
		}

		prob := adjustedProb(baseProb, &ind.Obs)
		if rng.Float64() < prob {
			magnitude := improveMin + rng.Float64()*(improveMax-improveMin)
			// Engaged individuals convert improvement events into
			// larger gains.
			return magnitude * (0.8 + 0.4*ind.Obs.Engagement)
		}
		// No improvement: small symmetric noise.
		return -0.02 + rng.Float64()*0.04
	}

	// Disenrolled: negative-biased drift, worse for the complex class.
	if ind.Status == StatusDisenrolled {
		if ind.Complex {
			return -0.05 + rng.Float64()*0.05
		}
		return -0.02 + rng.Float64()*0.03
	}

	// Never enrolled: near-zero drift, still worse for the complex class.
	if ind.Complex {
		return -0.05 + rng.Float64()*0.05
	}
	return -0.01 + rng.Float64()*0.02
}

// EvaluateTargets draws attainment for every target required by the
// individual's assigned track. Each applicable target is an independent
// draw, so the probability of meeting ALL targets is the product of the
// per-target probabilities. Inapplicable targets are automatically
// satisfied without consuming a draw. Pure: the caller stores the flags.
//
// Returns nil for anyone not enrolled.
func EvaluateTargets(ind *Individual, cfg *Config, rng *rand.Rand) map[Target]bool {
	if ind.Status != StatusEnrolled || ind.EnrolledTrack == TrackNone {
		return nil
	}
	targets := TrackTargets[ind.EnrolledTrack]
	met := make(map[Target]bool, len(targets))
	for _, target := range targets {
		if !TargetApplies(target, &ind.Obs) {
			met[target] = true
			continue
		}
		prob := adjustedProb(targetBaseProb(target, ind.Complex, cfg), &ind.Obs)
		met[target] = rng.Float64() < prob
	}
	return met
}

// SpontaneousDropout draws whether an enrolled individual leaves the program
// on their own this year. Dropout risk rises with low engagement, low
// digital literacy, and hidden complexity.
func SpontaneousDropout(ind *Individual, cfg *Config, rng *rand.Rand) bool {
	if ind.Status != StatusEnrolled {
		return false
	}
	prob := cfg.BaseDropoutRate
	if ind.Obs.Engagement < 0.3 {
		prob += cfg.LowEngagementDropoutModifier
	}
	if ind.Obs.DigitalLiteracy < 0.3 {
		prob += cfg.LowLiteracyDropoutModifier
	}
	if ind.Complex {
		prob += cfg.ComplexDropoutModifier
	}
	prob = clamp(prob, 0.0, 0.6)
	return rng.Float64() < prob
}

// targetBaseProb returns the class-conditional base probability of meeting a
// single target.
func targetBaseProb(target Target, complex bool, cfg *Config) float64 {
	switch target {
	case TargetBPControlled:
		if complex {
			return cfg.BPControlProbComplex
		}
		return cfg.BPControlProbEasy
	case TargetA1CControlled:
		if complex {
			return cfg.A1CControlProbComplex
		}
		return cfg.A1CControlProbEasy
	case TargetKidneyStable:
		if complex {
			return cfg.KidneyStableProbComplex
		}
		return cfg.KidneyStableProbEasy
	case TargetFunctionalImproved:
		if complex {
			return cfg.FunctionalProbComplex
		}
		return cfg.FunctionalProbEasy
	case TargetPHQ9Improved:
		if complex {
			return cfg.PHQ9ProbComplex
		}
		return cfg.PHQ9ProbEasy
	default:
		return 0.0
	}
}

// adjustedProb applies the engagement and literacy adjustments to a base
// probability and clamps the result into [probFloor, probCeil].
func adjustedProb(base float64, obs *Observables) float64 {
	prob := base +
		(obs.Engagement-0.5)*engagementProbCoeff +
		(obs.DigitalLiteracy-0.5)*literacyProbCoeff
	return clamp(prob, probFloor, probCeil)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
