package sim

import (
	"math"
	"math/rand"
)

// Policy holds the tunable parameters for enrollment, track assignment, and
// disenrollment decisions. A Policy is a value object: Mutate returns a new
// instance and never modifies the receiver. Policy code only ever reads
// Observables, so the hidden difficulty class cannot leak into decisions.
type Policy struct {
	// Enrollment gate: every condition must pass.
	MinEngagement      float64
	MaxConditions      int
	MinDigitalLiteracy float64
	MinSDOHScore       float64

	// Drop rule selection. When DropOnMissedTargets is set, enrolled
	// individuals failing any of their track's targets are dropped;
	// otherwise the legacy improvement-threshold rule applies.
	DropOnMissedTargets bool
	DropThreshold       float64

	// Track preference weights for weighted-random assignment at
	// enrollment. Tracks with fewer targets are easier to keep above the
	// OAT threshold, which is exactly what the optimizer discovers.
	ECKMPreference float64
	CKMPreference  float64
	MSKPreference  float64
	BHPreference   float64
}

// DefaultPolicy returns the reference starting policy.
func DefaultPolicy() Policy {
	return Policy{
		MinEngagement:      0.3,
		MaxConditions:      5,
		MinDigitalLiteracy: 0.2,
		MinSDOHScore:       0.2,

		DropOnMissedTargets: true,
		DropThreshold:       0.02,

		ECKMPreference: 0.5,
		CKMPreference:  0.6,
		MSKPreference:  0.7,
		BHPreference:   0.9,
	}
}

// Admits reports whether a not-enrolled individual passes the enrollment
// gate. All conditions are AND-ed; any single failure rejects.
func (p *Policy) Admits(status Status, obs *Observables) bool {
	if status != StatusNotEnrolled {
		return false
	}
	if obs.Engagement < p.MinEngagement {
		return false
	}
	if obs.ChronicConditions > p.MaxConditions {
		return false
	}
	if obs.DigitalLiteracy < p.MinDigitalLiteracy {
		return false
	}
	if obs.SDOHScore < p.MinSDOHScore {
		return false
	}
	return len(EligibleTracks(obs)) > 0
}

// Preference returns the stored preference weight for a track.
func (p *Policy) Preference(track Track) float64 {
	switch track {
	case TrackECKM:
		return p.ECKMPreference
	case TrackCKM:
		return p.CKMPreference
	case TrackMSK:
		return p.MSKPreference
	case TrackBH:
		return p.BHPreference
	default:
		return 0.0
	}
}

// AssignTrack picks a track for an admitted individual by cumulative-weight
// sampling over their eligible tracks only. The cumulative total is
// recomputed each call because eligibility varies per individual.
// Returns TrackNone only when no track is eligible.
func (p *Policy) AssignTrack(obs *Observables, rng *rand.Rand) Track {
	eligible := EligibleTracks(obs)
	if len(eligible) == 0 {
		return TrackNone
	}
	total := 0.0
	for _, t := range eligible {
		total += p.Preference(t)
	}
	if total <= 0 {
		return eligible[0]
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for _, t := range eligible {
		cumulative += p.Preference(t)
		if r <= cumulative {
			return t
		}
	}
	return eligible[len(eligible)-1]
}

// Drops reports whether an enrolled individual should be disenrolled.
// meetsTargets is computed by the caller from full state so that Policy
// itself never touches anything beyond observables and per-year results.
func (p *Policy) Drops(status Status, meetsTargets bool, outcomeDelta float64) bool {
	if status != StatusEnrolled {
		return false
	}
	if p.DropOnMissedTargets {
		return !meetsTargets
	}
	return outcomeDelta < p.DropThreshold
}

// Per-field mutation coefficients. scale multiplies these to give the
// standard deviation of the Gaussian perturbation for each field.
const (
	thresholdMutationCoeff  = 0.3
	dropThreshMutationCoeff = 0.05
	preferenceMutationCoeff = 0.2

	conditionsMutationProb = 0.3
	dropModeFlipProb       = 0.1
)

// Mutate returns a perturbed copy of the policy for local search. Every
// continuous threshold moves by independent Gaussian noise scaled by the
// per-field coefficient, then clamps to its valid range. The discrete
// condition cap steps by ±1 with small probability, and the drop-mode flag
// flips with small probability. Callers shrink scale across iterations to
// get convergent rather than perpetually-random search.
func (p Policy) Mutate(rng *rand.Rand, scale float64) Policy {
	next := p

	next.MinEngagement = clamp(p.MinEngagement+rng.NormFloat64()*scale*thresholdMutationCoeff, 0.0, 1.0)
	next.MinDigitalLiteracy = clamp(p.MinDigitalLiteracy+rng.NormFloat64()*scale*thresholdMutationCoeff, 0.0, 1.0)
	next.MinSDOHScore = clamp(p.MinSDOHScore+rng.NormFloat64()*scale*thresholdMutationCoeff, 0.0, 1.0)
	next.DropThreshold = clamp(p.DropThreshold+rng.NormFloat64()*scale*dropThreshMutationCoeff, -0.1, 0.15)

	if rng.Float64() < conditionsMutationProb {
		step := rng.Intn(3) - 1 // -1, 0, or +1
		next.MaxConditions = clampInt(p.MaxConditions+step, 1, 10)
	}

	next.ECKMPreference = clamp(p.ECKMPreference+rng.NormFloat64()*scale*preferenceMutationCoeff, 0.1, 1.0)
	next.CKMPreference = clamp(p.CKMPreference+rng.NormFloat64()*scale*preferenceMutationCoeff, 0.1, 1.0)
	next.MSKPreference = clamp(p.MSKPreference+rng.NormFloat64()*scale*preferenceMutationCoeff, 0.1, 1.0)
	next.BHPreference = clamp(p.BHPreference+rng.NormFloat64()*scale*preferenceMutationCoeff, 0.1, 1.0)

	if rng.Float64() < dropModeFlipProb {
		next.DropOnMissedTargets = !p.DropOnMissedTargets
	}

	return next
}

// Summary returns a flat mapping of every tunable field to its current
// value, for display.
func (p *Policy) Summary() map[string]any {
	return map[string]any{
		"min_engagement":         round3(p.MinEngagement),
		"max_conditions":         p.MaxConditions,
		"min_digital_literacy":   round3(p.MinDigitalLiteracy),
		"min_sdoh_score":         round3(p.MinSDOHScore),
		"drop_threshold":         round3(p.DropThreshold),
		"drop_on_missed_targets": p.DropOnMissedTargets,
		"eckm_preference":        round3(p.ECKMPreference),
		"ckm_preference":         round3(p.CKMPreference),
		"msk_preference":         round3(p.MSKPreference),
		"bh_preference":          round3(p.BHPreference),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
