package sim

// Track identifies a care-management program category with its own payment
// schedule and required outcome targets.
type Track int

const (
	// TrackNone marks an individual with no track assignment.
	TrackNone Track = iota
	// TrackECKM is Enhanced Chronic Kidney Management.
	TrackECKM
	// TrackCKM is Chronic Kidney Management.
	TrackCKM
	// TrackMSK is Musculoskeletal.
	TrackMSK
	// TrackBH is Behavioral Health.
	TrackBH
)

// AllTracks lists every real track in canonical order. Reporting and
// cumulative-weight sampling iterate this slice so results are
// order-deterministic.
var AllTracks = []Track{TrackECKM, TrackCKM, TrackMSK, TrackBH}

func (t Track) String() string {
	switch t {
	case TrackECKM:
		return "eCKM"
	case TrackCKM:
		return "CKM"
	case TrackMSK:
		return "MSK"
	case TrackBH:
		return "BH"
	default:
		return "none"
	}
}

// Target is a single binary outcome requirement attached to a track.
type Target int

const (
	// TargetBPControlled requires systolic blood pressure under control.
	TargetBPControlled Target = iota
	// TargetA1CControlled requires HbA1c under control; applies to
	// diabetics only.
	TargetA1CControlled
	// TargetKidneyStable requires no CKD progression; applies to CKD
	// individuals only.
	TargetKidneyStable
	// TargetFunctionalImproved requires musculoskeletal functional gain.
	TargetFunctionalImproved
	// TargetPHQ9Improved requires a PHQ-9 depression score improvement.
	TargetPHQ9Improved
)

func (t Target) String() string {
	switch t {
	case TargetBPControlled:
		return "bp_controlled"
	case TargetA1CControlled:
		return "hba1c_controlled"
	case TargetKidneyStable:
		return "kidney_stable"
	case TargetFunctionalImproved:
		return "functional_improved"
	case TargetPHQ9Improved:
		return "phq9_improved"
	default:
		return "unknown"
	}
}

// TrackPayment is the payment schedule for one track. A fixed share of every
// payment is withheld and recovered according to OAT performance; the split
// itself lives in the finance layer, this table only carries gross amounts.
type TrackPayment struct {
	Track          Track
	InitialPayment float64 // annual payment for the first enrollment year
	FollowOn       float64 // annual payment for subsequent years (0 when HasFollowOn is false)
	RuralAddon     float64 // per-month add-on for rural individuals
	HasFollowOn    bool    // false = single-episode track, pays nothing after year 1
}

// TrackPayments is the static payment table, keyed by track.
var TrackPayments = map[Track]TrackPayment{
	TrackECKM: {
		Track:          TrackECKM,
		InitialPayment: 360.0, // $30/month
		FollowOn:       180.0, // $15/month
		RuralAddon:     15.0,
		HasFollowOn:    true,
	},
	TrackCKM: {
		Track:          TrackCKM,
		InitialPayment: 420.0, // $35/month
		FollowOn:       210.0, // $17.50/month
		RuralAddon:     15.0,
		HasFollowOn:    true,
	},
	TrackMSK: {
		Track:          TrackMSK,
		InitialPayment: 180.0, // $15/month, single episode
		FollowOn:       0.0,
		RuralAddon:     0.0,
		HasFollowOn:    false,
	},
	TrackBH: {
		Track:          TrackBH,
		InitialPayment: 180.0, // $15/month
		FollowOn:       90.0,  // $7.50/month
		RuralAddon:     0.0,
		HasFollowOn:    true,
	},
}

// TrackTargets maps each track to the targets an enrolled individual must
// ALL meet to count toward that track's OAT.
var TrackTargets = map[Track][]Target{
	TrackECKM: {TargetBPControlled, TargetA1CControlled, TargetKidneyStable},
	TrackCKM:  {TargetBPControlled, TargetA1CControlled, TargetKidneyStable},
	TrackMSK:  {TargetFunctionalImproved},
	TrackBH:   {TargetPHQ9Improved},
}

// AnnualPayment returns the gross annual payment for an individual enrolled
// in track since trackYearEnrolled, evaluated at year. Single-episode tracks
// pay nothing after the first year.
func AnnualPayment(track Track, trackYearEnrolled, year int, rural bool) float64 {
	info, ok := TrackPayments[track]
	if !ok {
		return 0.0
	}
	var base float64
	if year-trackYearEnrolled == 0 {
		base = info.InitialPayment
	} else {
		if !info.HasFollowOn {
			return 0.0
		}
		base = info.FollowOn
	}
	if rural && info.RuralAddon > 0 {
		base += info.RuralAddon * 12
	}
	return base
}

// TargetApplies reports whether a target is clinically applicable to the
// individual. Inapplicable targets are automatically satisfied during
// evaluation.
func TargetApplies(target Target, obs *Observables) bool {
	switch target {
	case TargetA1CControlled:
		return obs.Diabetic()
	case TargetKidneyStable:
		return obs.HasCKD
	default:
		return true
	}
}

// TrackEligible reports whether the individual can be enrolled in the track
// at all. Eligibility is independent of per-target applicability: a
// non-diabetic CKD individual is eligible for CKM even though the HbA1c
// target will not apply to them.
func TrackEligible(track Track, obs *Observables) bool {
	switch track {
	case TrackECKM, TrackCKM:
		return obs.HasCKD
	case TrackBH:
		return obs.HasDepression
	case TrackMSK:
		return true
	default:
		return false
	}
}

// EligibleTracks returns the tracks the individual may be assigned to, in
// canonical order. MSK is open to everyone, so the result is never empty.
func EligibleTracks(obs *Observables) []Track {
	var out []Track
	for _, t := range AllTracks {
		if TrackEligible(t, obs) {
			out = append(out, t)
		}
	}
	return out
}
