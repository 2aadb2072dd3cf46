package sim

// Status is the enrollment state of an individual. Transitions are
// one-directional: not_enrolled → enrolled → disenrolled, and disenrolled is
// terminal (no re-enrollment in this model).
type Status int

const (
	// StatusNotEnrolled is the initial state of every individual.
	StatusNotEnrolled Status = iota
	// StatusEnrolled means the individual is on the panel.
	StatusEnrolled
	// StatusDisenrolled is terminal.
	StatusDisenrolled
)

func (s Status) String() string {
	switch s {
	case StatusNotEnrolled:
		return "not_enrolled"
	case StatusEnrolled:
		return "enrolled"
	case StatusDisenrolled:
		return "disenrolled"
	default:
		return "unknown"
	}
}

// yearNone marks an unset enrollment/disenrollment year.
const yearNone = -1

// Observables is the projection of an individual visible to Policy and the
// optimizer. The hidden difficulty class is deliberately absent: decision
// code must work from proxies only.
type Observables struct {
	Age               int
	ChronicConditions int
	HasCKD            bool
	HasCOPD           bool
	HasHeartFailure   bool
	HasDepression     bool

	BaselineBP  float64 // systolic blood pressure
	BaselineA1C float64 // HbA1c percentage

	Engagement      float64 // 0-1
	PriorNoShowRate float64 // 0-1
	DeviceSyncRate  float64 // 0-1

	HousingStability   float64 // 0-1
	BroadbandScore     float64 // 0-1
	EnglishProficiency float64 // 0-1
	SDOHScore          float64 // 0-1, zip-code derived composite, higher = more advantaged

	DigitalLiteracy float64 // 0-1
	Rural           bool
}

// Diabetic reports whether the baseline HbA1c is in the diabetic range.
func (o *Observables) Diabetic() bool {
	return o.BaselineA1C >= 6.5
}

// Individual is one simulated person. Immutable attributes are set once by
// the population generator; mutable simulation state is advanced by the
// simulator and restored by ResetPopulation between optimizer rollouts.
type Individual struct {
	ID int

	// Complex is the hidden difficulty class. It drives true outcome
	// dynamics and is read only by the environment and the metrics
	// engine, never by Policy.
	Complex bool

	Obs Observables

	// Mutable simulation state. Every field below (except the pristine
	// baseline) is part of the ResetPopulation contract.
	Status            Status
	OutcomeScore      float64 // degree of clinical control, 0-1
	EnrolledTrack     Track
	TargetsMet        map[Target]bool // meaningful only while enrolled
	YearEnrolled      int
	YearDisenrolled   int
	TrackYearEnrolled int

	// initialOutcome is the pristine generated outcome score, kept so a
	// reset restores the exact generated state without regeneration.
	initialOutcome float64
}

// Reset restores the individual's mutable state to its pristine generated
// values. The reset contract covers exactly the fields touched by the
// simulator during a rollout: status, outcome score, track assignment,
// target flags, and year bookkeeping.
func (ind *Individual) Reset() {
	ind.Status = StatusNotEnrolled
	ind.OutcomeScore = ind.initialOutcome
	ind.EnrolledTrack = TrackNone
	ind.TargetsMet = nil
	ind.YearEnrolled = yearNone
	ind.YearDisenrolled = yearNone
	ind.TrackYearEnrolled = yearNone
}

// Enroll transitions a not-enrolled individual onto the panel in the given
// track and year. Target flags start unmet.
func (ind *Individual) Enroll(track Track, year int) {
	ind.Status = StatusEnrolled
	ind.EnrolledTrack = track
	ind.TargetsMet = make(map[Target]bool, len(TrackTargets[track]))
	ind.YearEnrolled = year
	ind.TrackYearEnrolled = year
}

// Disenroll transitions an enrolled individual off the panel. Disenrollment
// is terminal; the track assignment and target flags are cleared.
func (ind *Individual) Disenroll(year int) {
	ind.Status = StatusDisenrolled
	ind.EnrolledTrack = TrackNone
	ind.TargetsMet = nil
	ind.YearDisenrolled = year
}

// MeetsTrackTargets reports whether the individual currently meets every
// target required by their track. False for anyone not enrolled.
func (ind *Individual) MeetsTrackTargets() bool {
	if ind.Status != StatusEnrolled || ind.EnrolledTrack == TrackNone {
		return false
	}
	for _, target := range TrackTargets[ind.EnrolledTrack] {
		if !ind.TargetsMet[target] {
			return false
		}
	}
	return true
}

// ResetPopulation restores every individual to its pristine generated state.
// Optimizer rollouts call this instead of regenerating or deep-copying the
// population; correctness depends only on the state reset, not on object
// identity.
func ResetPopulation(pop []*Individual) {
	for _, ind := range pop {
		ind.Reset()
	}
}
