package sim

// Financials breaks a year's revenue into its payment-model components.
type Financials struct {
	Revenue           float64 // BasePayment + WithholdRecovered - TotalCost
	BasePayment       float64 // share of total payment always disbursed
	WithholdAmount    float64 // share of total payment at risk
	WithholdRecovered float64 // withhold actually returned, per-track OAT weighted
	TotalCost         float64 // operating cost across enrolled members
}

// TrackOAT computes the Outcome Attainment Threshold statistic for one
// track: the fraction of that track's enrolled individuals meeting ALL of
// the track's targets. An empty track yields 0.0, not an error.
func TrackOAT(pop []*Individual, track Track) float64 {
	total := 0
	meeting := 0
	for _, ind := range pop {
		if ind.Status != StatusEnrolled || ind.EnrolledTrack != track {
			continue
		}
		total++
		if ind.MeetsTrackTargets() {
			meeting++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(meeting) / float64(total)
}

// WithholdRecovery maps an OAT value onto the fraction of the withhold
// returned. At or above the threshold the full withhold is recovered; below
// it, recovery degrades linearly but never drops under the configured floor.
func WithholdRecovery(oat float64, cfg *Config) float64 {
	if oat >= cfg.OATThreshold {
		return 1.0
	}
	if cfg.OATThreshold <= 0 {
		return 1.0
	}
	recovery := oat / cfg.OATThreshold
	if recovery < cfg.MinWithholdReturn {
		return cfg.MinWithholdReturn
	}
	return recovery
}

// ComputeYearFinancials evaluates the multi-track withhold payment model for
// one year. Per enrolled individual the gross track payment depends on the
// track, years since track enrollment, and the rural flag. The total splits
// into an always-paid base share and an at-risk withhold recovered per track
// according to that track's OAT.
//
// Also returns the gross payment per track for reporting.
func ComputeYearFinancials(pop []*Individual, year int, cfg *Config) (Financials, map[Track]float64) {
	trackPayments := make(map[Track]float64, len(AllTracks))
	enrolled := 0
	for _, ind := range pop {
		if ind.Status != StatusEnrolled {
			continue
		}
		enrolled++
		if ind.EnrolledTrack == TrackNone {
			continue
		}
		trackPayments[ind.EnrolledTrack] += AnnualPayment(ind.EnrolledTrack, ind.TrackYearEnrolled, year, ind.Obs.Rural)
	}

	if enrolled == 0 {
		return Financials{}, trackPayments
	}

	totalPayment := 0.0
	for _, payment := range trackPayments {
		totalPayment += payment
	}

	fin := Financials{
		BasePayment:    totalPayment * (1 - cfg.WithholdRate),
		WithholdAmount: totalPayment * cfg.WithholdRate,
		TotalCost:      cfg.CostPerMember * float64(enrolled),
	}

	for _, track := range AllTracks {
		payment, ok := trackPayments[track]
		if !ok {
			continue
		}
		trackWithhold := payment * cfg.WithholdRate
		fin.WithholdRecovered += trackWithhold * WithholdRecovery(TrackOAT(pop, track), cfg)
	}

	fin.Revenue = fin.BasePayment + fin.WithholdRecovered - fin.TotalCost
	return fin, trackPayments
}

// LegacyRevenue evaluates the single-track base + earnback formula:
// a flat per-member-per-month base plus an earnback that scales linearly
// with average improvement up to the improvement cap, minus per-member cost.
func LegacyRevenue(enrolledCount int, avgImprovement float64, cfg *Config) float64 {
	members := float64(enrolledCount)
	baseIncome := cfg.BaseRatePerMemberMonth * members * 12
	earnback := clamp(avgImprovement/cfg.ImprovementCap, 0, 1) * cfg.MaxEarnbackRate * members * 12
	cost := cfg.CostPerMember * members
	return baseIncome + earnback - cost
}
