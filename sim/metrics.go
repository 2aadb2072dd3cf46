package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// TrackYearStats is the per-track slice of a year's reporting metrics.
type TrackYearStats struct {
	Enrolled            int
	OAT                 float64 // fraction of the track's panel meeting all targets
	WithholdRecoveryPct float64 // percent of the track's withhold recovered
	PctComplex          float64 // diagnostic only, never visible to Policy
}

// YearlyMetrics is the read-only snapshot of one simulated year. The
// sequence of all years is the system's output.
type YearlyMetrics struct {
	Year int

	// Counts
	EnrolledCount    int
	DisenrolledCount int
	NotEnrolledCount int
	TotalCount       int

	// Hidden-class composition counts (diagnostic only)
	EnrolledComplexCount    int
	EnrolledEasyCount       int
	DisenrolledComplexCount int
	DisenrolledEasyCount    int

	// Outcome score means by status group
	EnrolledAvgOutcome    float64
	DisenrolledAvgOutcome float64
	NotEnrolledAvgOutcome float64
	TotalAvgOutcome       float64

	// Year-over-year delta means by status group
	EnrolledAvgImprovement    float64
	DisenrolledAvgImprovement float64
	NotEnrolledAvgImprovement float64
	TotalAvgImprovement       float64

	// Financials, withhold model
	Reward            float64
	BasePayment       float64
	WithholdAmount    float64
	WithholdRecovered float64
	TotalCost         float64

	// Legacy single-track formula, computed in parallel for comparison.
	LegacyReward float64

	// Per-track stats, keyed by track.
	Tracks map[Track]TrackYearStats

	// Hidden-class composition percentages by status group
	PctComplexEnrolled    float64
	PctComplexDisenrolled float64
	PctComplexNotEnrolled float64

	// Expected adverse events (stroke equivalents) by status group.
	// Intentionally fractional: each individual contributes
	// max(0, 1-outcome) x the annual event rate.
	EventsEnrolled    float64
	EventsDisenrolled float64
	EventsNotEnrolled float64
	EventsTotal       float64
}

// ComputeYearlyMetrics aggregates the current population state into a
// YearlyMetrics snapshot. deltas maps individual ID to this year's outcome
// delta (zero-valued map for year 0). Empty status groups and tracks yield
// zero-valued aggregates, never division errors.
func ComputeYearlyMetrics(pop []*Individual, year int, deltas map[int]float64, cfg *Config) YearlyMetrics {
	var enrolled, disenrolled, notEnrolled []*Individual
	for _, ind := range pop {
		switch ind.Status {
		case StatusEnrolled:
			enrolled = append(enrolled, ind)
		case StatusDisenrolled:
			disenrolled = append(disenrolled, ind)
		default:
			notEnrolled = append(notEnrolled, ind)
		}
	}

	m := YearlyMetrics{
		Year:             year,
		EnrolledCount:    len(enrolled),
		DisenrolledCount: len(disenrolled),
		NotEnrolledCount: len(notEnrolled),
		TotalCount:       len(pop),
	}

	m.EnrolledComplexCount = countComplex(enrolled)
	m.EnrolledEasyCount = len(enrolled) - m.EnrolledComplexCount
	m.DisenrolledComplexCount = countComplex(disenrolled)
	m.DisenrolledEasyCount = len(disenrolled) - m.DisenrolledComplexCount

	m.EnrolledAvgOutcome = meanOutcome(enrolled)
	m.DisenrolledAvgOutcome = meanOutcome(disenrolled)
	m.NotEnrolledAvgOutcome = meanOutcome(notEnrolled)
	m.TotalAvgOutcome = meanOutcome(pop)

	m.EnrolledAvgImprovement = meanDelta(enrolled, deltas)
	m.DisenrolledAvgImprovement = meanDelta(disenrolled, deltas)
	m.NotEnrolledAvgImprovement = meanDelta(notEnrolled, deltas)
	m.TotalAvgImprovement = meanDelta(pop, deltas)

	fin, _ := ComputeYearFinancials(pop, year, cfg)
	m.Reward = fin.Revenue
	m.BasePayment = fin.BasePayment
	m.WithholdAmount = fin.WithholdAmount
	m.WithholdRecovered = fin.WithholdRecovered
	m.TotalCost = fin.TotalCost
	m.LegacyReward = LegacyRevenue(len(enrolled), m.EnrolledAvgImprovement, cfg)

	m.Tracks = make(map[Track]TrackYearStats, len(AllTracks))
	for _, track := range AllTracks {
		var trackMembers []*Individual
		for _, ind := range enrolled {
			if ind.EnrolledTrack == track {
				trackMembers = append(trackMembers, ind)
			}
		}
		oat := TrackOAT(pop, track)
		m.Tracks[track] = TrackYearStats{
			Enrolled:            len(trackMembers),
			OAT:                 oat,
			WithholdRecoveryPct: WithholdRecovery(oat, cfg) * 100,
			PctComplex:          pctComplex(trackMembers),
		}
	}

	m.PctComplexEnrolled = pctComplex(enrolled)
	m.PctComplexDisenrolled = pctComplex(disenrolled)
	m.PctComplexNotEnrolled = pctComplex(notEnrolled)

	m.EventsEnrolled = expectedEvents(enrolled, cfg)
	m.EventsDisenrolled = expectedEvents(disenrolled, cfg)
	m.EventsNotEnrolled = expectedEvents(notEnrolled, cfg)
	m.EventsTotal = m.EventsEnrolled + m.EventsDisenrolled + m.EventsNotEnrolled

	return m
}

func countComplex(group []*Individual) int {
	n := 0
	for _, ind := range group {
		if ind.Complex {
			n++
		}
	}
	return n
}

func pctComplex(group []*Individual) float64 {
	if len(group) == 0 {
		return 0.0
	}
	return float64(countComplex(group)) / float64(len(group)) * 100
}

func meanOutcome(group []*Individual) float64 {
	if len(group) == 0 {
		return 0.0
	}
	values := make([]float64, len(group))
	for i, ind := range group {
		values[i] = ind.OutcomeScore
	}
	return stat.Mean(values, nil)
}

func meanDelta(group []*Individual, deltas map[int]float64) float64 {
	if len(group) == 0 {
		return 0.0
	}
	values := make([]float64, len(group))
	for i, ind := range group {
		values[i] = deltas[ind.ID]
	}
	return stat.Mean(values, nil)
}

// expectedEvents sums the per-individual adverse-event expectation over the
// group: poor control contributes proportionally to the annual event rate.
func expectedEvents(group []*Individual, cfg *Config) float64 {
	total := 0.0
	for _, ind := range group {
		poorControl := 1.0 - ind.OutcomeScore
		if poorControl < 0 {
			poorControl = 0
		}
		total += poorControl * cfg.AnnualEventRate
	}
	return total
}

// Print displays a one-line summary of the year on stdout.
func (m *YearlyMetrics) Print() {
	fmt.Printf("year %2d: enrolled=%d (%.1f%% complex) disenrolled=%d reward=%.0f avg_outcome=%.3f\n",
		m.Year, m.EnrolledCount, m.PctComplexEnrolled, m.DisenrolledCount, m.Reward, m.EnrolledAvgOutcome)
}

// csvHeader lists the flat column set for CSV export. Per-track columns
// follow AllTracks order so output is byte-stable across runs.
func csvHeader() []string {
	cols := []string{
		"year",
		"enrolled_count", "disenrolled_count", "not_enrolled_count", "total_count",
		"enrolled_complex_count", "enrolled_easy_count",
		"disenrolled_complex_count", "disenrolled_easy_count",
		"enrolled_avg_outcome", "disenrolled_avg_outcome", "not_enrolled_avg_outcome", "total_avg_outcome",
		"enrolled_avg_improvement", "disenrolled_avg_improvement", "not_enrolled_avg_improvement", "total_avg_improvement",
		"reward", "base_payment", "withhold_amount", "withhold_recovered", "total_cost", "legacy_reward",
	}
	for _, track := range AllTracks {
		name := track.String()
		cols = append(cols,
			name+"_enrolled", name+"_oat", name+"_withhold_pct", name+"_pct_complex")
	}
	cols = append(cols,
		"pct_complex_enrolled", "pct_complex_disenrolled", "pct_complex_not_enrolled",
		"events_enrolled", "events_disenrolled", "events_not_enrolled", "events_total")
	return cols
}

func (m *YearlyMetrics) csvRow() []string {
	row := []string{
		strconv.Itoa(m.Year),
		strconv.Itoa(m.EnrolledCount), strconv.Itoa(m.DisenrolledCount),
		strconv.Itoa(m.NotEnrolledCount), strconv.Itoa(m.TotalCount),
		strconv.Itoa(m.EnrolledComplexCount), strconv.Itoa(m.EnrolledEasyCount),
		strconv.Itoa(m.DisenrolledComplexCount), strconv.Itoa(m.DisenrolledEasyCount),
		formatFloat(m.EnrolledAvgOutcome), formatFloat(m.DisenrolledAvgOutcome),
		formatFloat(m.NotEnrolledAvgOutcome), formatFloat(m.TotalAvgOutcome),
		formatFloat(m.EnrolledAvgImprovement), formatFloat(m.DisenrolledAvgImprovement),
		formatFloat(m.NotEnrolledAvgImprovement), formatFloat(m.TotalAvgImprovement),
		formatFloat(m.Reward), formatFloat(m.BasePayment), formatFloat(m.WithholdAmount),
		formatFloat(m.WithholdRecovered), formatFloat(m.TotalCost), formatFloat(m.LegacyReward),
	}
	for _, track := range AllTracks {
		ts := m.Tracks[track]
		row = append(row,
			strconv.Itoa(ts.Enrolled), formatFloat(ts.OAT),
			formatFloat(ts.WithholdRecoveryPct), formatFloat(ts.PctComplex))
	}
	row = append(row,
		formatFloat(m.PctComplexEnrolled), formatFloat(m.PctComplexDisenrolled), formatFloat(m.PctComplexNotEnrolled),
		formatFloat(m.EventsEnrolled), formatFloat(m.EventsDisenrolled),
		formatFloat(m.EventsNotEnrolled), formatFloat(m.EventsTotal))
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSV writes the yearly metrics sequence as CSV, one row per year.
func WriteCSV(w io.Writer, years []YearlyMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i := range years {
		if err := cw.Write(years[i].csvRow()); err != nil {
			return fmt.Errorf("writing csv row for year %d: %w", years[i].Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
