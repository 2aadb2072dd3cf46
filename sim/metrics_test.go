package sim

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// metricsTestPop builds one individual per status group so every aggregate
// path is exercised.
func metricsTestPop() []*Individual {
	enrolledComplex := enrollTestMember(0, TrackBH, true, false)
	enrolledComplex.Complex = true
	enrolledComplex.OutcomeScore = 0.4

	enrolledEasy := enrollTestMember(1, TrackMSK, false, false)
	enrolledEasy.OutcomeScore = 0.8

	dropped := &Individual{ID: 2, Complex: true}
	dropped.Reset()
	dropped.Enroll(TrackCKM, 0)
	dropped.Disenroll(1)
	dropped.OutcomeScore = 0.3

	never := &Individual{ID: 3}
	never.Reset()
	never.OutcomeScore = 0.6

	return []*Individual{enrolledComplex, enrolledEasy, dropped, never}
}

func TestComputeYearlyMetrics_CountsAndComposition(t *testing.T) {
	cfg := DefaultConfig()
	pop := metricsTestPop()
	deltas := map[int]float64{0: 0.10, 1: 0.05, 2: -0.02, 3: 0.0}

	m := ComputeYearlyMetrics(pop, 1, deltas, &cfg)

	assert.Equal(t, 1, m.Year)
	assert.Equal(t, 2, m.EnrolledCount)
	assert.Equal(t, 1, m.DisenrolledCount)
	assert.Equal(t, 1, m.NotEnrolledCount)
	assert.Equal(t, 4, m.TotalCount)

	assert.Equal(t, 1, m.EnrolledComplexCount)
	assert.Equal(t, 1, m.EnrolledEasyCount)
	assert.Equal(t, 1, m.DisenrolledComplexCount)
	assert.Equal(t, 0, m.DisenrolledEasyCount)

	assert.Equal(t, 50.0, m.PctComplexEnrolled)
	assert.Equal(t, 100.0, m.PctComplexDisenrolled)
	assert.Equal(t, 0.0, m.PctComplexNotEnrolled)
}

func TestComputeYearlyMetrics_OutcomeAndImprovementMeans(t *testing.T) {
	cfg := DefaultConfig()
	pop := metricsTestPop()
	deltas := map[int]float64{0: 0.10, 1: 0.05, 2: -0.02, 3: 0.0}

	m := ComputeYearlyMetrics(pop, 1, deltas, &cfg)

	assert.InDelta(t, 0.6, m.EnrolledAvgOutcome, 1e-12)
	assert.InDelta(t, 0.3, m.DisenrolledAvgOutcome, 1e-12)
	assert.InDelta(t, 0.6, m.NotEnrolledAvgOutcome, 1e-12)
	assert.InDelta(t, (0.4+0.8+0.3+0.6)/4, m.TotalAvgOutcome, 1e-12)

	assert.InDelta(t, 0.075, m.EnrolledAvgImprovement, 1e-12)
	assert.InDelta(t, -0.02, m.DisenrolledAvgImprovement, 1e-12)
	assert.InDelta(t, 0.0, m.NotEnrolledAvgImprovement, 1e-12)
	assert.InDelta(t, (0.10+0.05-0.02)/4, m.TotalAvgImprovement, 1e-12)
}

func TestComputeYearlyMetrics_TrackStats(t *testing.T) {
	cfg := DefaultConfig()
	pop := metricsTestPop()

	m := ComputeYearlyMetrics(pop, 1, map[int]float64{}, &cfg)

	assert.Len(t, m.Tracks, len(AllTracks))

	bh := m.Tracks[TrackBH]
	assert.Equal(t, 1, bh.Enrolled)
	assert.Equal(t, 1.0, bh.OAT)
	assert.Equal(t, 100.0, bh.WithholdRecoveryPct)
	assert.Equal(t, 100.0, bh.PctComplex)

	msk := m.Tracks[TrackMSK]
	assert.Equal(t, 1, msk.Enrolled)
	assert.Equal(t, 0.0, msk.OAT)
	assert.Equal(t, 50.0, msk.WithholdRecoveryPct) // recovery floor

	ckm := m.Tracks[TrackCKM]
	assert.Equal(t, 0, ckm.Enrolled)
	assert.Equal(t, 0.0, ckm.OAT)
}

func TestComputeYearlyMetrics_ExpectedEvents(t *testing.T) {
	cfg := DefaultConfig() // annual event rate 0.01
	pop := metricsTestPop()

	m := ComputeYearlyMetrics(pop, 1, map[int]float64{}, &cfg)

	assert.InDelta(t, (0.6+0.2)*0.01, m.EventsEnrolled, 1e-12)
	assert.InDelta(t, 0.7*0.01, m.EventsDisenrolled, 1e-12)
	assert.InDelta(t, 0.4*0.01, m.EventsNotEnrolled, 1e-12)
	assert.InDelta(t, m.EventsEnrolled+m.EventsDisenrolled+m.EventsNotEnrolled, m.EventsTotal, 1e-12)
}

func TestComputeYearlyMetrics_EmptyPopulation(t *testing.T) {
	cfg := DefaultConfig()
	m := ComputeYearlyMetrics(nil, 0, map[int]float64{}, &cfg)

	assert.Equal(t, 0, m.TotalCount)
	assert.Equal(t, 0.0, m.EnrolledAvgOutcome)
	assert.Equal(t, 0.0, m.TotalAvgImprovement)
	assert.Equal(t, 0.0, m.Reward)
	assert.Equal(t, 0.0, m.PctComplexEnrolled)
}

func TestCSVRow_MatchesHeaderWidth(t *testing.T) {
	cfg := DefaultConfig()
	m := ComputeYearlyMetrics(metricsTestPop(), 1, map[int]float64{}, &cfg)
	assert.Equal(t, len(csvHeader()), len(m.csvRow()))
}

func TestWriteCSV_OneRowPerYear(t *testing.T) {
	cfg := DefaultConfig()
	years := []YearlyMetrics{
		ComputeYearlyMetrics(metricsTestPop(), 0, map[int]float64{}, &cfg),
		ComputeYearlyMetrics(metricsTestPop(), 1, map[int]float64{}, &cfg),
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, years); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, records, 3) // header + two years
	assert.Equal(t, csvHeader(), records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "1", records[2][0])
}
