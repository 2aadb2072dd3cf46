package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// enrollTestMember builds an enrolled individual on the given track with
// every track target either met or missed.
func enrollTestMember(id int, track Track, targetsMet bool, rural bool) *Individual {
	ind := &Individual{ID: id, Obs: Observables{Rural: rural}}
	ind.Reset()
	ind.Enroll(track, 0)
	for _, target := range TrackTargets[track] {
		ind.TargetsMet[target] = targetsMet
	}
	return ind
}

func TestTrackOAT_FractionMeetingAllTargets(t *testing.T) {
	pop := []*Individual{
		enrollTestMember(0, TrackBH, true, false),
		enrollTestMember(1, TrackBH, true, false),
		enrollTestMember(2, TrackBH, false, false),
		enrollTestMember(3, TrackMSK, true, false), // different track, excluded
	}
	assert.InDelta(t, 2.0/3.0, TrackOAT(pop, TrackBH), 1e-12)
	assert.Equal(t, 1.0, TrackOAT(pop, TrackMSK))
}

func TestTrackOAT_EmptyTrackIsZero(t *testing.T) {
	pop := []*Individual{enrollTestMember(0, TrackBH, true, false)}
	assert.Equal(t, 0.0, TrackOAT(pop, TrackECKM))
	assert.Equal(t, 0.0, TrackOAT(nil, TrackBH))
}

func TestWithholdRecovery_FullAtOrAboveThreshold(t *testing.T) {
	cfg := DefaultConfig() // threshold 0.5, floor 0.5
	assert.Equal(t, 1.0, WithholdRecovery(0.5, &cfg))
	assert.Equal(t, 1.0, WithholdRecovery(0.9, &cfg))
	assert.Equal(t, 1.0, WithholdRecovery(1.0, &cfg))
}

func TestWithholdRecovery_LinearWithFloorBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.8, WithholdRecovery(0.4, &cfg), 1e-12) // 0.4 / 0.5
	assert.Equal(t, cfg.MinWithholdReturn, WithholdRecovery(0.0, &cfg))
	assert.Equal(t, cfg.MinWithholdReturn, WithholdRecovery(0.1, &cfg)) // 0.2 < floor
}

func TestWithholdRecovery_MonotoneInOAT(t *testing.T) {
	cfg := DefaultConfig()
	prev := -1.0
	for oat := 0.0; oat <= 1.0; oat += 0.05 {
		got := WithholdRecovery(oat, &cfg)
		if got < prev {
			t.Fatalf("recovery decreased: oat=%.2f recovery=%.4f < %.4f", oat, got, prev)
		}
		prev = got
	}
}

func TestWithholdRecovery_ZeroThresholdPaysInFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OATThreshold = 0.0
	assert.Equal(t, 1.0, WithholdRecovery(0.0, &cfg))
}

func TestComputeYearFinancials_AllTargetsMet(t *testing.T) {
	cfg := DefaultConfig()
	pop := []*Individual{
		enrollTestMember(0, TrackBH, true, false),
		enrollTestMember(1, TrackBH, true, false),
	}

	fin, byTrack := ComputeYearFinancials(pop, 0, &cfg)

	// Two BH first-year payments of $180: base and withhold split 50/50,
	// OAT 1.0 recovers the full withhold.
	assert.Equal(t, 360.0, byTrack[TrackBH])
	assert.Equal(t, 180.0, fin.BasePayment)
	assert.Equal(t, 180.0, fin.WithholdAmount)
	assert.Equal(t, 180.0, fin.WithholdRecovered)
	assert.Equal(t, 480.0, fin.TotalCost)
	assert.Equal(t, -120.0, fin.Revenue)
}

func TestComputeYearFinancials_MissedTargetsForfeitWithhold(t *testing.T) {
	cfg := DefaultConfig()
	pop := []*Individual{
		enrollTestMember(0, TrackBH, false, false),
		enrollTestMember(1, TrackBH, false, false),
	}

	fin, _ := ComputeYearFinancials(pop, 0, &cfg)

	// OAT 0.0 is below the 0.5 threshold, so only the floor is recovered.
	assert.Equal(t, 180.0, fin.WithholdAmount)
	assert.Equal(t, 90.0, fin.WithholdRecovered)
}

func TestComputeYearFinancials_PerTrackRecovery(t *testing.T) {
	cfg := DefaultConfig()
	pop := []*Individual{
		enrollTestMember(0, TrackBH, true, false),   // BH OAT 1.0
		enrollTestMember(1, TrackMSK, false, false), // MSK OAT 0.0
	}

	fin, byTrack := ComputeYearFinancials(pop, 0, &cfg)

	assert.Equal(t, 180.0, byTrack[TrackBH])
	assert.Equal(t, 180.0, byTrack[TrackMSK])
	// BH withhold 90 recovered in full; MSK withhold 90 at the 0.5 floor.
	assert.Equal(t, 90.0+45.0, fin.WithholdRecovered)
}

func TestComputeYearFinancials_RuralAddonFlowsThrough(t *testing.T) {
	cfg := DefaultConfig()
	pop := []*Individual{enrollTestMember(0, TrackECKM, true, true)}

	_, byTrack := ComputeYearFinancials(pop, 0, &cfg)
	assert.Equal(t, 360.0+15*12, byTrack[TrackECKM])
}

func TestComputeYearFinancials_EmptyPanel(t *testing.T) {
	cfg := DefaultConfig()
	fin, byTrack := ComputeYearFinancials(nil, 0, &cfg)
	assert.Equal(t, Financials{}, fin)
	assert.Empty(t, byTrack)
}

func TestLegacyRevenue_BaseEarnbackAndCost(t *testing.T) {
	cfg := DefaultConfig() // base $30/mo, earnback $10/mo at cap 0.15, cost $240/yr

	// Full earnback at the improvement cap.
	got := LegacyRevenue(100, 0.15, &cfg)
	want := 30.0*100*12 + 10.0*100*12 - 240.0*100
	assert.Equal(t, want, got)

	// Half earnback at half the cap.
	got = LegacyRevenue(100, 0.075, &cfg)
	want = 30.0*100*12 + 5.0*100*12 - 240.0*100
	assert.InDelta(t, want, got, 1e-9)

	// Negative improvement earns nothing; improvement past the cap earns no extra.
	assert.Equal(t, LegacyRevenue(100, 0.0, &cfg), LegacyRevenue(100, -0.3, &cfg))
	assert.Equal(t, LegacyRevenue(100, 0.15, &cfg), LegacyRevenue(100, 0.9, &cfg))

	assert.Equal(t, 0.0, LegacyRevenue(0, 0.1, &cfg))
}
