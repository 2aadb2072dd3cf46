package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnualPayment_FirstYearVersusFollowOn(t *testing.T) {
	assert.Equal(t, 360.0, AnnualPayment(TrackECKM, 0, 0, false))
	assert.Equal(t, 180.0, AnnualPayment(TrackECKM, 0, 1, false))
	assert.Equal(t, 420.0, AnnualPayment(TrackCKM, 2, 2, false))
	assert.Equal(t, 210.0, AnnualPayment(TrackCKM, 2, 5, false))
	assert.Equal(t, 180.0, AnnualPayment(TrackBH, 0, 0, false))
	assert.Equal(t, 90.0, AnnualPayment(TrackBH, 0, 3, false))
}

func TestAnnualPayment_SingleEpisodeTrackPaysOnce(t *testing.T) {
	assert.Equal(t, 180.0, AnnualPayment(TrackMSK, 1, 1, false))
	assert.Equal(t, 0.0, AnnualPayment(TrackMSK, 1, 2, false))
	assert.Equal(t, 0.0, AnnualPayment(TrackMSK, 0, 9, false))
}

func TestAnnualPayment_RuralAddon(t *testing.T) {
	// $15/month addon for the kidney tracks, none for MSK/BH.
	assert.Equal(t, 360.0+15*12, AnnualPayment(TrackECKM, 0, 0, true))
	assert.Equal(t, 180.0+15*12, AnnualPayment(TrackECKM, 0, 1, true))
	assert.Equal(t, 180.0, AnnualPayment(TrackMSK, 0, 0, true))
	assert.Equal(t, 180.0, AnnualPayment(TrackBH, 0, 0, true))
}

func TestAnnualPayment_UnknownTrack(t *testing.T) {
	assert.Equal(t, 0.0, AnnualPayment(TrackNone, 0, 0, false))
}

func TestTrackTargets_KidneyTracksRequireThree(t *testing.T) {
	assert.Len(t, TrackTargets[TrackECKM], 3)
	assert.Len(t, TrackTargets[TrackCKM], 3)
	assert.Len(t, TrackTargets[TrackMSK], 1)
	assert.Len(t, TrackTargets[TrackBH], 1)
}

func TestTrackEligible_RequiresRelevantCondition(t *testing.T) {
	ckd := &Observables{HasCKD: true}
	depressed := &Observables{HasDepression: true}
	neither := &Observables{}

	assert.True(t, TrackEligible(TrackECKM, ckd))
	assert.True(t, TrackEligible(TrackCKM, ckd))
	assert.False(t, TrackEligible(TrackECKM, neither))
	assert.True(t, TrackEligible(TrackBH, depressed))
	assert.False(t, TrackEligible(TrackBH, neither))
	// MSK is open to everyone, so nobody has zero eligible tracks.
	assert.True(t, TrackEligible(TrackMSK, neither))
	assert.Equal(t, []Track{TrackMSK}, EligibleTracks(neither))
}

func TestTargetApplies_ClinicalApplicability(t *testing.T) {
	diabeticCKD := &Observables{BaselineA1C: 7.5, HasCKD: true}
	healthy := &Observables{BaselineA1C: 5.5}

	assert.True(t, TargetApplies(TargetA1CControlled, diabeticCKD))
	assert.False(t, TargetApplies(TargetA1CControlled, healthy))
	assert.True(t, TargetApplies(TargetKidneyStable, diabeticCKD))
	assert.False(t, TargetApplies(TargetKidneyStable, healthy))
	assert.True(t, TargetApplies(TargetBPControlled, healthy))
	assert.True(t, TargetApplies(TargetFunctionalImproved, healthy))
	assert.True(t, TargetApplies(TargetPHQ9Improved, healthy))
}

func TestTrackString_CanonicalNames(t *testing.T) {
	assert.Equal(t, "eCKM", TrackECKM.String())
	assert.Equal(t, "CKM", TrackCKM.String())
	assert.Equal(t, "MSK", TrackMSK.String())
	assert.Equal(t, "BH", TrackBH.String())
	assert.Equal(t, "none", TrackNone.String())
}
