package sim

import (
	"fmt"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// classProfile holds the per-class sampling distributions for population
// generation. Both classes use the same distribution families; only the
// parameters differ, which keeps the classes statistically overlapping
// rather than trivially separable.
type classProfile struct {
	ageMin, ageMax   int // inclusive bounds
	condMin, condMax int

	engagement      distuv.Beta
	digitalLiteracy distuv.Beta
	housing         distuv.Beta
	broadband       distuv.Beta
	english         distuv.Beta
	noShow          distuv.Beta
	deviceSync      distuv.Beta
	sdoh            distuv.Beta

	bp  distuv.Normal
	a1c distuv.Normal

	ckdProb        float64
	copdProb       float64
	hfProb         float64
	depressionProb float64
}

func complexProfile(src exprand.Source) classProfile {
	return classProfile{
		ageMin: 65, ageMax: 89,
		condMin: 3, condMax: 7,
		engagement:      distuv.Beta{Alpha: 2, Beta: 5, Src: src},
		digitalLiteracy: distuv.Beta{Alpha: 2, Beta: 5, Src: src},
		housing:         distuv.Beta{Alpha: 3, Beta: 5, Src: src},
		broadband:       distuv.Beta{Alpha: 3, Beta: 5, Src: src},
		english:         distuv.Beta{Alpha: 4, Beta: 3, Src: src},
		noShow:          distuv.Beta{Alpha: 4, Beta: 3, Src: src},
		deviceSync:      distuv.Beta{Alpha: 2, Beta: 4, Src: src},
		sdoh:            distuv.Beta{Alpha: 2, Beta: 5, Src: src},
		bp:              distuv.Normal{Mu: 150, Sigma: 15, Src: src},
		a1c:             distuv.Normal{Mu: 8.5, Sigma: 1.5, Src: src},
		ckdProb:         0.40,
		copdProb:        0.50,
		hfProb:          0.45,
		depressionProb:  0.35,
	}
}

func easyProfile(src exprand.Source) classProfile {
	return classProfile{
		ageMin: 50, ageMax: 74,
		condMin: 1, condMax: 3,
		engagement:      distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		digitalLiteracy: distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		housing:         distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		broadband:       distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		english:         distuv.Beta{Alpha: 6, Beta: 2, Src: src},
		noShow:          distuv.Beta{Alpha: 2, Beta: 5, Src: src},
		deviceSync:      distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		sdoh:            distuv.Beta{Alpha: 5, Beta: 2, Src: src},
		bp:              distuv.Normal{Mu: 135, Sigma: 10, Src: src},
		a1c:             distuv.Normal{Mu: 7.2, Sigma: 1.0, Src: src},
		ckdProb:         0.15,
		copdProb:        0.20,
		hfProb:          0.15,
		depressionProb:  0.20,
	}
}

// GeneratePopulation creates the fixed set of simulated individuals for a
// run. Deterministic given the seed. A configurable fraction of individuals
// is drawn from the hidden-complex profile: systematically older, sicker,
// less engaged, and less digitally connected than the easy profile, with
// overlapping distributions.
func GeneratePopulation(cfg Config, seed int64) ([]*Individual, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population_size must be positive, got %d", cfg.PopulationSize)
	}

	src := exprand.NewSource(uint64(seed))
	rnd := exprand.New(src)
	complexProf := complexProfile(src)
	easyProf := easyProfile(src)

	pop := make([]*Individual, 0, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		isComplex := rnd.Float64() < cfg.ComplexFraction
		prof := &easyProf
		if isComplex {
			prof = &complexProf
		}

		obs := Observables{
			Age:               prof.ageMin + rnd.Intn(prof.ageMax-prof.ageMin+1),
			ChronicConditions: prof.condMin + rnd.Intn(prof.condMax-prof.condMin+1),
			HasCKD:            rnd.Float64() < prof.ckdProb,
			HasCOPD:           rnd.Float64() < prof.copdProb,
			HasHeartFailure:   rnd.Float64() < prof.hfProb,
			HasDepression:     rnd.Float64() < prof.depressionProb,

			BaselineBP:  clamp(prof.bp.Rand(), 90, 200),
			BaselineA1C: clamp(prof.a1c.Rand(), 5.0, 14.0),

			Engagement:      clamp(prof.engagement.Rand(), 0, 1),
			PriorNoShowRate: clamp(prof.noShow.Rand(), 0, 1),
			DeviceSyncRate:  clamp(prof.deviceSync.Rand(), 0, 1),

			HousingStability:   clamp(prof.housing.Rand(), 0, 1),
			BroadbandScore:     clamp(prof.broadband.Rand(), 0, 1),
			EnglishProficiency: clamp(prof.english.Rand(), 0, 1),
			SDOHScore:          clamp(prof.sdoh.Rand(), 0, 1),

			DigitalLiteracy: clamp(prof.digitalLiteracy.Rand(), 0, 1),
			Rural:           rnd.Float64() < cfg.RuralFraction,
		}

		ind := &Individual{
			ID:             i,
			Complex:        isComplex,
			Obs:            obs,
			initialOutcome: initialOutcome(obs.BaselineBP, rnd),
		}
		ind.Reset()
		pop = append(pop, ind)
	}
	return pop, nil
}

// initialOutcome maps a baseline systolic BP onto the outcome-score scale
// through four severity bands, each a bounded uniform draw. Monotonic and
// non-linear in BP by construction: band edges never overlap.
func initialOutcome(baselineBP float64, rnd *exprand.Rand) float64 {
	switch {
	case baselineBP < 120: // well controlled
		return uniformIn(rnd, 0.85, 0.95)
	case baselineBP < 140: // moderately controlled
		return uniformIn(rnd, 0.60, 0.75)
	case baselineBP < 160: // poorly controlled
		return uniformIn(rnd, 0.30, 0.50)
	default: // uncontrolled
		return uniformIn(rnd, 0.10, 0.30)
	}
}

func uniformIn(rnd *exprand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
