package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemPopulation is the RNG subsystem for population generation.
	// Uses the master seed directly so that --seed alone pins the population.
	SubsystemPopulation = "population"

	// SubsystemSeeding is the RNG subsystem for initial panel seeding.
	SubsystemSeeding = "seeding"

	// SubsystemRollout is the RNG subsystem for the yearly environment and
	// policy draws of a simulation rollout.
	SubsystemRollout = "rollout"

	// SubsystemOptimizer is the RNG subsystem for policy mutation draws.
	SubsystemOptimizer = "optimizer"
)

// SubsystemOrg returns the subsystem name for organization N.
// Used by two-organization runs for per-org RNG isolation.
func SubsystemOrg(id int) string {
	return fmt.Sprintf("org_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemPopulation: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// SeedFor returns the derived seed for the named subsystem without creating
// an RNG. Rollout evaluations use this to re-seed a fresh stream per
// candidate so every candidate sees identical draws.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if name == SubsystemPopulation {
		// Population uses the master seed directly so the generated
		// population is pinned by --seed regardless of other subsystems.
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
