// Package sim provides the core multi-year incentive simulation engine for ACCESS.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - individual.go: Individual state (not_enrolled → enrolled → disenrolled) and the observable projection
//   - environment.go: Stochastic yearly outcome and target-attainment models
//   - simulator.go: The year loop, panel seeding, dropping, and quota backfill
//
// # Architecture
//
// The sim package is a pure in-memory engine: no network or disk IO, and every
// run is a deterministic function of (Config, seed).
//   - population.go: synthetic population generation with a hidden difficulty class
//   - tracks.go: static track payment and target-requirement tables
//   - policy.go: enrollment/track/drop decision parameters plus the mutation operator
//   - optimizer.go: stochastic hill-climbing over Policy parameters
//   - finance.go: two-tier (base + at-risk withhold) payment model
//   - metrics.go: yearly reporting aggregates
//
// Policy and the optimizer only ever see Observables, never the hidden
// difficulty class. Environment and metrics read full Individual state.
package sim
