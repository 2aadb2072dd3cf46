package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Mutation scale schedule: scale(i) = maxScale*(1 - i/N) + minScale.
// Early iterations explore broadly, late iterations fine-tune.
const (
	maxMutationScale = 0.2
	minMutationScale = 0.05
)

// EvaluateFunc scores a candidate policy. For the simulator this is a full
// deterministic multi-year rollout returning cumulative net revenue.
type EvaluateFunc func(Policy) float64

// OptimizePolicy runs single-lineage stochastic hill-climbing over policy
// parameters. Each iteration mutates the incumbent with a decaying scale,
// evaluates the candidate, and replaces the incumbent only on strict
// improvement. Deterministic given the rng state and evaluate function.
//
// Returns the best policy found and the incumbent objective value after the
// initial evaluation and after each iteration (len = iterations+1). When no
// candidate beats the seed policy, the seed policy is returned unchanged;
// that is a correct outcome, not an error.
func OptimizePolicy(initial Policy, evaluate EvaluateFunc, iterations int, rng *rand.Rand) (Policy, []float64) {
	best := initial
	bestReward := evaluate(best)
	history := make([]float64, 0, iterations+1)
	history = append(history, bestReward)

	for i := 0; i < iterations; i++ {
		scale := maxMutationScale*(1-float64(i)/float64(iterations)) + minMutationScale

		candidate := best.Mutate(rng, scale)
		reward := evaluate(candidate)
		if reward > bestReward {
			logrus.Debugf("optimizer: iteration %d improved reward %.2f -> %.2f", i, bestReward, reward)
			best = candidate
			bestReward = reward
		}
		history = append(history, bestReward)
	}
	return best, history
}
