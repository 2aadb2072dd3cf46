package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/access-sim/access-sim/sim"
)

// compareCmd runs the same scenario with and without policy optimization so
// the effect of reward-maximizing search on panel composition is visible
// side by side.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the simulation with and without policy optimization",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := buildConfig(cmd)

		simulator, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("initializing simulator: %v", err)
		}

		off, on := false, true
		baseline, err := simulator.Run(nil, &off)
		if err != nil {
			logrus.Fatalf("running baseline simulation: %v", err)
		}
		optimized, err := simulator.Run(nil, &on)
		if err != nil {
			logrus.Fatalf("running optimized simulation: %v", err)
		}

		logrus.Info("=== without optimization ===")
		for i := range baseline.Years {
			baseline.Years[i].Print()
		}
		logrus.Info("=== with optimization ===")
		for i := range optimized.Years {
			optimized.Years[i].Print()
		}

		logrus.Infof("baseline cumulative reward : %.0f", cumulativeReward(baseline.Years))
		logrus.Infof("optimized cumulative reward: %.0f", cumulativeReward(optimized.Years))
		logrus.Infof("optimized policy: %v", optimized.FinalPolicy.Summary())
		writeMetricsCSV(outputPath, optimized.Years)
	},
}

func cumulativeReward(years []sim.YearlyMetrics) float64 {
	total := 0.0
	for i := range years {
		total += years[i].Reward
	}
	return total
}

func init() {
	addConfigFlags(compareCmd)
	rootCmd.AddCommand(compareCmd)
}
