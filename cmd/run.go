package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/access-sim/access-sim/sim"
)

// runCmd executes a single-organization simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the incentive simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := buildConfig(cmd)

		logrus.Infof("starting simulation: population=%d panel=%d years=%d seed=%d optimize=%v",
			cfg.PopulationSize, cfg.TargetPanelSize, cfg.NumYears, cfg.Seed, cfg.EnableOptimization)
		startTime := time.Now()

		simulator, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("initializing simulator: %v", err)
		}
		result, err := simulator.Run(nil, nil)
		if err != nil {
			logrus.Fatalf("running simulation: %v", err)
		}

		for i := range result.Years {
			result.Years[i].Print()
		}
		logrus.Infof("final policy: %v", result.FinalPolicy.Summary())
		if result.OptimizedPolicy != nil {
			logrus.Infof("optimizer incumbent reward history: %v", result.RewardHistory)
		}
		writeMetricsCSV(outputPath, result.Years)

		logrus.Infof("simulation complete in %s", time.Since(startTime))
	},
}

func init() {
	addConfigFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
