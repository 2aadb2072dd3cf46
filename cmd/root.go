package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/access-sim/access-sim/sim"
)

var (
	// CLI flags shared by the simulation subcommands
	logLevel     string // Log verbosity level
	scenarioPath string // Optional YAML scenario file
	outputPath   string // Optional CSV output path

	seed                int64
	populationSize      int
	complexFraction     float64
	targetPanelSize     int
	panelGrowthPerYear  int
	numYears            int
	optimize            bool
	optimizationIters   int
	seedingMode         string
	seedComplexFraction float64
	withholdRate        float64
	oatThreshold        float64
	minWithholdReturn   float64
	costPerMember       float64
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "access-sim",
	Short: "Multi-year simulator for outcomes-linked care-management incentives",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging parses the --log flag and configures logrus.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildConfig assembles the effective Config: scenario file values first,
// then explicit flag overrides on top.
func buildConfig(cmd *cobra.Command) sim.Config {
	cfg := sim.DefaultConfig()
	if scenarioPath != "" {
		loaded, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("loading scenario: %v", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("population") {
		cfg.PopulationSize = populationSize
	}
	if flags.Changed("complex-fraction") {
		cfg.ComplexFraction = complexFraction
	}
	if flags.Changed("panel") {
		cfg.TargetPanelSize = targetPanelSize
	}
	if flags.Changed("panel-growth") {
		cfg.PanelGrowthPerYear = panelGrowthPerYear
	}
	if flags.Changed("years") {
		cfg.NumYears = numYears
	}
	if flags.Changed("optimize") {
		cfg.EnableOptimization = optimize
	}
	if flags.Changed("iterations") {
		cfg.OptimizationIterations = optimizationIters
	}
	if flags.Changed("seeding-mode") {
		cfg.SeedingMode = seedingMode
	}
	if flags.Changed("seed-complex-fraction") {
		cfg.SeedComplexFraction = seedComplexFraction
	}
	if flags.Changed("withhold-rate") {
		cfg.WithholdRate = withholdRate
	}
	if flags.Changed("oat-threshold") {
		cfg.OATThreshold = oatThreshold
	}
	if flags.Changed("min-withhold-return") {
		cfg.MinWithholdReturn = minWithholdReturn
	}
	if flags.Changed("cost-per-member") {
		cfg.CostPerMember = costPerMember
	}
	return cfg
}

// addConfigFlags registers the shared configuration flags on a subcommand.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (flags override its values)")
	cmd.Flags().StringVar(&outputPath, "output", "", "CSV output path for yearly metrics")

	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all random draws")
	cmd.Flags().IntVar(&populationSize, "population", 100000, "Population size")
	cmd.Flags().Float64Var(&complexFraction, "complex-fraction", 0.2, "Hidden-complex fraction of the population")
	cmd.Flags().IntVar(&targetPanelSize, "panel", 5000, "Initial target panel size")
	cmd.Flags().IntVar(&panelGrowthPerYear, "panel-growth", 1000, "Panel quota growth per year")
	cmd.Flags().IntVar(&numYears, "years", 10, "Number of simulated years")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "Run policy optimization before the reported rollout")
	cmd.Flags().IntVar(&optimizationIters, "iterations", 20, "Optimization iteration budget")
	cmd.Flags().StringVar(&seedingMode, "seeding-mode", sim.SeedingUniform, "Initial panel seeding mode (uniform, stratified)")
	cmd.Flags().Float64Var(&seedComplexFraction, "seed-complex-fraction", 0.2, "Complex fraction of the seeded panel (stratified mode)")
	cmd.Flags().Float64Var(&withholdRate, "withhold-rate", 0.5, "Share of payment withheld at risk")
	cmd.Flags().Float64Var(&oatThreshold, "oat-threshold", 0.5, "OAT at or above which the full withhold is recovered")
	cmd.Flags().Float64Var(&minWithholdReturn, "min-withhold-return", 0.5, "Withhold recovery floor")
	cmd.Flags().Float64Var(&costPerMember, "cost-per-member", 240.0, "Annual operating cost per enrolled member")
}

// writeMetricsCSV writes yearly metrics to the --output path when set.
func writeMetricsCSV(path string, years []sim.YearlyMetrics) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logrus.Fatalf("creating output file %s: %v", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logrus.Fatalf("closing output file %s: %v", path, closeErr)
		}
	}()
	if err := sim.WriteCSV(f, years); err != nil {
		logrus.Fatalf("writing metrics to %s: %v", path, err)
	}
	logrus.Infof("wrote %d yearly metric rows to %s", len(years), path)
}
