package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/access-sim/access-sim/sim"
)

// LoadScenario reads and parses a YAML scenario file into a Config.
// Parsing starts from DefaultConfig so a scenario only needs to name the
// fields it changes. Uses strict parsing: unrecognized keys (typos) are
// rejected, and the resulting config is validated before use.
func LoadScenario(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid scenario: %w", err)
	}
	return cfg, nil
}
