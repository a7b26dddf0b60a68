package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/causalrank/internal/elasticity"
	"github.com/sawpanic/causalrank/internal/eval"
	"github.com/sawpanic/causalrank/internal/sim"
)

// runBenchBaseline verifies that random rankings track the diagonal to the
// full-frame elasticity. Exits non-zero when the mean curve drifts beyond
// tolerance, so CI can catch regressions in the curve computation.
func runBenchBaseline(cmd *cobra.Command, args []string) error {
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	rowsOverride, _ := cmd.Flags().GetInt("rows")
	seedOverride, _ := cmd.Flags().GetInt64("seed")
	trials, _ := cmd.Flags().GetInt("trials")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	minPeriods, _ := cmd.Flags().GetInt("min-periods")
	steps, _ := cmd.Flags().GetInt("steps")

	if tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", tolerance)
	}

	scenario := sim.DefaultScenario()
	var err error
	if scenarioPath != "" {
		scenario, err = sim.LoadScenario(scenarioPath)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
	}
	if rowsOverride > 0 {
		scenario.Rows = rowsOverride
	}
	if seedOverride != 0 {
		scenario.Seed = seedOverride
	}

	log.Info().
		Str("scenario", scenario.Name).
		Int("rows", scenario.Rows).
		Int("trials", trials).
		Float64("tolerance", tolerance).
		Msg("Benchmarking random-ranking baseline")

	rng := rand.New(rand.NewSource(scenario.Seed))
	frame, err := sim.Generate(scenario, rng)
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}

	cfg := elasticity.CurveConfig{
		OutcomeField:   sim.FieldSales,
		TreatmentField: sim.FieldPrice,
		MinPeriods:     minPeriods,
		Steps:          steps,
	}
	baseline, err := eval.RandomBaseline(frame, cfg, trials, rng)
	if err != nil {
		return fmt.Errorf("random baseline: %w", err)
	}

	fmt.Printf("Trials: %d over %d rows\n", baseline.Trials, frame.Len())
	fmt.Printf("Final elasticity: %.4f\n", baseline.FinalElasticity)
	fmt.Printf("Max deviation from diagonal: %.4f (%.1f%% of final)\n",
		baseline.MaxDeviation, baseline.RelativeDeviation*100)

	if baseline.RelativeDeviation > tolerance {
		return fmt.Errorf("mean curve deviates %.1f%% from the diagonal, tolerance %.1f%%",
			baseline.RelativeDeviation*100, tolerance*100)
	}

	fmt.Printf("✅ Mean curve within %.1f%% of the diagonal\n", tolerance*100)
	return nil
}
