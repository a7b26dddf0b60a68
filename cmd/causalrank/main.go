package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sawpanic/causalrank/internal/config"
)

const (
	appName = "CausalRank"
	version = "v0.3.0"
)

// normalizeFlags maps underscore flag spellings to their dashed form, so
// --min_periods resolves like --min-periods and matches the YAML keys.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "causalrank",
		Short:   "Rank model scores by treatment effect ordering, not outcome prediction",
		Version: version,
		Long: `CausalRank compares model scores by how well they order units by treatment
effect. Predictive metrics reward outcome prediction; the cumulative
elasticity curve is the diagnostic that separates prediction quality from
effect ordering. A score can carry a high R-squared and still rank effects
no better than chance.

Typical flow: 'causalrank simulate' runs the full walkthrough on a synthetic
pricing scenario; 'causalrank curve' evaluates score columns in your own CSV.`,
	}
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)
	rootCmd.SetVersionTemplate(appName + " {{.Version}}\n")

	// Curve computation on an existing dataset
	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "Compute cumulative elasticity curves from a CSV dataset",
		Long:  "Ranks rows by one or more score columns and evaluates the treatment elasticity of growing top-score prefixes, scaled by prefix fraction",
		RunE:  runCurve,
	}

	curveCmd.Flags().String("input", "", "Input CSV path (required)")
	curveCmd.Flags().String("score", "", "Comma-separated score columns to rank by (required)")
	curveCmd.Flags().String("outcome", "", "Outcome column (required)")
	curveCmd.Flags().String("treatment", "", "Treatment column (required)")
	curveCmd.Flags().Int("min-periods", 0, "Smallest prefix length evaluated (0 = config default)")
	curveCmd.Flags().Int("steps", 0, "Target number of curve points (0 = config default)")
	curveCmd.Flags().String("config", config.GetDefaultConfigPath(), "Curve configuration YAML")
	curveCmd.Flags().String("out", "", "Artifact output root (default from config)")
	curveCmd.Flags().String("true-effect", "", "Column holding known per-row effects (adds rank correlation)")
	curveCmd.Flags().Int("baseline-trials", 0, "Random baseline trials (0 disables)")
	curveCmd.Flags().Int64("seed", 42, "Random seed for the baseline")
	curveCmd.Flags().String("progress", "auto", "Progress output mode (auto|plain|json)")

	// Synthetic walkthrough
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the full walkthrough on a synthetic pricing scenario",
		Long:  "Generates confounded pricing data, fits outcome and effect models, scores a held-out test frame, and compares raw and denoised elasticity curves",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("scenario", "", "Scenario YAML (default: built-in ice cream scenario)")
	simulateCmd.Flags().String("out", "out/sim", "Artifact output root")
	simulateCmd.Flags().Int("rows", 0, "Override scenario rows (0 keeps scenario value)")
	simulateCmd.Flags().Int64("seed", 0, "Override scenario seed (0 keeps scenario value)")
	simulateCmd.Flags().Int("baseline-trials", 20, "Random baseline trials (0 disables)")
	simulateCmd.Flags().String("progress", "auto", "Progress output mode (auto|plain|json)")

	// Statistical benchmarks
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Statistical benchmark commands",
		Long:  "Benchmarks that verify statistical properties of the curve computation",
	}

	baselineCmd := &cobra.Command{
		Use:   "baseline",
		Short: "Verify the random-ranking diagonal property",
		Long:  "Repeatedly ranks a simulated frame by uniform random scores and checks that the mean curve tracks the diagonal to the full-frame elasticity",
		RunE:  runBenchBaseline,
	}

	baselineCmd.Flags().String("scenario", "", "Scenario YAML (default: built-in ice cream scenario)")
	baselineCmd.Flags().Int("rows", 0, "Override scenario rows (0 keeps scenario value)")
	baselineCmd.Flags().Int64("seed", 0, "Override scenario seed (0 keeps scenario value)")
	baselineCmd.Flags().Int("trials", 100, "Number of random-ranking trials")
	baselineCmd.Flags().Float64("tolerance", 0.2, "Max relative deviation of the mean curve from the diagonal")
	baselineCmd.Flags().Int("min-periods", 30, "Smallest prefix length evaluated")
	baselineCmd.Flags().Int("steps", 100, "Target number of curve points")

	benchCmd.AddCommand(baselineCmd)

	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(benchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
