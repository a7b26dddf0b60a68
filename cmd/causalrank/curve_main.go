package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/causalrank/internal/artifacts"
	"github.com/sawpanic/causalrank/internal/config"
	"github.com/sawpanic/causalrank/internal/dataset"
	"github.com/sawpanic/causalrank/internal/elasticity"
	"github.com/sawpanic/causalrank/internal/eval"
	logprogress "github.com/sawpanic/causalrank/internal/log"
)

// runCurve evaluates score columns of an existing CSV dataset
func runCurve(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	scoreArg, _ := cmd.Flags().GetString("score")
	outcome, _ := cmd.Flags().GetString("outcome")
	treatment, _ := cmd.Flags().GetString("treatment")
	configPath, _ := cmd.Flags().GetString("config")
	outRoot, _ := cmd.Flags().GetString("out")
	trueEffect, _ := cmd.Flags().GetString("true-effect")
	baselineTrials, _ := cmd.Flags().GetInt("baseline-trials")
	seed, _ := cmd.Flags().GetInt64("seed")
	progressArg, _ := cmd.Flags().GetString("progress")

	if input == "" {
		return fmt.Errorf("--input is required")
	}
	if scoreArg == "" || outcome == "" || treatment == "" {
		return fmt.Errorf("--score, --outcome and --treatment are required")
	}

	progressMode, err := logprogress.ParseMode(progressArg)
	if err != nil {
		return err
	}

	// Parse score fields
	scoreFields := strings.Split(scoreArg, ",")
	for i, field := range scoreFields {
		scoreFields[i] = strings.TrimSpace(field)
	}

	fileCfg, err := loadCurveConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	curveCfg := elasticity.CurveConfig{
		OutcomeField:   outcome,
		TreatmentField: treatment,
		MinPeriods:     fileCfg.Curve.MinPeriods,
		Steps:          fileCfg.Curve.Steps,
	}
	if v, _ := cmd.Flags().GetInt("min-periods"); v > 0 {
		curveCfg.MinPeriods = v
	}
	if v, _ := cmd.Flags().GetInt("steps"); v > 0 {
		curveCfg.Steps = v
	}
	if outRoot == "" {
		outRoot = fileCfg.Output.Dir
	}

	log.Info().
		Str("input", input).
		Strs("scores", scoreFields).
		Str("outcome", outcome).
		Str("treatment", treatment).
		Int("min_periods", curveCfg.MinPeriods).
		Int("steps", curveCfg.Steps).
		Msg("Computing cumulative elasticity curves")

	steps := []string{"load dataset", "rank and estimate"}
	if baselineTrials > 0 {
		steps = append(steps, "random baseline")
	}
	steps = append(steps, "write artifacts")
	stepLogger := logprogress.NewStepLogger("curve", steps, progressMode)

	stepLogger.StartStep("load dataset")
	frame, err := dataset.LoadCSV(input)
	if err != nil {
		stepLogger.Fail(err.Error())
		return fmt.Errorf("load dataset: %w", err)
	}
	stepLogger.CompleteStep()

	stepLogger.StartStep("rank and estimate")
	specs := make([]eval.ScoreSpec, 0, len(scoreFields))
	for _, field := range scoreFields {
		specs = append(specs, eval.ScoreSpec{Name: field, Field: field})
	}
	comparison, err := eval.Compare(frame, eval.CompareConfig{
		Curve:           curveCfg,
		Label:           filepath.Base(input),
		TrueEffectField: trueEffect,
	}, specs)
	if err != nil {
		stepLogger.Fail(err.Error())
		return fmt.Errorf("compare scores: %w", err)
	}
	stepLogger.CompleteStep()

	if baselineTrials > 0 {
		stepLogger.StartStep("random baseline")
		rng := rand.New(rand.NewSource(seed))
		baseline, err := eval.RandomBaseline(frame, curveCfg, baselineTrials, rng)
		if err != nil {
			stepLogger.Fail(err.Error())
			return fmt.Errorf("random baseline: %w", err)
		}
		comparison.Baseline = baseline
		stepLogger.CompleteStep()
	}

	stepLogger.StartStep("write artifacts")
	writer := artifacts.NewWriter(outRoot)
	if err := writeAll(writer, comparison); err != nil {
		stepLogger.Fail(err.Error())
		return err
	}
	stepLogger.CompleteStep()
	stepLogger.Finish()

	printComparison(comparison, writer.GetOutputDir())
	return nil
}

// loadCurveConfig loads the configuration file. When the flag was left at its
// default path and no file exists there, built-in defaults apply; an explicit
// --config must resolve.
func loadCurveConfig(path string, explicit bool) (*config.CurveFile, error) {
	loader := config.NewCurveLoader()
	err := loader.LoadFromFile(path)
	if err == nil {
		return loader.Config()
	}
	if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := loader.LoadDefault(); err != nil {
		return nil, err
	}
	return loader.Config()
}

// writeAll emits the three artifact files for a comparison
func writeAll(writer *artifacts.Writer, comparison *eval.Comparison) error {
	if err := writer.WriteComparison(comparison); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := writer.WriteCurvesCSV(comparison); err != nil {
		return fmt.Errorf("write curves: %w", err)
	}
	if err := writer.WriteReport(comparison); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// printComparison displays the evaluation summary
func printComparison(comparison *eval.Comparison, outputDir string) {
	fmt.Printf("✅ Curve evaluation completed\n")
	fmt.Printf("Dataset: %s (%d rows)\n", comparison.Dataset, comparison.Rows)
	fmt.Printf("Run ID: %s\n", comparison.RunID)
	for _, result := range comparison.Results {
		line := fmt.Sprintf("  %s: final elasticity %.4f, gain area %+.4f",
			result.Name, result.FinalElasticity, result.GainArea)
		if result.R2 != nil {
			line += fmt.Sprintf(", R² %.3f", *result.R2)
		}
		if result.RankCorrelation != nil {
			line += fmt.Sprintf(", rank corr %.3f", *result.RankCorrelation)
		}
		fmt.Println(line)
	}
	if comparison.Baseline != nil {
		fmt.Printf("Baseline: %d trials, max deviation %.4f (%.1f%% of final)\n",
			comparison.Baseline.Trials, comparison.Baseline.MaxDeviation,
			comparison.Baseline.RelativeDeviation*100)
	}
	fmt.Printf("Artifacts: %s\n", outputDir)
}
