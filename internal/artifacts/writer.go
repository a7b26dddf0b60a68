// Package artifacts writes evaluation runs to disk: machine-readable JSONL
// and CSV for downstream plotting, plus a human-readable markdown report.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sawpanic/causalrank/internal/eval"
)

// Writer handles writing run artifacts under a dated directory.
type Writer struct {
	outputDir string
	dateDir   string
}

// NewWriter creates a writer rooted at outputDir/<YYYY-MM-DD>.
func NewWriter(outputDir string) *Writer {
	dateDir := time.Now().Format("2006-01-02")
	return &Writer{
		outputDir: filepath.Join(outputDir, dateDir),
		dateDir:   dateDir,
	}
}

// GetOutputDir returns the full output directory path.
func (w *Writer) GetOutputDir() string {
	return w.outputDir
}

// WriteComparison writes results.jsonl: one JSON line per score result,
// then the whole comparison as a final summary line.
func (w *Writer) WriteComparison(comparison *eval.Comparison) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	resultsFile := filepath.Join(w.outputDir, "results.jsonl")
	file, err := os.Create(resultsFile)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer file.Close()

	for _, result := range comparison.Results {
		line, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal score result %q: %w", result.Name, err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write score result: %w", err)
		}
	}

	summary, err := json.Marshal(comparison)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if _, err := file.Write(append(summary, '\n')); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// WriteCurvesCSV writes every curve in long format, one row per evaluated
// prefix: score, k, fraction, elasticity, value. The baseline mean curve is
// appended under the score name "random_baseline".
func (w *Writer) WriteCurvesCSV(comparison *eval.Comparison) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	curvesFile := filepath.Join(w.outputDir, "curves.csv")
	file, err := os.Create(curvesFile)
	if err != nil {
		return fmt.Errorf("create curves file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"score", "k", "fraction", "elasticity", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, result := range comparison.Results {
		for _, p := range result.Curve.Points {
			record := []string{
				result.Name,
				strconv.Itoa(p.K),
				strconv.FormatFloat(p.Fraction, 'g', -1, 64),
				strconv.FormatFloat(p.Elasticity, 'g', -1, 64),
				strconv.FormatFloat(p.Value, 'g', -1, 64),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write curve row for %q: %w", result.Name, err)
			}
		}
	}

	if baseline := comparison.Baseline; baseline != nil {
		for i := range baseline.MeanValues {
			record := []string{
				"random_baseline",
				"",
				strconv.FormatFloat(baseline.Fractions[i], 'g', -1, 64),
				"",
				strconv.FormatFloat(baseline.MeanValues[i], 'g', -1, 64),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write baseline row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush curves file: %w", err)
	}
	return nil
}

// WriteReport writes the markdown report.
func (w *Writer) WriteReport(comparison *eval.Comparison) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reportFile := filepath.Join(w.outputDir, "report.md")
	file, err := os.Create(reportFile)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(w.generateMarkdownReport(comparison)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// generateMarkdownReport generates the complete markdown report.
func (w *Writer) generateMarkdownReport(comparison *eval.Comparison) string {
	var report strings.Builder

	report.WriteString("# Cumulative Elasticity Report\n\n")
	report.WriteString(fmt.Sprintf("**Run ID**: %s\n", comparison.RunID))
	report.WriteString(fmt.Sprintf("**Generated**: %s\n", comparison.Timestamp.Format("2006-01-02 15:04:05 UTC")))
	report.WriteString(fmt.Sprintf("**Dataset**: %s (%d rows)\n", comparison.Dataset, comparison.Rows))
	report.WriteString(fmt.Sprintf("**Curve**: outcome=%s treatment=%s min_periods=%d steps=%d\n\n",
		comparison.OutcomeField, comparison.TreatmentField, comparison.MinPeriods, comparison.Steps))

	report.WriteString("## Scores\n\n")
	report.WriteString("| Score | R² | Final Elasticity | Gain Area | Rank Corr (true effect) |\n")
	report.WriteString("|-------|----:|-----------------:|----------:|------------------------:|\n")
	for _, result := range comparison.Results {
		r2 := "n/a"
		if result.R2 != nil {
			r2 = fmt.Sprintf("%.3f", *result.R2)
		}
		corr := "n/a"
		if result.RankCorrelation != nil {
			corr = fmt.Sprintf("%.3f", *result.RankCorrelation)
		}
		report.WriteString(fmt.Sprintf("| %s | %s | %.4f | %+.4f | %s |\n",
			result.Name, r2, result.FinalElasticity, result.GainArea, corr))
	}
	report.WriteString("\n")

	if baseline := comparison.Baseline; baseline != nil {
		report.WriteString("## Random Baseline\n\n")
		report.WriteString(fmt.Sprintf("- **Trials**: %d\n", baseline.Trials))
		report.WriteString(fmt.Sprintf("- **Final Elasticity**: %.4f\n", baseline.FinalElasticity))
		report.WriteString(fmt.Sprintf("- **Max Deviation from Diagonal**: %.4f (%.1f%% of final)\n\n",
			baseline.MaxDeviation, baseline.RelativeDeviation*100))
	}

	report.WriteString("## Reading the Numbers\n\n")
	report.WriteString("R² measures how well a model predicts the outcome; gain area measures how well ")
	report.WriteString("its score orders units by treatment effect. The two routinely disagree: a score ")
	report.WriteString("can predict the outcome accurately while ordering effects no better than chance. ")
	report.WriteString("Positive gain area means high-scored units carry stronger elasticity than the ")
	report.WriteString("dataset average; a random score hugs zero.\n")

	return report.String()
}
