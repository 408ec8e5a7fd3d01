// Package report renders a comparison result as the verdict sentence or as a
// structured JSON/YAML document, and logs its intermediates.
package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
	"github.com/KaramelBytes/cmpds-cli/internal/utils"
)

// Format selects the rendering of a Report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, json or yaml)", s)
	}
}

var printer = message.NewPrinter(language.English)

// Message returns the one-line verdict for outcome at the given confidence.
func Message(confidence float64, o stats.Outcome) string {
	pct := fmt.Sprintf("%.1f", confidence*100)
	switch o.Kind {
	case stats.Smaller:
		return fmt.Sprintf("With %s%% confidence, dataset-2 is smaller than dataset-1 by about %s%%.", pct, printer.Sprintf("%.1f", o.Percent))
	case stats.Larger:
		return fmt.Sprintf("With %s%% confidence, dataset-2 is larger than dataset-1 by about %s%%.", pct, printer.Sprintf("%.1f", o.Percent))
	default:
		return fmt.Sprintf("With %s%% confidence, there is no significant difference between the datasets.", pct)
	}
}

// Side describes one dataset in a Report.
type Side struct {
	Source      string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Column      int                    `json:"column,omitempty" yaml:"column,omitempty"`
	Skipped     int                    `json:"skipped" yaml:"skipped"`
	Statistics  stats.SampleStatistics `json:"statistics" yaml:"statistics"`
	Description stats.Description      `json:"description" yaml:"description"`
}

// Report is the structured form of one comparison.
type Report struct {
	ID           string                  `json:"id" yaml:"id"`
	Name         string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Confidence   float64                 `json:"confidence" yaml:"confidence"`
	Outcome      stats.Kind              `json:"outcome" yaml:"outcome"`
	Percent      float64                 `json:"percent" yaml:"percent"`
	Message      string                  `json:"message" yaml:"message"`
	Dataset1     Side                    `json:"dataset1" yaml:"dataset1"`
	Dataset2     Side                    `json:"dataset2" yaml:"dataset2"`
	MeanDiff     float64                 `json:"mean_difference" yaml:"mean_difference"`
	Context      stats.ComparisonContext `json:"context" yaml:"context"`
	Degenerate   bool                    `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
	Distribution string                  `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	Z            float64                 `json:"z" yaml:"z"`
	Iterations   int                     `json:"iterations" yaml:"iterations"`
	Interval     stats.Interval          `json:"interval" yaml:"interval"`
	Trace        []stats.Step            `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// New builds a Report for res. a and b may be nil when the values did not come
// from files; they are used for sources and descriptive extras only.
func New(res *stats.Result, a, b *dataset.Dataset) (*Report, error) {
	r := &Report{
		ID:           uuid.NewString(),
		Confidence:   res.Confidence,
		Outcome:      res.Outcome.Kind,
		Percent:      res.Outcome.Percent,
		Message:      Message(res.Confidence, res.Outcome),
		MeanDiff:     res.A.Mean - res.B.Mean,
		Context:      res.Context,
		Degenerate:   res.Degenerate,
		Distribution: res.Solution.Distribution,
		Z:            res.Solution.Z,
		Iterations:   res.Solution.Iterations,
		Interval:     res.Interval,
		Trace:        res.Solution.Trace,
	}
	var err error
	if r.Dataset1, err = side(res.A, a); err != nil {
		return nil, fmt.Errorf("describe %s: %w", stats.DatasetA, err)
	}
	if r.Dataset2, err = side(res.B, b); err != nil {
		return nil, fmt.Errorf("describe %s: %w", stats.DatasetB, err)
	}
	return r, nil
}

func side(s stats.SampleStatistics, ds *dataset.Dataset) (Side, error) {
	out := Side{Statistics: s}
	if ds == nil {
		return out, nil
	}
	out.Source = ds.Source
	out.Column = ds.Column
	out.Skipped = len(ds.Skipped)
	d, err := stats.Describe(ds.Values)
	if err != nil {
		return Side{}, err
	}
	out.Description = d
	return out, nil
}

// Render encodes the report in format f. Text is the verdict line.
func (r *Report) Render(f Format) ([]byte, error) {
	switch f {
	case FormatText, "":
		return []byte(r.Message + "\n"), nil
	case FormatJSON:
		b, err := utils.PrettyJSON(r)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatYAML:
		return marshalYAML(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// RenderAll encodes several reports: one verdict line per report prefixed by
// its name for text, a single array for JSON or YAML.
func RenderAll(reports []*Report, f Format) ([]byte, error) {
	switch f {
	case FormatText, "":
		var buf bytes.Buffer
		for _, r := range reports {
			if r.Name != "" {
				fmt.Fprintf(&buf, "%s: ", r.Name)
			}
			buf.WriteString(r.Message)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	case FormatJSON:
		b, err := utils.PrettyJSON(reports)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatYAML:
		return marshalYAML(reports)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Log writes the intermediates of res at Info and the solver bracket history
// at Debug.
func Log(log *slog.Logger, res *stats.Result) {
	log.Info("dataset-1", "n", res.A.Count, "mean", res.A.Mean, "variance", res.A.Variance, "stddev", res.A.StdDev())
	log.Info("dataset-2", "n", res.B.Count, "mean", res.B.Mean, "variance", res.B.Variance, "stddev", res.B.StdDev())
	log.Info("confidence level", "percent", 100*res.Confidence)
	log.Info("mean difference", "diff", res.A.Mean-res.B.Mean, "stderr", res.Context.StandardError)
	if res.Degenerate {
		log.Info("both datasets are constant, no critical value needed")
	} else {
		log.Info("effective degrees of freedom", "dof", res.Context.EffectiveDOF, "use_normal", res.Context.UseNormalApproximation)
		LogSolution(log, res.Solution)
	}
	log.Info("confidence interval for difference", "lower", res.Interval.Lower, "upper", res.Interval.Upper)
	log.Info("reject the null hypothesis", "significant", res.Significant(), "crosses_zero", res.Interval.Contains(0))
	if res.Significant() {
		log.Info("percentage", "percent", res.Outcome.Percent)
	}
}

// LogSolution writes the critical value at Info and every bisection step at Debug.
func LogSolution(log *slog.Logger, sol stats.Solution) {
	log.Info("critical value", "distribution", sol.Distribution, "z", sol.Z,
		"iterations", sol.Iterations, "residual", sol.Residual)
	for _, s := range sol.Trace {
		log.Debug("bisection", "i", s.Iteration, "lower", s.Lower, "upper", s.Upper, "z", s.Z, "mass", s.Mass)
	}
}

// LogSkipped records every token a dataset dropped at Debug.
func LogSkipped(log *slog.Logger, ds *dataset.Dataset) {
	for _, s := range ds.Skipped {
		log.Debug("skipped token", "file", ds.Source, "line", s.Line, "token", s.Token, "reason", s.Reason)
	}
}
