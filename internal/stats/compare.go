package stats

import (
	"errors"
	"fmt"
)

// Names used for the two datasets in errors and reports.
const (
	DatasetA = "dataset-1"
	DatasetB = "dataset-2"
)

// MinDatasetSize is the smallest dataset a comparison accepts.
const MinDatasetSize = 3

// DefaultConfidence is the confidence level used when none is configured.
const DefaultConfidence = 0.95

// Options controls one comparison.
type Options struct {
	Confidence    float64
	SNDThreshold  int
	Tolerance     float64
	LowerBound    float64
	UpperBound    float64
	MaxIterations int
	Integrator    Integrator
	// Trace keeps the solver's bracket history in Result.Solution.Trace.
	Trace bool
}

// DefaultOptions returns the defaults of the command-line tool.
func DefaultOptions() Options {
	return Options{
		Confidence:    DefaultConfidence,
		SNDThreshold:  DefaultSNDThreshold,
		Tolerance:     DefaultTolerance,
		LowerBound:    DefaultLowerBound,
		UpperBound:    DefaultUpperBound,
		MaxIterations: DefaultMaxIterations,
		Integrator:    Simpson{Intervals: DefaultIntervals},
	}
}

// Request converts the options into a solver request for ctx.
func (o Options) Request(ctx ComparisonContext) Request {
	return Request{
		Confidence:    o.Confidence,
		DOF:           ctx.EffectiveDOF,
		UseNormal:     ctx.UseNormalApproximation,
		Tolerance:     o.Tolerance,
		LowerBound:    o.LowerBound,
		UpperBound:    o.UpperBound,
		MaxIterations: o.MaxIterations,
		Integrator:    o.Integrator,
		Trace:         o.Trace,
	}
}

// Validate checks the options before any data is touched.
func (o Options) Validate() error {
	if o.SNDThreshold < MinSNDThreshold {
		return &ParameterError{Name: "snd threshold", Value: o.SNDThreshold,
			Reason: fmt.Sprintf("it does not make sense to use the normal distribution below %d degrees of freedom", MinSNDThreshold)}
	}
	return o.Request(ComparisonContext{UseNormalApproximation: true}).Validate()
}

// Result holds every intermediate of a comparison along with its verdict.
type Result struct {
	Confidence float64           `json:"confidence" yaml:"confidence"`
	A          SampleStatistics  `json:"dataset1" yaml:"dataset1"`
	B          SampleStatistics  `json:"dataset2" yaml:"dataset2"`
	Context    ComparisonContext `json:"context" yaml:"context"`
	// Degenerate is set when both datasets were constant; no solver ran and
	// Interval collapses to the mean difference.
	Degenerate bool     `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
	Solution   Solution `json:"solution" yaml:"solution"`
	Interval   Interval `json:"interval" yaml:"interval"`
	Outcome    Outcome  `json:"outcome" yaml:"outcome"`
}

// Significant reports whether the comparison found a difference.
func (r *Result) Significant() bool { return r.Outcome.Kind != NoDifference }

// Compare runs the full pipeline over two datasets: summaries, effective DOF,
// critical value, interval and classification.
func Compare(a, b []float64, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if n := min(len(a), len(b)); n < MinDatasetSize {
		name := DatasetA
		if len(b) < len(a) {
			name = DatasetB
		}
		return nil, &InsufficientDataError{Dataset: name, Count: n, Required: MinDatasetSize}
	}

	sa, err := Summarize(DatasetA, a)
	if err != nil {
		return nil, err
	}
	sb, err := Summarize(DatasetB, b)
	if err != nil {
		return nil, err
	}
	res := &Result{Confidence: opt.Confidence, A: sa, B: sb}

	ctx, err := Estimate(sa, sb, opt.SNDThreshold)
	var degenerate *DegenerateVarianceError
	if errors.As(err, &degenerate) {
		d := sa.Mean - sb.Mean
		res.Degenerate = true
		res.Interval = Interval{Lower: d, Upper: d}
		res.Outcome = Classify(sa, sb, res.Interval)
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Context = ctx

	sol, err := Solve(opt.Request(ctx))
	if err != nil {
		return nil, fmt.Errorf("solve critical value: %w", err)
	}
	res.Solution = sol
	res.Interval = DifferenceInterval(sa, sb, ctx, sol.Z)
	res.Outcome = Classify(sa, sb, res.Interval)
	return res, nil
}
