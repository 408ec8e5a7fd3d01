package stats

import (
	"fmt"
	"math"
)

// InvalidSampleError indicates a value the statistics cannot be computed
// from: non-positive, non-finite, or so large that the variance overflows.
type InvalidSampleError struct {
	Dataset string
	Index   int
	Value   float64
	Reason  string
}

func (e *InvalidSampleError) Error() string {
	reason := e.Reason
	switch {
	case reason != "":
	case math.IsNaN(e.Value) || math.IsInf(e.Value, 0):
		reason = "not finite"
	default:
		reason = "not positive"
	}
	return fmt.Sprintf("invalid sample in %s at index %d: %v is %s", e.Dataset, e.Index, e.Value, reason)
}

// InsufficientDataError indicates fewer observations than a computation requires.
type InsufficientDataError struct {
	Dataset  string
	Count    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data in %s: found %d values, need at least %d", e.Dataset, e.Count, e.Required)
}

// DegenerateVarianceError indicates both datasets have zero variance, so the
// standard error of the difference is zero and no interval can be formed.
type DegenerateVarianceError struct {
	MeanA float64
	MeanB float64
}

func (e *DegenerateVarianceError) Error() string {
	return fmt.Sprintf("degenerate variance: both datasets are constant (mean %g vs %g)", e.MeanA, e.MeanB)
}

// ConvergenceError indicates the critical-value search could not meet its tolerance.
type ConvergenceError struct {
	Confidence float64
	Iterations int
	Residual   float64
	Lower      float64
	Upper      float64
	Reason     string
}

func (e *ConvergenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("critical value for confidence %g did not converge: %s", e.Confidence, e.Reason)
	}
	return fmt.Sprintf("critical value for confidence %g did not converge after %d iterations (residual %.3g, bracket [%g, %g])",
		e.Confidence, e.Iterations, e.Residual, e.Lower, e.Upper)
}

// ParameterError reports an invalid tuning or configuration value.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Name, e.Value, e.Reason)
}
