// Package stats implements the decision engine behind cmpds: per-dataset
// summaries, the Welch–Satterthwaite estimate of effective degrees of freedom,
// a table-free critical-value solver and the classification of the difference
// between two unpaired datasets.
//
// Every function here is pure. Results are fresh values and nothing is cached
// at package level, so independent comparisons may run concurrently.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SampleStatistics summarises one dataset.
type SampleStatistics struct {
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Variance float64 `json:"variance" yaml:"variance"` // unbiased, n-1 divisor
}

// StdDev returns the sample standard deviation.
func (s SampleStatistics) StdDev() float64 { return math.Sqrt(s.Variance) }

// VarianceOfMean returns variance/count, the squared standard error of the mean.
func (s SampleStatistics) VarianceOfMean() float64 { return s.Variance / float64(s.Count) }

// Summarize computes count, mean and unbiased sample variance of values.
// name identifies the dataset in errors (e.g. "dataset-1").
func Summarize(name string, values []float64) (SampleStatistics, error) {
	if len(values) < 2 {
		return SampleStatistics{}, &InsufficientDataError{Dataset: name, Count: len(values), Required: 2}
	}
	constant := true
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return SampleStatistics{}, &InvalidSampleError{Dataset: name, Index: i, Value: v}
		}
		if v != values[0] {
			constant = false
		}
	}
	// Constant datasets report exactly zero variance, not two-pass rounding residue.
	if constant {
		return SampleStatistics{Count: len(values), Mean: values[0]}, nil
	}
	mean, variance := stat.MeanVariance(values, nil)
	if math.IsInf(mean, 0) || math.IsInf(variance, 0) || math.IsNaN(variance) {
		i := floats.MaxIdx(values)
		return SampleStatistics{}, &InvalidSampleError{
			Dataset: name, Index: i, Value: values[i],
			Reason: "too large: the variance overflows float64; rescale the measurements",
		}
	}
	return SampleStatistics{Count: len(values), Mean: mean, Variance: variance}, nil
}
