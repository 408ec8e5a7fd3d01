package stats

import "math"

// DefaultSNDThreshold is the effective-DOF cutoff above which the standard
// normal distribution replaces Student's t.
const DefaultSNDThreshold = 32

// MinSNDThreshold is the smallest threshold accepted; below it the normal
// approximation is too coarse to be meaningful.
const MinSNDThreshold = 30

// ComparisonContext combines two SampleStatistics into the quantities the
// interval needs.
type ComparisonContext struct {
	StandardError          float64 `json:"standard_error" yaml:"standard_error"`
	EffectiveDOF           float64 `json:"effective_dof" yaml:"effective_dof"`
	UseNormalApproximation bool    `json:"use_normal" yaml:"use_normal"`
}

// Estimate computes the standard error of meanA-meanB and the Welch–Satterthwaite
// effective degrees of freedom. useNormal is set when the DOF exceeds threshold.
//
// When both variances are zero it returns a *DegenerateVarianceError.
func Estimate(a, b SampleStatistics, threshold int) (ComparisonContext, error) {
	if a.Count < 2 {
		return ComparisonContext{}, &InsufficientDataError{Dataset: DatasetA, Count: a.Count, Required: 2}
	}
	if b.Count < 2 {
		return ComparisonContext{}, &InsufficientDataError{Dataset: DatasetB, Count: b.Count, Required: 2}
	}
	if a.Variance == 0 && b.Variance == 0 {
		return ComparisonContext{}, &DegenerateVarianceError{MeanA: a.Mean, MeanB: b.Mean}
	}

	va := a.VarianceOfMean()
	vb := b.VarianceOfMean()
	sum := va + vb
	// (va+vb)^2 / (va^2/(na-1) + vb^2/(nb-1)), normalised by sum so tiny
	// variances do not underflow when squared.
	ra, rb := va/sum, vb/sum
	dof := 1 / (ra*ra/float64(a.Count-1) + rb*rb/float64(b.Count-1))

	return ComparisonContext{
		StandardError:          math.Sqrt(sum),
		EffectiveDOF:           dof,
		UseNormalApproximation: dof > float64(threshold),
	}, nil
}
