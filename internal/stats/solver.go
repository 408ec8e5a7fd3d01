package stats

import (
	"fmt"
	"math"
)

// Solver defaults. Two-tailed critical values for confidence levels up to
// 0.999 stay below 100 for every t distribution with at least 2 degrees of
// freedom, which is the smallest effective DOF two datasets of 3 values can yield.
const (
	DefaultTolerance     = 1e-5
	DefaultLowerBound    = 0.0
	DefaultUpperBound    = 100.0
	DefaultMaxIterations = 200
)

// Request describes one critical-value computation.
type Request struct {
	Confidence    float64
	DOF           float64
	UseNormal     bool
	Tolerance     float64
	LowerBound    float64
	UpperBound    float64
	MaxIterations int
	// Integrator defaults to Simpson{DefaultIntervals} when nil.
	Integrator Integrator
	// Trace records the bracket at every iteration in Solution.Trace.
	Trace bool
}

// DefaultRequest returns a request for confidence with the default tuning and
// the standard normal distribution.
func DefaultRequest(confidence float64) Request {
	return Request{
		Confidence:    confidence,
		UseNormal:     true,
		Tolerance:     DefaultTolerance,
		LowerBound:    DefaultLowerBound,
		UpperBound:    DefaultUpperBound,
		MaxIterations: DefaultMaxIterations,
	}
}

// Step is one bisection iteration.
type Step struct {
	Iteration int     `json:"iteration" yaml:"iteration"`
	Lower     float64 `json:"lower" yaml:"lower"`
	Upper     float64 `json:"upper" yaml:"upper"`
	Z         float64 `json:"z" yaml:"z"`
	Mass      float64 `json:"mass" yaml:"mass"`
}

// Solution is the solved two-tailed critical value.
type Solution struct {
	Z            float64 `json:"z" yaml:"z"`
	Distribution string  `json:"distribution" yaml:"distribution"`
	Iterations   int     `json:"iterations" yaml:"iterations"`
	Residual     float64 `json:"residual" yaml:"residual"`
	Trace        []Step  `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Validate checks the request fields independent of the distribution.
func (r Request) Validate() error {
	switch {
	case !(r.Confidence > 0 && r.Confidence < 1):
		return &ParameterError{Name: "confidence", Value: r.Confidence, Reason: "must be strictly between 0 and 1"}
	case !(r.Tolerance > 0):
		return &ParameterError{Name: "tolerance", Value: r.Tolerance, Reason: "must be positive"}
	case !(r.LowerBound >= 0):
		return &ParameterError{Name: "lower bound", Value: r.LowerBound, Reason: "must not be negative"}
	case !(r.UpperBound > r.LowerBound) || math.IsInf(r.UpperBound, 0):
		return &ParameterError{Name: "upper bound", Value: r.UpperBound, Reason: fmt.Sprintf("must be finite and greater than lower bound %g", r.LowerBound)}
	case r.MaxIterations < 1:
		return &ParameterError{Name: "max iterations", Value: r.MaxIterations, Reason: "must be at least 1"}
	}
	return nil
}

// Solve returns z such that the mass of the selected distribution on [-z, z]
// equals r.Confidence.
func Solve(r Request) (Solution, error) {
	if err := r.Validate(); err != nil {
		return Solution{}, err
	}
	d, err := SelectDensity(ComparisonContext{EffectiveDOF: r.DOF, UseNormalApproximation: r.UseNormal})
	if err != nil {
		return Solution{}, err
	}
	return SolveDensity(d, r)
}

// SolveDensity runs the bisection for an explicit density. r.DOF and
// r.UseNormal are ignored. It stops once the bracket is no wider than
// r.Tolerance, so the returned z is within r.Tolerance of the root whatever
// the slope of the mass at that point.
func SolveDensity(d Density, r Request) (Solution, error) {
	if err := r.Validate(); err != nil {
		return Solution{}, err
	}
	in := r.Integrator
	if in == nil {
		in = Simpson{Intervals: DefaultIntervals}
	}
	mass := func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		return 2 * in.Integrate(d.Density, 0, x)
	}

	c := r.Confidence
	lo, hi := r.LowerBound, r.UpperBound
	if m := mass(hi); m < c {
		return Solution{}, &ConvergenceError{
			Confidence: c, Residual: c - m, Lower: lo, Upper: hi,
			Reason: fmt.Sprintf("upper bound %g encloses only %.6f of the %s mass; widen the bracket", hi, m, d.Name()),
		}
	}
	if m := mass(lo); m > c {
		return Solution{}, &ConvergenceError{
			Confidence: c, Residual: m - c, Lower: lo, Upper: hi,
			Reason: fmt.Sprintf("lower bound %g already encloses %.6f of the %s mass; lower the bracket", lo, m, d.Name()),
		}
	}

	sol := Solution{Distribution: d.Name()}
	for i := 1; i <= r.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		m := mass(mid)
		res := m - c
		if r.Trace {
			sol.Trace = append(sol.Trace, Step{Iteration: i, Lower: lo, Upper: hi, Z: mid, Mass: m})
		}
		sol.Z, sol.Iterations, sol.Residual = mid, i, math.Abs(res)
		if res == 0 {
			return sol, nil
		}
		if res > 0 {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo <= r.Tolerance {
			return sol, nil
		}
	}
	return Solution{}, &ConvergenceError{
		Confidence: c, Iterations: r.MaxIterations, Residual: sol.Residual, Lower: lo, Upper: hi,
	}
}
