package stats

import (
	"fmt"
	"math"
)

// Density is a symmetric, zero-centred probability density function.
type Density interface {
	Density(x float64) float64
	Name() string
}

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// StandardNormal is the density of N(0, 1).
type StandardNormal struct{}

func (StandardNormal) Density(x float64) float64 { return invSqrt2Pi * math.Exp(-x*x/2) }

func (StandardNormal) Name() string { return "standard normal" }

// StudentT is the density of Student's t with a possibly fractional number of
// degrees of freedom. Build it with NewStudentT so the normalisation constant
// is computed once.
type StudentT struct {
	DOF  float64
	norm float64
	exp  float64
}

// NewStudentT returns the t density for dof > 0.
func NewStudentT(dof float64) (StudentT, error) {
	if !(dof > 0) || math.IsInf(dof, 0) {
		return StudentT{}, &ParameterError{Name: "degrees of freedom", Value: dof, Reason: "must be positive and finite"}
	}
	lnNorm := LogGamma((dof+1)/2) - LogGamma(dof/2) - 0.5*math.Log(dof*math.Pi)
	return StudentT{DOF: dof, norm: math.Exp(lnNorm), exp: -(dof + 1) / 2}, nil
}

func (t StudentT) Density(x float64) float64 {
	return t.norm * math.Pow(1+x*x/t.DOF, t.exp)
}

func (t StudentT) Name() string { return fmt.Sprintf("t(%.2f)", t.DOF) }

// SelectDensity returns the density the interval should use for ctx.
func SelectDensity(ctx ComparisonContext) (Density, error) {
	if ctx.UseNormalApproximation {
		return StandardNormal{}, nil
	}
	return NewStudentT(ctx.EffectiveDOF)
}
