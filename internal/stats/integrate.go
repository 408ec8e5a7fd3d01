package stats

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/integrate/quad"
)

// Integrator approximates the definite integral of f over [a, b].
type Integrator interface {
	Integrate(f func(float64) float64, a, b float64) float64
}

// Integration rule names accepted by NewIntegrator.
const (
	RuleSimpson   = "simpson"
	RuleTrapezoid = "trapezoid"
	RuleLegendre  = "legendre"
)

const (
	DefaultIntervals      = 10000
	DefaultLegendrePoints = 128
)

// Simpson is the composite Simpson's 1/3 rule on Intervals equal panels.
// An odd count is rounded up.
type Simpson struct{ Intervals int }

func (s Simpson) Integrate(f func(float64) float64, a, b float64) float64 {
	n := s.Intervals
	if n < 2 {
		n = 2
	}
	if n%2 == 1 {
		n++
	}
	h := (b - a) / float64(n)
	sum := f(a) + f(b)
	for i := 1; i < n; i++ {
		x := a + float64(i)*h
		if i%2 == 1 {
			sum += 4 * f(x)
		} else {
			sum += 2 * f(x)
		}
	}
	return sum * h / 3
}

// Trapezoid samples f on a uniform grid and applies the trapezoidal rule.
type Trapezoid struct{ Intervals int }

func (t Trapezoid) Integrate(f func(float64) float64, a, b float64) float64 {
	n := t.Intervals
	if n < 1 {
		n = 1
	}
	xs := make([]float64, n+1)
	ys := make([]float64, n+1)
	h := (b - a) / float64(n)
	for i := range xs {
		xs[i] = a + float64(i)*h
		ys[i] = f(xs[i])
	}
	xs[n] = b
	ys[n] = f(b)
	return integrate.Trapezoidal(xs, ys)
}

// Legendre is fixed-order Gauss–Legendre quadrature.
type Legendre struct{ Points int }

func (l Legendre) Integrate(f func(float64) float64, a, b float64) float64 {
	n := l.Points
	if n < 1 {
		n = DefaultLegendrePoints
	}
	return quad.Fixed(f, a, b, n, quad.Legendre{}, 0)
}

// NewIntegrator builds the integrator named by rule. size is the panel count
// for simpson/trapezoid and the node count for legendre; zero selects the default.
func NewIntegrator(rule string, size int) (Integrator, error) {
	if size < 0 {
		return nil, &ParameterError{Name: "intervals", Value: size, Reason: "must not be negative"}
	}
	switch strings.ToLower(strings.TrimSpace(rule)) {
	case "", RuleSimpson:
		if size == 0 {
			size = DefaultIntervals
		}
		return Simpson{Intervals: size}, nil
	case RuleTrapezoid, "trapezoidal":
		if size == 0 {
			size = DefaultIntervals
		}
		return Trapezoid{Intervals: size}, nil
	case RuleLegendre, "gauss-legendre":
		if size == 0 {
			size = DefaultLegendrePoints
		}
		return Legendre{Points: size}, nil
	default:
		return nil, &ParameterError{Name: "integration", Value: rule, Reason: fmt.Sprintf("use %s, %s or %s", RuleSimpson, RuleTrapezoid, RuleLegendre)}
	}
}
