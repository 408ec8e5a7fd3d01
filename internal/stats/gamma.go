package stats

import "math"

// Lanczos coefficients for g = 7, n = 9.
var lanczosCoef = [...]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

const lanczosG = 7

// LogGamma returns ln|Γ(x)| using the Lanczos approximation. Arguments below
// 0.5 go through the reflection formula Γ(x)Γ(1-x) = π/sin(πx). It works in
// log space so that half-integer and fractional arguments from effective
// degrees of freedom stay finite well past the point where Γ overflows.
func LogGamma(x float64) float64 {
	if x < 0.5 {
		return math.Log(math.Pi/math.Abs(math.Sin(math.Pi*x))) - LogGamma(1-x)
	}
	x--
	a := lanczosCoef[0]
	t := x + lanczosG + 0.5
	for i := 1; i < len(lanczosCoef); i++ {
		a += lanczosCoef[i] / (x + float64(i))
	}
	return 0.5*math.Log(2*math.Pi) + (x+0.5)*math.Log(t) - t + math.Log(a)
}
