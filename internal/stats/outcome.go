package stats

import "fmt"

// Kind identifies which of the three verdicts a comparison reached.
type Kind int

const (
	NoDifference Kind = iota
	Smaller
	Larger
)

func (k Kind) String() string {
	switch k {
	case NoDifference:
		return "no-difference"
	case Smaller:
		return "smaller"
	case Larger:
		return "larger"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome is the verdict on dataset-2 relative to dataset-1. Percent is the
// size of the difference relative to mean(A) and is zero for NoDifference.
type Outcome struct {
	Kind    Kind    `json:"kind" yaml:"kind"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Interval is a confidence interval for meanA - meanB.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether x lies in the closed interval.
func (iv Interval) Contains(x float64) bool { return iv.Lower <= x && x <= iv.Upper }

// DifferenceInterval returns (meanA-meanB) ± z·se.
func DifferenceInterval(a, b SampleStatistics, ctx ComparisonContext, z float64) Interval {
	d := a.Mean - b.Mean
	m := z * ctx.StandardError
	return Interval{Lower: d - m, Upper: d + m}
}

// Classify turns the interval into an Outcome. Zero inside the interval means
// no significant difference; otherwise the sign of meanA-meanB picks the direction.
func Classify(a, b SampleStatistics, iv Interval) Outcome {
	if iv.Contains(0) {
		return Outcome{Kind: NoDifference}
	}
	return direction(a, b)
}

func direction(a, b SampleStatistics) Outcome {
	if b.Mean < a.Mean {
		return Outcome{Kind: Smaller, Percent: 100 * (a.Mean - b.Mean) / a.Mean}
	}
	return Outcome{Kind: Larger, Percent: 100 * (b.Mean - a.Mean) / a.Mean}
}
