package stats

import (
	mstats "github.com/montanaflynn/stats"
)

// Description carries descriptive statistics that do not take part in the
// decision but help a reader judge the raw data.
type Description struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// Describe summarises values for diagnostics.
func Describe(values []float64) (Description, error) {
	data := mstats.Float64Data(values)
	var d Description
	var err error
	if d.Min, err = data.Min(); err != nil {
		return Description{}, err
	}
	if d.Max, err = data.Max(); err != nil {
		return Description{}, err
	}
	if d.Median, err = data.Median(); err != nil {
		return Description{}, err
	}
	if d.StdDev, err = mstats.StandardDeviationSample(data); err != nil {
		return Description{}, err
	}
	return d, nil
}
