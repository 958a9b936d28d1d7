package inspect

import (
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval of a statistic
type Interval struct {
	Lower  float64
	Upper  float64
	Mean   float64
	StdDev float64
}

// Resampling defaults
const (
	DefaultSamples    = 10000
	DefaultConfidence = 0.95
)

// Bootstrap estimates the confidence interval of measure by resampling
// values with replacement
func Bootstrap(values []float64, measure func([]float64) float64, samples int, confidence float64) Interval {
	if len(values) == 0 || samples <= 0 {
		return Interval{}
	}

	estimates := make([]float64, samples)
	resample := make([]float64, len(values))
	for i := range estimates {
		for j := range resample {
			resample[j] = lo.Sample(values)
		}
		estimates[i] = measure(resample)
	}
	slices.Sort(estimates)

	tail := (1 - confidence) / 2
	mean, stdDev := stat.MeanStdDev(estimates, nil)
	return Interval{
		Lower:  stat.Quantile(tail, stat.LinInterp, estimates, nil),
		Upper:  stat.Quantile(1-tail, stat.LinInterp, estimates, nil),
		Mean:   mean,
		StdDev: stdDev,
	}
}

// Mean is the arithmetic mean, a Bootstrap measure
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}
