// Package indicator derives technical indicator series from the OHLC data
// of a chart group.
package indicator

import (
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
)

// Indicator computes chart elements from a candle source
type Indicator interface {
	Name() string
	// Overlay reports whether the output is drawn over the price
	Overlay() bool
	// Warmup is the number of leading candles without a meaningful value
	Warmup() int
	Elements(source Source) []report.ChartElement
}

// Source is the candle data indicators are computed from
type Source struct {
	Time  []chart.Time
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

// Len returns the number of candles
func (s Source) Len() int {
	return len(s.Time)
}

// SourceFrom picks the OHLC source of a chart group: the candles_source
// element if present, else the first candlestick element
func SourceFrom(elements []report.ChartElement) (Source, bool) {
	el, ok := lo.Find(elements, func(el report.ChartElement) bool {
		return el.IsCandlesSource() && el.HasOHLC()
	})
	if !ok {
		el, ok = lo.Find(elements, func(el report.ChartElement) bool {
			return !el.IsCandlesSource() && el.IsCandlestick()
		})
	}
	if !ok {
		return Source{}, false
	}

	candles := chart.BuildCandles(el)
	if len(candles) == 0 {
		return Source{}, false
	}

	source := Source{
		Time:  make([]chart.Time, len(candles)),
		Open:  make([]float64, len(candles)),
		High:  make([]float64, len(candles)),
		Low:   make([]float64, len(candles)),
		Close: make([]float64, len(candles)),
	}
	for i, c := range candles {
		source.Time[i] = c.Time
		source.Open[i] = c.Open
		source.High[i] = c.High
		source.Low[i] = c.Low
		source.Close[i] = c.Close
	}

	return source, true
}

// Augment appends the elements of every indicator computed over the
// group's OHLC source. Without a source the input is returned as is.
func Augment(elements []report.ChartElement, indicators ...Indicator) []report.ChartElement {
	if len(indicators) == 0 {
		return elements
	}

	source, ok := SourceFrom(elements)
	if !ok {
		return elements
	}

	augmented := append([]report.ChartElement(nil), elements...)
	for _, indicator := range indicators {
		augmented = append(augmented, indicator.Elements(source)...)
	}
	return augmented
}

// BaseIndicator provides common functionality for all indicators
type BaseIndicator struct {
	Period int
	Color  string
}

// CreateElement builds a line element from indicator values
func CreateElement(title, color string, values []float64, times []chart.Time) report.ChartElement {
	el := report.ChartElement{
		Kind:  "scatter",
		Title: title,
		Mode:  "lines",
		X:     make([]report.RawTime, len(times)),
		Y:     values,
	}
	for i, t := range times {
		el.X[i] = report.NumTime(float64(t))
	}
	if color != "" {
		el.Color = report.Style{Scalar: color, Set: true}
	}
	return el
}

// MinPeriod is the shortest look-back window talib computes safely
const MinPeriod = 2

// ValidateSource checks that every period is at least MinPeriod and that
// the source has more candles than the warm-up
func ValidateSource(source Source, warmup int, periods ...int) bool {
	for _, period := range periods {
		if period < MinPeriod {
			return false
		}
	}
	return source.Len() > warmup
}

// TrimData drops the warm-up prefix of values and times
func TrimData(values []float64, times []chart.Time, warmup int) ([]float64, []chart.Time) {
	if warmup <= 0 {
		return values, times
	}
	if len(values) <= warmup {
		return []float64{}, []chart.Time{}
	}
	return values[warmup:], times[warmup:]
}
