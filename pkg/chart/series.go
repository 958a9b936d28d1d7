package chart

import (
	"math"

	"github.com/raykavin/reportview/pkg/report"
	"golang.org/x/exp/slices"
)

// LinePoint is one sample of a line series
type LinePoint struct {
	Time  Time    `json:"time"`
	Value float64 `json:"value"`
}

// CandlePoint is one OHLC sample of a candlestick series
type CandlePoint struct {
	Time  Time    `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type timed interface {
	LinePoint | CandlePoint
}

func timeOf[P timed](p P) Time {
	switch v := any(p).(type) {
	case LinePoint:
		return v.Time
	case CandlePoint:
		return v.Time
	}
	return 0
}

// BuildLine converts an element's x/y arrays into an ascending series with
// one point per timestamp. Invalid times and non-finite values are dropped;
// for a repeated timestamp the later raw point wins.
func BuildLine(el report.ChartElement) []LinePoint {
	if el.X == nil || el.Y == nil {
		return []LinePoint{}
	}

	size := min(len(el.X), len(el.Y))
	points := make([]LinePoint, 0, size)
	for i := 0; i < size; i++ {
		t, ok := NormalizeTime(el.X[i])
		if !ok || !isFinite(el.Y[i]) {
			continue
		}
		points = append(points, LinePoint{Time: t, Value: el.Y[i]})
	}

	return sortDedup(points)
}

// BuildCandles converts an element's x/open/high/low/close arrays into an
// ascending candle series. An index missing any finite OHLC value is
// dropped as a whole.
func BuildCandles(el report.ChartElement) []CandlePoint {
	if el.X == nil || !el.HasOHLC() {
		return []CandlePoint{}
	}

	size := min(len(el.X), len(el.Open), len(el.High), len(el.Low), len(el.Close))
	points := make([]CandlePoint, 0, size)
	for i := 0; i < size; i++ {
		t, ok := NormalizeTime(el.X[i])
		if !ok || !allFinite(el.Open[i], el.High[i], el.Low[i], el.Close[i]) {
			continue
		}
		points = append(points, CandlePoint{
			Time:  t,
			Open:  el.Open[i],
			High:  el.High[i],
			Low:   el.Low[i],
			Close: el.Close[i],
		})
	}

	return sortDedup(points)
}

// sortDedup sorts by time keeping input order for equal times, then
// collapses each run of equal times into its last point
func sortDedup[P timed](points []P) []P {
	slices.SortStableFunc(points, func(a, b P) int {
		return compareTime(timeOf(a), timeOf(b))
	})

	deduped := points[:0]
	for _, point := range points {
		if n := len(deduped); n > 0 && timeOf(deduped[n-1]) == timeOf(point) {
			deduped[n-1] = point
			continue
		}
		deduped = append(deduped, point)
	}
	return deduped
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
