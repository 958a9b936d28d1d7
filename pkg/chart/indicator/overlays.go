package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/raykavin/reportview/pkg/report"
)

// EMA creates a new Exponential Moving Average indicator
func EMA(period int, color string) Indicator {
	return &ema{BaseIndicator{Period: period, Color: color}}
}

type ema struct {
	BaseIndicator
}

func (e ema) Warmup() int   { return e.Period }
func (e ema) Name() string  { return fmt.Sprintf("EMA(%d)", e.Period) }
func (e ema) Overlay() bool { return true }

func (e ema) Elements(source Source) []report.ChartElement {
	if !ValidateSource(source, e.Warmup(), e.Period) {
		return nil
	}

	values, times := TrimData(talib.Ema(source.Close, e.Period), source.Time, e.Warmup())
	return []report.ChartElement{CreateElement(e.Name(), e.Color, values, times)}
}

// SMA creates a new Simple Moving Average indicator
func SMA(period int, color string) Indicator {
	return &sma{BaseIndicator{Period: period, Color: color}}
}

type sma struct {
	BaseIndicator
}

func (s sma) Warmup() int   { return s.Period }
func (s sma) Name() string  { return fmt.Sprintf("SMA(%d)", s.Period) }
func (s sma) Overlay() bool { return true }

func (s sma) Elements(source Source) []report.ChartElement {
	if !ValidateSource(source, s.Warmup(), s.Period) {
		return nil
	}

	values, times := TrimData(talib.Sma(source.Close, s.Period), source.Time, s.Warmup())
	return []report.ChartElement{CreateElement(s.Name(), s.Color, values, times)}
}

// BollingerBands creates upper, middle and lower bands around an SMA
func BollingerBands(period int, deviation float64, color string) Indicator {
	return &bollinger{
		BaseIndicator: BaseIndicator{Period: period, Color: color},
		Deviation:     deviation,
	}
}

type bollinger struct {
	BaseIndicator
	Deviation float64
}

func (b bollinger) Warmup() int   { return b.Period }
func (b bollinger) Overlay() bool { return true }

func (b bollinger) Name() string {
	return fmt.Sprintf("BB(%d, %g)", b.Period, b.Deviation)
}

func (b bollinger) Elements(source Source) []report.ChartElement {
	if b.Deviation <= 0 || !ValidateSource(source, b.Warmup(), b.Period) {
		return nil
	}

	upper, middle, lower := talib.BBands(source.Close, b.Period, b.Deviation, b.Deviation, talib.SMA)

	elements := make([]report.ChartElement, 0, 3)
	for _, band := range []struct {
		name   string
		values []float64
	}{
		{"upper", upper},
		{"middle", middle},
		{"lower", lower},
	} {
		values, times := TrimData(band.values, source.Time, b.Warmup())
		title := fmt.Sprintf("BB %s(%d, %g)", band.name, b.Period, b.Deviation)
		elements = append(elements, CreateElement(title, b.Color, values, times))
	}
	return elements
}
