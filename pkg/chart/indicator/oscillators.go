package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/raykavin/reportview/pkg/report"
)

// RSI creates a new Relative Strength Index indicator
func RSI(period int, color string) Indicator {
	return &rsi{BaseIndicator{Period: period, Color: color}}
}

type rsi struct {
	BaseIndicator
}

func (r rsi) Warmup() int   { return r.Period }
func (r rsi) Name() string  { return fmt.Sprintf("RSI(%d)", r.Period) }
func (r rsi) Overlay() bool { return false }

func (r rsi) Elements(source Source) []report.ChartElement {
	if !ValidateSource(source, r.Warmup(), r.Period) {
		return nil
	}

	values, times := TrimData(talib.Rsi(source.Close, r.Period), source.Time, r.Warmup())
	return []report.ChartElement{CreateElement(r.Name(), r.Color, values, times)}
}

// MACD creates a new Moving Average Convergence Divergence indicator
// fast: the fast period
// slow: the slow period
// signal: the signal period
func MACD(fast, slow, signal int, colorMACD, colorSignal string) Indicator {
	return &macd{
		Fast:        fast,
		Slow:        slow,
		Signal:      signal,
		ColorMACD:   colorMACD,
		ColorSignal: colorSignal,
	}
}

type macd struct {
	Fast        int
	Slow        int
	Signal      int
	ColorMACD   string
	ColorSignal string
}

func (m macd) Warmup() int   { return m.Slow + m.Signal }
func (m macd) Overlay() bool { return false }

func (m macd) Name() string {
	return fmt.Sprintf("MACD(%d, %d, %d)", m.Fast, m.Slow, m.Signal)
}

func (m macd) Elements(source Source) []report.ChartElement {
	warmup := m.Warmup()
	if !ValidateSource(source, warmup, m.Fast, m.Slow, m.Signal) {
		return nil
	}

	macdLine, signalLine, _ := talib.Macd(source.Close, m.Fast, m.Slow, m.Signal)
	macdValues, times := TrimData(macdLine, source.Time, warmup)
	signalValues, _ := TrimData(signalLine, source.Time, warmup)

	return []report.ChartElement{
		CreateElement(m.Name(), m.ColorMACD, macdValues, times),
		CreateElement(fmt.Sprintf("MACD signal(%d)", m.Signal), m.ColorSignal, signalValues, times),
	}
}

// Stoch creates a new Stochastic Oscillator indicator
// fastK: the fast %K period
// slowK: the slow %K period
// slowD: the slow %D period
func Stoch(fastK, slowK, slowD int, colorK, colorD string) Indicator {
	return &stoch{
		FastK:  fastK,
		SlowK:  slowK,
		SlowD:  slowD,
		ColorK: colorK,
		ColorD: colorD,
	}
}

type stoch struct {
	FastK  int
	SlowK  int
	SlowD  int
	ColorK string
	ColorD string
}

func (s stoch) Warmup() int   { return s.FastK + s.SlowK + s.SlowD }
func (s stoch) Overlay() bool { return false }

func (s stoch) Name() string {
	return fmt.Sprintf("STOCH(%d, %d, %d)", s.FastK, s.SlowK, s.SlowD)
}

func (s stoch) Elements(source Source) []report.ChartElement {
	warmup := s.Warmup()
	if !ValidateSource(source, warmup, s.FastK, s.SlowK, s.SlowD) {
		return nil
	}

	k, d := talib.Stoch(source.High, source.Low, source.Close, s.FastK, s.SlowK, talib.SMA, s.SlowD, talib.SMA)
	kValues, times := TrimData(k, source.Time, warmup)
	dValues, _ := TrimData(d, source.Time, warmup)

	return []report.ChartElement{
		CreateElement("STOCH K", s.ColorK, kValues, times),
		CreateElement("STOCH D", s.ColorD, dValues, times),
	}
}
