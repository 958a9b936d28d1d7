package indicator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default colors of parsed indicators
const (
	ColorOverlay = "#fbbf24"
	ColorPrimary = "#60a5fa"
	ColorSignal  = "#f472b6"
)

// Parse builds an indicator from a "name[:arg,...]" string such as
// "ema:21", "bb:20,2" or "macd:12,26,9". Missing arguments take the usual
// defaults.
func Parse(spec string) (Indicator, error) {
	name, rawArgs, _ := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), ":")

	var args []float64
	if rawArgs != "" {
		for _, raw := range strings.Split(rawArgs, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return nil, fmt.Errorf("indicator %q: invalid argument %q", spec, raw)
			}
			args = append(args, v)
		}
	}

	// every argument is a period except the band width of bollinger
	for i, v := range args {
		if isBollinger(name) && i == 1 {
			continue
		}
		if v != math.Trunc(v) || v < MinPeriod || v > maxPeriod {
			return nil, fmt.Errorf("indicator %q: period %g must be a whole number from %d to %d", spec, v, MinPeriod, maxPeriod)
		}
	}

	arg := func(i int, fallback float64) float64 {
		if i < len(args) {
			return args[i]
		}
		return fallback
	}
	period := func(i, fallback int) int {
		return int(arg(i, float64(fallback)))
	}

	switch name {
	case "ema":
		return EMA(period(0, 9), ColorOverlay), nil
	case "sma":
		return SMA(period(0, 20), ColorOverlay), nil
	case "bb", "bbands", "bollinger":
		return BollingerBands(period(0, 20), arg(1, 2), ColorOverlay), nil
	case "rsi":
		return RSI(period(0, 14), ColorPrimary), nil
	case "macd":
		return MACD(period(0, 12), period(1, 26), period(2, 9), ColorPrimary, ColorSignal), nil
	case "stoch":
		return Stoch(period(0, 14), period(1, 3), period(2, 3), ColorPrimary, ColorSignal), nil
	default:
		return nil, fmt.Errorf("unknown indicator %q", spec)
	}
}

func isBollinger(name string) bool {
	return name == "bb" || name == "bbands" || name == "bollinger"
}

// ParseAll parses every spec, failing on the first invalid one
func ParseAll(specs []string) ([]Indicator, error) {
	indicators := make([]Indicator, 0, len(specs))
	for _, spec := range specs {
		indicator, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, indicator)
	}
	return indicators, nil
}
