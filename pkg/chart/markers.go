package chart

import (
	"strings"

	"github.com/raykavin/reportview/pkg/report"
)

// MarkerSide is the trade direction a marker stands for
type MarkerSide int

const (
	SideNeutral MarkerSide = iota
	SideBuy
	SideSell
)

// MarkerKind is the classified trade event of a marker label
type MarkerKind int

const (
	KindNeutral MarkerKind = iota
	KindBuy
	KindStopLoss
	KindTakeProfit
	KindSell
)

// Side collapses the kind into a trade direction
func (k MarkerKind) Side() MarkerSide {
	switch k {
	case KindBuy:
		return SideBuy
	case KindStopLoss, KindTakeProfit, KindSell:
		return SideSell
	default:
		return SideNeutral
	}
}

func (k MarkerKind) String() string {
	switch k {
	case KindBuy:
		return "buy"
	case KindStopLoss:
		return "stop_loss"
	case KindTakeProfit:
		return "take_profit"
	case KindSell:
		return "sell"
	default:
		return "neutral"
	}
}

// Position places a marker relative to its bar
type Position string

const (
	AboveBar Position = "aboveBar"
	BelowBar Position = "belowBar"
)

// Shape is the glyph drawn for a marker
type Shape string

const (
	ArrowUp   Shape = "arrowUp"
	ArrowDown Shape = "arrowDown"
	Circle    Shape = "circle"
)

// Marker colors
const (
	ColorBuy        = "#22c55e"
	ColorStopLoss   = "#ef4444"
	ColorTakeProfit = "#f59e0b"
	ColorSell       = "#f43f5e"
	ColorNeutral    = "#38bdf8"
)

// Marker is a point annotation drawn over a series
type Marker struct {
	Time     Time       `json:"time"`
	Position Position   `json:"position"`
	Color    string     `json:"color"`
	Shape    Shape      `json:"shape"`
	Text     string     `json:"text"`
	Kind     MarkerKind `json:"-"`
}

// ClassifyMarker maps a point label to a trade event. The first matching
// rule wins: buy, stop loss, take profit (limit sell), sell.
func ClassifyMarker(text string) MarkerKind {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "buy") || lower == "long":
		return KindBuy
	case strings.Contains(lower, "stop_loss") || strings.Contains(lower, "stop loss"):
		return KindStopLoss
	case strings.Contains(lower, "limit") && strings.Contains(lower, "sell"):
		return KindTakeProfit
	case strings.Contains(lower, "sell") || strings.Contains(lower, "short"):
		return KindSell
	default:
		return KindNeutral
	}
}

// IsMarkerElement reports whether the element draws point markers
func IsMarkerElement(el report.ChartElement) bool {
	return strings.Contains(el.Mode, "markers")
}

// BuildMarkers converts a markers-mode element into classified markers in
// input order. Points with an unparseable time are dropped.
func BuildMarkers(el report.ChartElement) []Marker {
	if el.X == nil || !IsMarkerElement(el) {
		return []Marker{}
	}

	markers := make([]Marker, 0, len(el.X))
	for i, raw := range el.X {
		t, ok := NormalizeTime(raw)
		if !ok {
			continue
		}

		var text string
		if i < len(el.Text) {
			text = el.Text[i]
		}

		markers = append(markers, newMarker(t, ClassifyMarker(text), el, i))
	}

	return markers
}

func newMarker(t Time, kind MarkerKind, el report.ChartElement, index int) Marker {
	marker := Marker{
		Time:     t,
		Position: AboveBar,
		Shape:    ArrowDown,
		Kind:     kind,
	}

	switch kind {
	case KindBuy:
		marker.Position = BelowBar
		marker.Shape = ArrowUp
		marker.Color = ColorBuy
		marker.Text = "BUY"
	case KindStopLoss:
		marker.Color = ColorStopLoss
		marker.Text = "SL"
	case KindTakeProfit:
		marker.Color = ColorTakeProfit
		marker.Text = "TP"
	case KindSell:
		marker.Color = ColorSell
		marker.Text = "SELL"
	default:
		marker.Shape = Circle
		marker.Color = elementColor(el, index, ColorNeutral)
	}

	return marker
}

// elementColor resolves the per-point or scalar color of an element
func elementColor(el report.ChartElement, index int, fallback string) string {
	if color, ok := el.Color.At(index); ok {
		return color
	}
	return fallback
}
