package chart

import (
	"regexp"

	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
)

// PaneKind identifies one of the two chart panes
type PaneKind int

const (
	PaneMain PaneKind = iota
	PaneIndicator
)

func (k PaneKind) String() string {
	if k == PaneIndicator {
		return "indicator"
	}
	return "main"
}

// MarshalText renders the kind as its name
func (k PaneKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var indicatorTitle = regexp.MustCompile(`(?i)\b(rsi|signals?|macd|stoch|indicator)\b`)

// ClassifyPane decides which pane an element belongs to from its title
func ClassifyPane(el report.ChartElement) PaneKind {
	if indicatorTitle.MatchString(el.Title) {
		return PaneIndicator
	}
	return PaneMain
}

// Visible keeps the elements that can be drawn: not hidden and with an
// x axis
func Visible(elements []report.ChartElement) []report.ChartElement {
	return lo.Filter(elements, func(el report.ChartElement, _ int) bool {
		return !el.IsHidden && el.X != nil
	})
}

// Partition is the pane assignment of a chart group
type Partition struct {
	Main      []report.ChartElement
	Indicator []report.ChartElement
}

// HasIndicatorPane reports whether a secondary pane is materialized
func (p Partition) HasIndicatorPane() bool {
	return len(p.Indicator) > 0
}

// Split assigns visible elements to panes. The indicator pane only exists
// when both sides are non-empty; otherwise everything renders in main.
func Split(elements []report.ChartElement) Partition {
	visible := Visible(elements)

	main, indicator := lo.FilterReject(visible, func(el report.ChartElement, _ int) bool {
		return ClassifyPane(el) == PaneMain
	})

	if len(main) == 0 || len(indicator) == 0 {
		return Partition{Main: visible}
	}

	return Partition{Main: main, Indicator: indicator}
}
