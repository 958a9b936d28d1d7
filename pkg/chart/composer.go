package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/StudioSol/set"
	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Layout defaults
const (
	DefaultPaneGap   = 8
	DefaultMinHeight = 120
	DefaultMainRatio = 0.72
)

// PaneState tracks the lifecycle of a pane
type PaneState int

const (
	PaneEmpty PaneState = iota
	PaneBuilding
	PaneReady
	PaneDisposed
)

func (s PaneState) String() string {
	switch s {
	case PaneBuilding:
		return "building"
	case PaneReady:
		return "ready"
	case PaneDisposed:
		return "disposed"
	default:
		return "empty"
	}
}

// SeriesInfo describes a series created on a pane
type SeriesInfo struct {
	Title     string `json:"title"`
	Candles   bool   `json:"candles"`
	Points    int    `json:"points"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// Pane is one composed chart surface
type Pane struct {
	Kind     PaneKind
	Height   int
	LogScale bool
	Surface  Surface
	Series   []SeriesInfo
	Markers  []Marker
	// Dropped counts queued markers with no matching plotted time
	Dropped int

	state PaneState
}

// State returns the lifecycle state of the pane
func (p *Pane) State() PaneState {
	return p.state
}

func (p *Pane) dispose() {
	if p == nil || p.state == PaneDisposed {
		return
	}
	if p.Surface != nil {
		p.Surface.Dispose()
	}
	p.state = PaneDisposed
}

// Layout is the result of composing a chart group
type Layout struct {
	Main      *Pane
	Indicator *Pane
	Legend    []LegendItem

	sync *ViewportSync
}

// Empty reports whether nothing could be plotted
func (l *Layout) Empty() bool {
	return l == nil || l.Main == nil
}

// Panes returns the materialized panes, main first
func (l *Layout) Panes() []*Pane {
	if l.Empty() {
		return nil
	}
	if l.Indicator == nil {
		return []*Pane{l.Main}
	}
	return []*Pane{l.Main, l.Indicator}
}

// Sync returns the viewport synchronizer, nil for a single pane
func (l *Layout) Sync() *ViewportSync {
	return l.sync
}

// Dispose releases every surface of the layout. Safe to call twice.
func (l *Layout) Dispose() {
	if l == nil {
		return
	}
	if l.sync != nil {
		l.sync.Close()
		l.sync = nil
	}
	l.Main.dispose()
	l.Indicator.dispose()
}

// ComposerOption configures a Composer
type ComposerOption func(*Composer)

// WithLogger sets the composer logger
func WithLogger(log logger.Logger) ComposerOption {
	return func(c *Composer) {
		c.log = log
	}
}

// WithPaneGap sets the vertical gap between the two panes
func WithPaneGap(gap int) ComposerOption {
	return func(c *Composer) {
		c.paneGap = gap
	}
}

// WithMinHeight sets the minimum height shared by two panes
func WithMinHeight(height int) ComposerOption {
	return func(c *Composer) {
		c.minHeight = height
	}
}

// WithMainRatio sets the share of the height given to the main pane
func WithMainRatio(ratio float64) ComposerOption {
	return func(c *Composer) {
		c.mainRatio = ratio
	}
}

// WithTheme sets the surface theme
func WithTheme(theme Theme) ComposerOption {
	return func(c *Composer) {
		c.theme = theme
	}
}

// Composer binds normalized chart data to surfaces
type Composer struct {
	factory   SurfaceFactory
	log       logger.Logger
	paneGap   int
	minHeight int
	mainRatio float64
	theme     Theme
}

// NewComposer creates a composer drawing on surfaces from factory
func NewComposer(factory SurfaceFactory, options ...ComposerOption) *Composer {
	composer := &Composer{
		factory:   factory,
		log:       logger.Nop(),
		paneGap:   DefaultPaneGap,
		minHeight: DefaultMinHeight,
		mainRatio: DefaultMainRatio,
		theme:     DefaultTheme,
	}

	for _, option := range options {
		option(composer)
	}

	return composer
}

// Compose splits elements into panes and draws them. Only a failing
// surface factory returns an error, in which case every surface created so
// far has been disposed.
func (c *Composer) Compose(elements []report.ChartElement, totalHeight int) (*Layout, error) {
	partition := Split(elements)
	layout := &Layout{Legend: Legend(elements)}
	if len(partition.Main) == 0 {
		return layout, nil
	}

	mainHeight, indicatorHeight := c.Heights(totalHeight, partition.HasIndicatorPane())

	main, err := c.buildPane(PaneMain, partition.Main, mainHeight)
	if err != nil {
		return &Layout{}, err
	}
	layout.Main = main

	if !partition.HasIndicatorPane() {
		return layout, nil
	}

	indicator, err := c.buildPane(PaneIndicator, partition.Indicator, indicatorHeight)
	if err != nil {
		layout.Dispose()
		return &Layout{}, err
	}
	layout.Indicator = indicator
	layout.sync = Link(main.Surface, indicator.Surface)

	return layout, nil
}

// Heights splits the total height between the panes
func (c *Composer) Heights(total int, withIndicator bool) (main, indicator int) {
	if !withIndicator {
		return total, 0
	}

	usable := max(total-c.paneGap, c.minHeight)
	main = int(math.Round(float64(usable) * c.mainRatio))
	return main, usable - main
}

type host struct {
	series  MarkerHost
	times   *set.LinkedHashSetINT64
	candles bool
}

func (c *Composer) buildPane(kind PaneKind, elements []report.ChartElement, height int) (*Pane, error) {
	pane := &Pane{
		Kind:     kind,
		Height:   height,
		LogScale: InferLogScale(elements),
	}

	surface, err := c.factory.CreateSurface(SurfaceOptions{
		Height:   height,
		LogScale: pane.LogScale,
		Theme:    c.theme,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s surface: %w", kind, err)
	}
	pane.Surface = surface
	pane.state = PaneBuilding

	// Phase 1: series. Markers are only queued here.
	var (
		hosts   []host
		pending []Marker
	)
	for _, el := range elements {
		switch {
		case el.X == nil || el.IsCandlesSource():
			continue
		case IsMarkerElement(el):
			pending = append(pending, BuildMarkers(el)...)
		case el.IsCandlestick():
			candles := BuildCandles(el)
			if len(candles) == 0 {
				c.log.Debugf("chart: %s pane skips %q, no valid candles", kind, el.Title)
				continue
			}
			series := surface.AddCandlestickSeries(CandleOptions{
				UpColor:   CandleUpColor,
				DownColor: CandleDownColor,
			})
			series.SetData(candles)
			hosts = append(hosts, host{series: series, times: timeSet(candles), candles: true})
			pane.Series = append(pane.Series, SeriesInfo{Title: el.Title, Candles: true, Points: len(candles)})
		default:
			points := BuildLine(el)
			if len(points) == 0 {
				c.log.Debugf("chart: %s pane skips %q, no valid points", kind, el.Title)
				continue
			}
			series := surface.AddLineSeries(LineOptions{
				Color:       elementColor(el, 0, DefaultLineColor),
				LineWidth:   2,
				LineVisible: true,
			})
			series.SetData(points)
			hosts = append(hosts, host{series: series, times: timeSet(points)})
			pane.Series = append(pane.Series, SeriesInfo{Title: el.Title, Points: len(points)})
		}
	}

	// Phase 2: markers against the resolved host.
	if len(pending) > 0 {
		c.attachMarkers(pane, hosts, pending)
	}

	surface.FitContent()
	pane.state = PaneReady

	return pane, nil
}

func (c *Composer) attachMarkers(pane *Pane, hosts []host, pending []Marker) {
	target, ok := selectHost(hosts)
	if !ok {
		target = synthesizeHost(pane.Surface, pending)
		pane.Series = append(pane.Series, SeriesInfo{
			Title:     "markers",
			Points:    target.times.Length(),
			Synthetic: true,
		})
	}

	markers := lo.Filter(pending, func(m Marker, _ int) bool {
		return target.times.InArray(int64(m.Time))
	})
	slices.SortStableFunc(markers, func(a, b Marker) int {
		return compareTime(a.Time, b.Time)
	})

	pane.Dropped = len(pending) - len(markers)
	if pane.Dropped > 0 {
		c.log.Debugf("chart: %s pane dropped %d markers without a plotted time", pane.Kind, pane.Dropped)
	}

	if len(markers) > 0 {
		target.series.SetMarkers(markers)
		pane.Markers = markers
	}
}

// selectHost prefers the first candlestick series, then the first series
func selectHost(hosts []host) (host, bool) {
	if candles, ok := lo.Find(hosts, func(h host) bool { return h.candles }); ok {
		return candles, true
	}
	if len(hosts) > 0 {
		return hosts[0], true
	}
	return host{}, false
}

// synthesizeHost adds an invisible line with one point per marker time
func synthesizeHost(surface Surface, markers []Marker) host {
	points := lo.Map(markers, func(m Marker, _ int) LinePoint {
		return LinePoint{Time: m.Time, Value: 1}
	})
	points = sortDedup(points)

	series := surface.AddLineSeries(LineOptions{
		Color: "transparent",
	})
	series.SetData(points)

	return host{series: series, times: timeSet(points)}
}

func timeSet[P timed](points []P) *set.LinkedHashSetINT64 {
	times := set.NewLinkedHashSetINT64()
	for _, point := range points {
		times.Add(int64(timeOf(point)))
	}
	return times
}

func compareTime(a, b Time) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// InferLogScale reports whether a pane may use a logarithmic price scale:
// some element asks for it and every value feeding the pane is strictly
// positive and finite
func InferLogScale(elements []report.ChartElement) bool {
	if !lo.SomeBy(elements, func(el report.ChartElement) bool { return el.YType == "log" }) {
		return false
	}

	for _, el := range elements {
		for _, values := range [][]float64{el.Y, el.Open, el.High, el.Low, el.Close} {
			for _, v := range values {
				if !isFinite(v) || v <= 0 {
					return false
				}
			}
		}
	}

	return true
}

// LegendItem is one entry of the chart legend
type LegendItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists the drawable elements of a chart group
func Legend(elements []report.ChartElement) []LegendItem {
	drawable := lo.Filter(Visible(elements), func(el report.ChartElement, _ int) bool {
		return !el.IsCandlesSource()
	})

	return lo.Map(drawable, func(el report.ChartElement, _ int) LegendItem {
		color := CandleUpColor
		if el.Kind != "candlestick" {
			color = elementColor(el, 0, DefaultLineColor)
		}
		return LegendItem{
			Key:   el.Title,
			Label: strings.ToLower(strings.ReplaceAll(el.Title, "_", " ")),
			Color: color,
		}
	})
}
