// Package plan implements chart surfaces that record every drawing call.
// The recorded plan is serialized to the browser, where the dashboard
// replays it on lightweight-charts, and range changes travel back over the
// websocket.
package plan

import (
	"sync"

	"github.com/google/uuid"
	"github.com/raykavin/reportview/pkg/chart"
)

// Series types
const (
	TypeLine        = "line"
	TypeCandlestick = "candlestick"
)

// SeriesSpec is the recorded state of one series
type SeriesSpec struct {
	ID      int                  `json:"id"`
	Type    string               `json:"type"`
	Line    *chart.LineOptions   `json:"line,omitempty"`
	Candle  *chart.CandleOptions `json:"candle,omitempty"`
	Points  []chart.LinePoint    `json:"points,omitempty"`
	Candles []chart.CandlePoint  `json:"candles,omitempty"`
	Markers []chart.Marker       `json:"markers,omitempty"`
}

type series struct {
	surface *Surface
	spec    SeriesSpec
}

func (s *series) SetMarkers(markers []chart.Marker) {
	s.surface.mu.Lock()
	defer s.surface.mu.Unlock()
	if !s.surface.disposed {
		s.spec.Markers = markers
	}
}

type lineSeries struct{ *series }

func (l lineSeries) SetData(points []chart.LinePoint) {
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	if !l.surface.disposed {
		l.spec.Points = points
	}
}

type candleSeries struct{ *series }

func (c candleSeries) SetData(points []chart.CandlePoint) {
	c.surface.mu.Lock()
	defer c.surface.mu.Unlock()
	if !c.surface.disposed {
		c.spec.Candles = points
	}
}

// Surface records the series, markers and visible range drawn on it.
// Calls after Dispose are ignored.
type Surface struct {
	mu        sync.Mutex
	id        string
	options   chart.SurfaceOptions
	series    []*series
	visible   chart.TimeRange
	fitted    bool
	disposed  bool
	listeners map[int]func(chart.TimeRange)
	next      int
	onSet     func(chart.TimeRange)
}

// NewSurface creates an empty recording surface
func NewSurface(options chart.SurfaceOptions) *Surface {
	return &Surface{
		id:        uuid.NewString(),
		options:   options,
		listeners: make(map[int]func(chart.TimeRange)),
	}
}

// ID identifies the surface within a session
func (s *Surface) ID() string {
	return s.id
}

// Options returns the options the surface was created with
func (s *Surface) Options() chart.SurfaceOptions {
	return s.options
}

func (s *Surface) add(spec SeriesSpec) *series {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec.ID = len(s.series)
	created := &series{surface: s, spec: spec}
	if !s.disposed {
		s.series = append(s.series, created)
	}
	return created
}

// AddLineSeries implements chart.Surface
func (s *Surface) AddLineSeries(options chart.LineOptions) chart.LineSeries {
	return lineSeries{s.add(SeriesSpec{Type: TypeLine, Line: &options})}
}

// AddCandlestickSeries implements chart.Surface
func (s *Surface) AddCandlestickSeries(options chart.CandleOptions) chart.CandleSeries {
	return candleSeries{s.add(SeriesSpec{Type: TypeCandlestick, Candle: &options})}
}

// FitContent makes the whole data extent visible
func (s *Surface) FitContent() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	extent := s.extentLocked()
	s.fitted = true
	s.visible = extent
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, extent)
}

// Fitted reports whether FitContent ran
func (s *Surface) Fitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fitted
}

// Extent returns the time span covered by every series
func (s *Surface) Extent() chart.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extentLocked()
}

func (s *Surface) extentLocked() chart.TimeRange {
	var (
		extent chart.TimeRange
		found  bool
	)
	grow := func(t chart.Time) {
		if !found {
			extent, found = chart.TimeRange{From: t, To: t}, true
			return
		}
		extent.From = min(extent.From, t)
		extent.To = max(extent.To, t)
	}

	for _, series := range s.series {
		for _, p := range series.spec.Points {
			grow(p.Time)
		}
		for _, c := range series.spec.Candles {
			grow(c.Time)
		}
	}
	return extent
}

// SubscribeVisibleRangeChange implements chart.Surface
func (s *Surface) SubscribeVisibleRangeChange(fn func(chart.TimeRange)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// OnSetVisibleRange registers a hook invoked whenever the range is set
// programmatically, which is how the dashboard forwards synced ranges to
// the browser
func (s *Surface) OnSetVisibleRange(fn func(chart.TimeRange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSet = fn
}

// SetVisibleRange implements chart.Surface. Like a real chart the write is
// reported to range subscribers too.
func (s *Surface) SetVisibleRange(r chart.TimeRange) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.visible = r
	hook := s.onSet
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if hook != nil {
		hook(r)
	}
	notify(listeners, r)
}

// Emit reports a range change made by the user on this surface
func (s *Surface) Emit(r chart.TimeRange) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.visible = r
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, r)
}

// VisibleRange returns the current visible range
func (s *Surface) VisibleRange() chart.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Series returns a snapshot of the recorded series
func (s *Surface) Series() []SeriesSpec {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs := make([]SeriesSpec, 0, len(s.series))
	for _, series := range s.series {
		specs = append(specs, series.spec)
	}
	return specs
}

// Dispose implements chart.Surface
func (s *Surface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposed = true
	s.series = nil
	s.onSet = nil
	clear(s.listeners)
}

// Disposed reports whether the surface was released
func (s *Surface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *Surface) listenersLocked() []func(chart.TimeRange) {
	listeners := make([]func(chart.TimeRange), 0, len(s.listeners))
	for id := 0; id < s.next; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	return listeners
}

func notify(listeners []func(chart.TimeRange), r chart.TimeRange) {
	for _, fn := range listeners {
		fn(r)
	}
}

// Factory creates recording surfaces and remembers them
type Factory struct {
	mu       sync.Mutex
	surfaces []*Surface
}

// CreateSurface implements chart.SurfaceFactory
func (f *Factory) CreateSurface(options chart.SurfaceOptions) (chart.Surface, error) {
	surface := NewSurface(options)

	f.mu.Lock()
	f.surfaces = append(f.surfaces, surface)
	f.mu.Unlock()

	return surface, nil
}

// Surfaces lists every surface created so far, disposed ones included
func (f *Factory) Surfaces() []*Surface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Surface(nil), f.surfaces...)
}
