package chart

import "errors"

type fakeLine struct {
	options LineOptions
	data    []LinePoint
	markers []Marker
}

func (l *fakeLine) SetData(points []LinePoint)  { l.data = points }
func (l *fakeLine) SetMarkers(markers []Marker) { l.markers = markers }

type fakeCandles struct {
	options CandleOptions
	data    []CandlePoint
	markers []Marker
}

func (c *fakeCandles) SetData(points []CandlePoint) { c.data = points }
func (c *fakeCandles) SetMarkers(markers []Marker)  { c.markers = markers }

type fakeSurface struct {
	options     SurfaceOptions
	lines       []*fakeLine
	candles     []*fakeCandles
	listeners   map[int]func(TimeRange)
	nextID      int
	setRanges   []TimeRange
	fitted      int
	disposed    int
	echoOnWrite bool
}

func newFakeSurface(options SurfaceOptions) *fakeSurface {
	return &fakeSurface{options: options, listeners: map[int]func(TimeRange){}}
}

func (s *fakeSurface) AddLineSeries(options LineOptions) LineSeries {
	line := &fakeLine{options: options}
	s.lines = append(s.lines, line)
	return line
}

func (s *fakeSurface) AddCandlestickSeries(options CandleOptions) CandleSeries {
	candles := &fakeCandles{options: options}
	s.candles = append(s.candles, candles)
	return candles
}

func (s *fakeSurface) FitContent() { s.fitted++ }

func (s *fakeSurface) SubscribeVisibleRangeChange(fn func(TimeRange)) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// SetVisibleRange records the write and, like a real chart, reports it to
// subscribers when echoOnWrite is set
func (s *fakeSurface) SetVisibleRange(r TimeRange) {
	s.setRanges = append(s.setRanges, r)
	if s.echoOnWrite {
		s.emit(r)
	}
}

func (s *fakeSurface) Dispose() { s.disposed++ }

func (s *fakeSurface) emit(r TimeRange) {
	for _, fn := range s.listeners {
		fn(r)
	}
}

// fakeFactory hands out fake surfaces and can fail on the n-th creation
type fakeFactory struct {
	surfaces []*fakeSurface
	failAt   int
}

var errSurface = errors.New("surface unavailable")

func (f *fakeFactory) CreateSurface(options SurfaceOptions) (Surface, error) {
	if f.failAt > 0 && len(f.surfaces)+1 == f.failAt {
		return nil, errSurface
	}
	surface := newFakeSurface(options)
	surface.echoOnWrite = true
	f.surfaces = append(f.surfaces, surface)
	return surface, nil
}
