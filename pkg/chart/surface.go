package chart

// Theme holds the colors applied to a chart surface
type Theme struct {
	Background string `json:"background"`
	Grid       string `json:"grid"`
	Text       string `json:"text"`
}

// DefaultTheme is the dark dashboard palette
var DefaultTheme = Theme{
	Background: "#071633",
	Grid:       "#2a2e39",
	Text:       "#b2b5be",
}

// Candle colors
const (
	CandleUpColor   = "#18b07a"
	CandleDownColor = "#f6465d"
)

// DefaultLineColor is used when an element declares no color
const DefaultLineColor = "#a78bfa"

// SurfaceOptions configures a new chart surface
type SurfaceOptions struct {
	Height   int   `json:"height"`
	LogScale bool  `json:"log_scale"`
	Theme    Theme `json:"theme"`
}

// LineOptions configures a line series
type LineOptions struct {
	Color            string `json:"color"`
	LineWidth        int    `json:"line_width"`
	LineVisible      bool   `json:"line_visible"`
	PriceLineVisible bool   `json:"price_line_visible"`
	LastValueVisible bool   `json:"last_value_visible"`
}

// CandleOptions configures a candlestick series
type CandleOptions struct {
	UpColor          string `json:"up_color"`
	DownColor        string `json:"down_color"`
	BorderVisible    bool   `json:"border_visible"`
	PriceLineVisible bool   `json:"price_line_visible"`
}

// MarkerHost is a series able to carry markers
type MarkerHost interface {
	SetMarkers(markers []Marker)
}

// LineSeries is a line series handle
type LineSeries interface {
	MarkerHost
	SetData(points []LinePoint)
}

// CandleSeries is a candlestick series handle
type CandleSeries interface {
	MarkerHost
	SetData(points []CandlePoint)
}

// Surface is one chart drawing area with its own time axis
type Surface interface {
	AddLineSeries(options LineOptions) LineSeries
	AddCandlestickSeries(options CandleOptions) CandleSeries
	FitContent()
	// SubscribeVisibleRangeChange registers fn for every visible range
	// change and returns a function removing the subscription
	SubscribeVisibleRangeChange(fn func(TimeRange)) func()
	SetVisibleRange(r TimeRange)
	Dispose()
}

// SurfaceFactory creates chart surfaces
type SurfaceFactory interface {
	CreateSurface(options SurfaceOptions) (Surface, error)
}

// SurfaceFactoryFunc adapts a function to a SurfaceFactory
type SurfaceFactoryFunc func(options SurfaceOptions) (Surface, error)

// CreateSurface implements SurfaceFactory
func (f SurfaceFactoryFunc) CreateSurface(options SurfaceOptions) (Surface, error) {
	return f(options)
}
