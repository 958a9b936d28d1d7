package report

// Section names emitted by the backtesting pipeline
const (
	SectionMainChart = "main-chart"
	SectionSubChart  = "sub-chart"
	SectionPortfolio = "backtesting-run-overview"
	SectionTrades    = "list-of-trades-part"
	SectionDetails   = "backtesting-details"
)

// Sub element types
const (
	TypeChart = "chart"
	TypeTable = "table"
	TypeValue = "value"
)

// CandlesSourceTitle marks an element that only carries OHLC context and
// is never drawn itself
const CandlesSourceTitle = "candles_source"

// RawTime is a single entry of a chart element x axis. The engine emits
// either epoch numbers or date strings.
type RawTime struct {
	Num   float64
	Str   string
	IsNum bool
	Valid bool
}

// NumTime builds a numeric raw time
func NumTime(v float64) RawTime {
	return RawTime{Num: v, IsNum: true, Valid: true}
}

// StrTime builds a string raw time
func StrTime(s string) RawTime {
	return RawTime{Str: s, Valid: true}
}

// Style is a scalar-or-per-point string attribute such as color or symbol
type Style struct {
	Scalar string
	Points []string
	Set    bool
}

// At returns the per-point value at index, falling back to the scalar
func (s Style) At(index int) (string, bool) {
	if !s.Set {
		return "", false
	}
	if s.Points == nil {
		return s.Scalar, s.Scalar != ""
	}
	if index >= 0 && index < len(s.Points) && s.Points[index] != "" {
		return s.Points[index], true
	}
	return "", false
}

// ChartElement is one traced series of a chart section
type ChartElement struct {
	Kind      string
	Title     string
	Type      string
	Mode      string
	XType     string
	YType     string
	LineShape string
	HTML      string
	OwnXAxis  bool
	OwnYAxis  bool
	IsHidden  bool
	Opacity   float64

	X      []RawTime
	Y      []float64
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
	Text   []string
	Size   []float64

	Color  Style
	Symbol Style
}

// HasOHLC reports whether the four candle arrays are present
func (e ChartElement) HasOHLC() bool {
	return e.Open != nil && e.High != nil && e.Low != nil && e.Close != nil
}

// IsCandlestick reports whether the element renders as candles
func (e ChartElement) IsCandlestick() bool {
	return e.Kind == "candlestick" || e.HasOHLC()
}

// IsCandlesSource reports whether the element is the OHLC sentinel
func (e ChartElement) IsCandlesSource() bool {
	return e.Title == CandlesSourceTitle
}

// TableColumn describes one column of a table element
type TableColumn struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Attr   string `json:"attr,omitempty"`
	Render string `json:"render,omitempty"`
}

// TableSearch describes a search filter offered on a table
type TableSearch struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// TableElement is a tabular section entry (trades, orders)
type TableElement struct {
	Title    string           `json:"title"`
	Columns  []TableColumn    `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Searches []TableSearch    `json:"searches"`
}

// ValueElement is a scalar KPI
type ValueElement struct {
	Title string `json:"title"`
	Value string `json:"value"`
	HTML  string `json:"html,omitempty"`
}

// SubElement is a named report section
type SubElement struct {
	Name string
	Type string
	Data Data
}

// Data holds nested sections and the section's own elements. Only the
// slice matching the section type is populated.
type Data struct {
	SubElements []SubElement
	Charts      []ChartElement
	Tables      []TableElement
	Values      []ValueElement
}

// Report is the root document produced by the engine
type Report struct {
	Name string
	Type string
	Data Data
}

// Summary holds the headline metrics of a run
type Summary struct {
	Profitability string            `json:"profitability,omitempty"`
	Portfolio     string            `json:"portfolio,omitempty"`
	Metrics       map[string]string `json:"metrics,omitempty"`
}

// Meta describes a report run
type Meta struct {
	Title          string            `json:"title"`
	CreationTime   string            `json:"creation_time"`
	StrategyConfig map[string]string `json:"strategy_config"`
	Symbols        []string          `json:"symbols,omitempty"`
	TimeFrames     []string          `json:"time_frames,omitempty"`
	Exchanges      []string          `json:"exchanges,omitempty"`
	TradingMode    string            `json:"trading_mode,omitempty"`
	Summary        *Summary          `json:"summary,omitempty"`
}

// HistoryRun is one entry of the run history
type HistoryRun struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	CreationTime string   `json:"creation_time"`
	RunName      string   `json:"run_name,omitempty"`
	Path         string   `json:"-"`
	Timestamp    string   `json:"-"`
	Summary      *Summary `json:"summary,omitempty"`
}
