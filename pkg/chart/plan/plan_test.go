package plan

import (
	"encoding/json"
	"testing"

	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func element(title string, ts ...float64) report.ChartElement {
	el := report.ChartElement{Title: title, Mode: "lines"}
	for i, t := range ts {
		el.X = append(el.X, report.NumTime(t))
		el.Y = append(el.Y, float64(i+1))
	}
	return el
}

func TestSurface_Records(t *testing.T) {
	surface := NewSurface(chart.SurfaceOptions{Height: 200})
	require.NotEmpty(t, surface.ID())

	line := surface.AddLineSeries(chart.LineOptions{Color: "#fff"})
	line.SetData([]chart.LinePoint{{Time: 5, Value: 1}, {Time: 9, Value: 2}})
	line.SetMarkers([]chart.Marker{{Time: 5, Text: "BUY"}})

	candles := surface.AddCandlestickSeries(chart.CandleOptions{UpColor: chart.CandleUpColor})
	candles.SetData([]chart.CandlePoint{{Time: 2, Open: 1, High: 1, Low: 1, Close: 1}})

	series := surface.Series()
	require.Len(t, series, 2)
	require.Equal(t, TypeLine, series[0].Type)
	require.Equal(t, 0, series[0].ID)
	require.Len(t, series[0].Markers, 1)
	require.Equal(t, TypeCandlestick, series[1].Type)
	require.Equal(t, 1, series[1].ID)

	require.Equal(t, chart.TimeRange{From: 2, To: 9}, surface.Extent())
	surface.FitContent()
	require.True(t, surface.Fitted())
	require.Equal(t, chart.TimeRange{From: 2, To: 9}, surface.VisibleRange())
}

func TestSurface_RangeNotifications(t *testing.T) {
	surface := NewSurface(chart.SurfaceOptions{})

	var seen, hooked []chart.TimeRange
	unsubscribe := surface.SubscribeVisibleRangeChange(func(r chart.TimeRange) { seen = append(seen, r) })
	surface.OnSetVisibleRange(func(r chart.TimeRange) { hooked = append(hooked, r) })

	surface.Emit(chart.TimeRange{From: 1, To: 2})
	surface.SetVisibleRange(chart.TimeRange{From: 3, To: 4})

	require.Equal(t, []chart.TimeRange{{From: 1, To: 2}, {From: 3, To: 4}}, seen)
	require.Equal(t, []chart.TimeRange{{From: 3, To: 4}}, hooked)

	unsubscribe()
	surface.Emit(chart.TimeRange{From: 5, To: 6})
	require.Len(t, seen, 2)
	require.Equal(t, chart.TimeRange{From: 5, To: 6}, surface.VisibleRange())
}

func TestSurface_IgnoresCallsAfterDispose(t *testing.T) {
	surface := NewSurface(chart.SurfaceOptions{})
	line := surface.AddLineSeries(chart.LineOptions{})

	var seen int
	surface.SubscribeVisibleRangeChange(func(chart.TimeRange) { seen++ })

	surface.Dispose()
	line.SetData([]chart.LinePoint{{Time: 1, Value: 1}})
	surface.Emit(chart.TimeRange{From: 1, To: 2})
	surface.SetVisibleRange(chart.TimeRange{From: 1, To: 2})
	surface.FitContent()
	surface.AddLineSeries(chart.LineOptions{})

	require.True(t, surface.Disposed())
	require.Zero(t, seen)
	require.Empty(t, surface.Series())
	require.True(t, surface.VisibleRange().IsZero())
}

func TestDescribe_SyncedLayout(t *testing.T) {
	factory := &Factory{}
	composer := chart.NewComposer(factory)

	layout, err := composer.Compose([]report.ChartElement{
		element("price", 1, 2, 3),
		element("RSI(14)", 1, 2, 3),
	}, 400)
	require.NoError(t, err)
	require.Len(t, factory.Surfaces(), 2)

	main := factory.Surfaces()[0]
	indicator := factory.Surfaces()[1]

	var pushed []chart.TimeRange
	indicator.OnSetVisibleRange(func(r chart.TimeRange) { pushed = append(pushed, r) })

	main.Emit(chart.TimeRange{From: 2, To: 3})
	require.Equal(t, []chart.TimeRange{{From: 2, To: 3}}, pushed)
	require.Equal(t, chart.TimeRange{From: 2, To: 3}, indicator.VisibleRange())

	doc := Describe(layout)
	require.False(t, doc.Empty)
	require.Len(t, doc.Panes, 2)
	require.Equal(t, chart.PaneIndicator, doc.Panes[1].Kind)
	require.Equal(t, main.ID(), doc.Panes[0].SurfaceID)
	require.Len(t, doc.Panes[0].Series, 1)
	require.Len(t, doc.Legend, 2)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Equal(t, "indicator", gjson.GetBytes(raw, "panes.1.kind").String())
	require.Equal(t, int64(3), gjson.GetBytes(raw, "panes.0.series.0.points.2.time").Int())
	require.Equal(t, "line", gjson.GetBytes(raw, "panes.0.series.0.type").String())

	layout.Dispose()
	main.Emit(chart.TimeRange{From: 1, To: 3})
	require.Len(t, pushed, 1)
}

func TestDescribe_Empty(t *testing.T) {
	doc := Describe(nil)
	require.True(t, doc.Empty)
	require.NotNil(t, doc.Panes)

	layout, err := chart.NewComposer(&Factory{}).Compose(nil, 360)
	require.NoError(t, err)
	require.True(t, Describe(layout).Empty)
}
