package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/history"
	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const currentReport = `{
  "meta": {"title": "BTC/USDT", "creation_time": "2024-05-01"},
  "data": {
    "name": "backtesting",
    "data": {
      "sub_elements": [
        {
          "name": "main-chart",
          "type": "chart",
          "data": {
            "elements": [
              {
                "kind": "candlestick",
                "title": "price",
                "x": [1700000000, 1700000060, 1700000120],
                "open": [10, 11, 12], "high": [12, 13, 14], "low": [9, 10, 11], "close": [11, 12, 13]
              },
              {
                "kind": "scatter",
                "title": "RSI(14)",
                "mode": "lines",
                "x": [1700000000, 1700000060, 1700000120],
                "y": [40, 55, 70]
              },
              {
                "kind": "scatter",
                "title": "trades",
                "mode": "markers",
                "x": [1700000060, 1700000999],
                "y": [11, 12],
                "text": ["BUY", "SELL"]
              }
            ]
          }
        },
        {
          "name": "list-of-trades-part",
          "type": "table",
          "data": {
            "elements": [
              {
                "title": "Trades",
                "columns": [{"field": "side", "label": "Side"}, {"field": "price", "label": "Price"}],
                "rows": [{"side": "buy", "price": 10.5}]
              }
            ]
          }
        }
      ]
    }
  }
}`

const pastReport = `{"meta": {"title": "past run", "creation_time": "2024-01-02"}, "data": {"name": "backtesting", "data": {"sub_elements": []}}}`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type fixture struct {
	root      string
	current   string
	dashboard *Dashboard
	server    *httptest.Server
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()

	root := t.TempDir()
	current := filepath.Join(root, "current")
	write(t, filepath.Join(current, report.BundleFilename), currentReport)
	write(t, filepath.Join(root, "backtesting_1", report.BundleFilename), pastReport)
	write(t, filepath.Join(root, "backtesting_1", history.DefaultHistoryDir, "1700000100", report.BundleFilename), pastReport)

	d, err := New(logger.Nop(), history.NewScanner(root, current), append([]Option{WithDebug()}, options...)...)
	require.NoError(t, err)

	server := httptest.NewServer(d.Handler())
	t.Cleanup(func() {
		server.Close()
		require.NoError(t, d.Close())
	})

	return &fixture{root: root, current: current, dashboard: d, server: server}
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestDashboard_Pages(t *testing.T) {
	f := newFixture(t)

	status, _ := f.get(t, "/health")
	require.Equal(t, http.StatusOK, status)

	status, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "<title>BTC/USDT</title>")
	require.Contains(t, body, `data-group="tradesOrders"`)
	require.Contains(t, body, "Download Trades (CSV)")

	status, body = f.get(t, "/assets/js/main.js")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "setVisibleRange")
	require.Contains(t, body, "isEcho")
	require.NotContains(t, body, "setTimeout")

	status, _ = f.get(t, "/assets/css/main.css")
	require.Equal(t, http.StatusOK, status)
}

func TestDashboard_History(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/history.json")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(3), gjson.Get(body, "#").Int())
	require.Equal(t, "BTC/USDT", gjson.Get(body, "0.title").String())
	require.Equal(t, "current", gjson.Get(body, "0.run_name").String())

	runs, err := f.dashboard.store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func TestDashboard_HistoryFile(t *testing.T) {
	f := newFixture(t)
	id := history.EncodeID(f.current)

	status, body := f.get(t, "/history/"+id+"/"+report.BundleFilename)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "main-chart")

	status, _ = f.get(t, "/history/"+id+"/secret.txt")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.get(t, "/history/"+id+"/"+report.MetaFilename)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.get(t, "/history/not-base64!/"+report.BundleFilename)
	require.Equal(t, http.StatusNotFound, status)

	outside := t.TempDir()
	write(t, filepath.Join(outside, report.BundleFilename), pastReport)
	status, _ = f.get(t, "/history/"+history.EncodeID(outside)+"/"+report.BundleFilename)
	require.Equal(t, http.StatusNotFound, status)
}

func TestDashboard_HistoryClear(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/history-clear", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, int64(1), gjson.GetBytes(body, "cleared").Int())
	require.Equal(t, int64(1), gjson.GetBytes(body, "cleared_history_dirs").Int())
	require.Equal(t, int64(1), gjson.GetBytes(body, "cleared_run_reports").Int())
	require.Equal(t, int64(1), gjson.GetBytes(body, "history.#").Int())
	require.Equal(t, "BTC/USDT", gjson.GetBytes(body, "history.0.title").String())

	require.FileExists(t, filepath.Join(f.current, report.BundleFilename))
	require.NoFileExists(t, filepath.Join(f.root, "backtesting_1", report.BundleFilename))
}

func TestDashboard_Charts(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/charts")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "all", gjson.Get(body, "group").String())
	require.False(t, gjson.Get(body, "empty").Bool())
	require.Equal(t, int64(2), gjson.Get(body, "panes.#").Int())

	main := gjson.Get(body, "panes.0")
	require.Equal(t, "main", main.Get("kind").String())
	require.Equal(t, int64(253), main.Get("height").Int())
	require.Equal(t, "candlestick", main.Get("series.0.type").String())
	require.Equal(t, int64(1), main.Get("series.0.markers.#").Int())
	require.Equal(t, int64(1700000060), main.Get("series.0.markers.0.time").Int())
	require.Equal(t, int64(1), main.Get("dropped_markers").Int())

	indicator := gjson.Get(body, "panes.1")
	require.Equal(t, "indicator", indicator.Get("kind").String())
	require.Equal(t, int64(99), indicator.Get("height").Int())
	require.Equal(t, "line", indicator.Get("series.0.type").String())

	status, body = f.get(t, "/charts?group=tradesOrders&height=500")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(354), gjson.Get(body, "panes.0.height").Int())

	status, body = f.get(t, "/charts?group=portfolioHistory")
	require.Equal(t, http.StatusOK, status)
	require.True(t, gjson.Get(body, "empty").Bool())
	require.Equal(t, int64(0), gjson.Get(body, "panes.#").Int())

	status, _ = f.get(t, "/charts?group=unknown")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.get(t, "/charts?run=bWlzc2luZw")
	require.Equal(t, http.StatusNotFound, status)
}

func TestDashboard_TableCSV(t *testing.T) {
	f := newFixture(t)

	status, body := f.get(t, "/tables.csv?table=Trades")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Side,Price\nbuy,10.5\n", body)

	status, _ = f.get(t, "/tables.csv?table=Orders")
	require.Equal(t, http.StatusNotFound, status)
}

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestDashboard_WebSocketSync(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?group=all"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, MessageLayout, msg.Type)
	require.NotEmpty(t, gjson.GetBytes(msg.Payload, "session").String())
	require.Equal(t, int64(2), gjson.GetBytes(msg.Payload, "panes.#").Int())
	require.Equal(t, 1, f.dashboard.Sessions().Count())

	scrolled := chart.TimeRange{From: 1700000060, To: 1700000120}
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageRange, Pane: "main", Range: scrolled}))

	msg = readMessage(t, conn)
	require.Equal(t, MessageSetVisibleRange, msg.Type)

	var payload RangePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, RangePayload{Pane: "indicator", Range: scrolled}, payload)

	// an empty range is not propagated, the next message is the render
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageRange, Pane: "indicator"}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageRender, Group: report.GroupTradesOrders, Height: 500}))

	msg = readMessage(t, conn)
	require.Equal(t, MessageLayout, msg.Type)
	require.Equal(t, report.GroupTradesOrders, gjson.GetBytes(msg.Payload, "group").String())
	require.Equal(t, int64(354), gjson.GetBytes(msg.Payload, "panes.0.height").Int())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return f.dashboard.Sessions().Count() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDashboard_WebSocketUnknownRun(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?run=bWlzc2luZw"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, MessageError, msg.Type)
	require.Equal(t, "Not Found", gjson.GetBytes(msg.Payload, "message").String())
}

// brokenIndicator panics while computing, like talib on a bad period
type brokenIndicator struct{}

func (brokenIndicator) Name() string  { return "broken" }
func (brokenIndicator) Overlay() bool { return true }
func (brokenIndicator) Warmup() int   { return 0 }
func (brokenIndicator) Elements(indicator.Source) []report.ChartElement {
	var values []float64
	_ = values[len(values)-1]
	return nil
}

func TestDashboard_WebSocketRenderPanic(t *testing.T) {
	f := newFixture(t, WithIndicators(brokenIndicator{}))

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?group=all"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, MessageError, msg.Type)
	require.Equal(t, "Internal server error", gjson.GetBytes(msg.Payload, "message").String())

	// the session survives and answers the next render
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageRender, Group: report.GroupTradesOrders, Height: 500}))
	msg = readMessage(t, conn)
	require.Equal(t, MessageError, msg.Type)
	require.Equal(t, 1, f.dashboard.Sessions().Count())
}

func TestDashboard_ChartsInvalidIndicatorPeriod(t *testing.T) {
	f := newFixture(t, WithIndicators(indicator.SMA(0, "")))

	status, body := f.get(t, "/charts?group=all")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(2), gjson.Get(body, "panes.#").Int())
}
