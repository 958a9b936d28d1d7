package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir_Bundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BundleFilename, `{"meta": {"title": "ETH/USDT"}, "data": `+sampleReport+`}`)

	require.True(t, HasReportData(dir))

	bundle, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, "ETH/USDT", bundle.Meta.Title)
	require.Len(t, bundle.Report.SectionCharts(SectionMainChart), 2)

	meta, err := LoadMeta(dir)
	require.NoError(t, err)
	require.Equal(t, "ETH/USDT", meta.Title)
}

func TestLoadDir_DataAndMeta(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DataFilename, sampleReport)
	writeFile(t, dir, MetaFilename, `{"title": "SOL/USDT", "creation_time": "2024"}`)

	bundle, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, "SOL/USDT", bundle.Meta.Title)
	require.Equal(t, "backtesting", bundle.Report.Name)
}

func TestLoadDir_Empty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MetaFilename, `{}`)

	require.False(t, HasReportData(dir))
	_, err := LoadDir(dir)
	require.ErrorIs(t, err, ErrNoReportData)
}

func TestChartGroups(t *testing.T) {
	r, err := Parse([]byte(sampleReport))
	require.NoError(t, err)

	groups := ChartGroups(r)
	require.Len(t, groups[GroupAll], 2)
	require.Len(t, groups[GroupTradesOrders], 2)
	require.Empty(t, groups[GroupIndicators])
	require.Empty(t, groups[GroupPortfolioHistory])
}

func TestTableElement_WriteCSV(t *testing.T) {
	r, err := Parse([]byte(sampleReport))
	require.NoError(t, err)

	table, ok := r.Table("Trades")
	require.True(t, ok)

	buffer := bytes.NewBuffer(nil)
	require.NoError(t, table.WriteCSV(buffer))
	require.Equal(t, "Side,Price\nbuy,10.5\nsell,\n", buffer.String())
}
