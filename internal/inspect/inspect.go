// Package inspect summarizes a report in the terminal: how every chart
// group composes, the close price statistics and the run history.
package inspect

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/chart/plan"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Groups lists the chart groups in display order
var Groups = []string{
	report.GroupAll,
	report.GroupTradesOrders,
	report.GroupIndicators,
	report.GroupPortfolioHistory,
}

// Options configures Summarize
type Options struct {
	Height     int
	Indicators []indicator.Indicator
	// Progress receives a progress bar, nil disables it
	Progress io.Writer
}

// PaneSummary describes one composed pane
type PaneSummary struct {
	Group    string
	Kind     string
	Height   int
	LogScale bool
	Series   int
	Points   int
	Markers  int
	Dropped  int
}

// CloseStats describes the close prices of the candle source
type CloseStats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary is the composed view of a report
type Summary struct {
	Title string
	Panes []PaneSummary
	Close CloseStats
	// Returns are the candle to candle close changes, in percent
	Returns []float64
	// MeanReturn is the confidence interval of the mean return
	MeanReturn Interval
}

// Summarize composes every chart group on recording surfaces
func Summarize(bundle *report.Bundle, opts Options) (Summary, error) {
	summary := Summary{Title: bundle.Meta.Title}
	groups := report.ChartGroups(bundle.Report)

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(Groups),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Composing chart groups..."),
			progressbar.OptionShowCount(),
		)
	}

	composer := chart.NewComposer(&plan.Factory{})
	for _, group := range Groups {
		elements := indicator.Augment(groups[group], opts.Indicators...)

		layout, err := composer.Compose(elements, opts.Height)
		if err != nil {
			return summary, fmt.Errorf("compose %s: %w", group, err)
		}
		for _, pane := range layout.Panes() {
			summary.Panes = append(summary.Panes, describe(group, pane))
		}
		layout.Dispose()

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if source, ok := indicator.SourceFrom(groups[report.GroupAll]); ok {
		summary.Close = closeStats(source.Close)
		summary.Returns = returns(source.Close)
		summary.MeanReturn = Bootstrap(summary.Returns, Mean, DefaultSamples, DefaultConfidence)
	}

	return summary, nil
}

func describe(group string, pane *chart.Pane) PaneSummary {
	out := PaneSummary{
		Group:    group,
		Kind:     pane.Kind.String(),
		Height:   pane.Height,
		LogScale: pane.LogScale,
		Series:   len(pane.Series),
		Markers:  len(pane.Markers),
		Dropped:  pane.Dropped,
	}
	for _, series := range pane.Series {
		out.Points += series.Points
	}
	return out
}

func closeStats(values []float64) CloseStats {
	if len(values) == 0 {
		return CloseStats{}
	}

	mean, stdDev := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		stdDev = 0
	}
	return CloseStats{
		Count:  len(values),
		Mean:   mean,
		StdDev: stdDev,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}

func returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, (values[i]/values[i-1]-1)*100)
	}
	return out
}

// Render prints the summary as tables followed by a histogram of returns
func Render(w io.Writer, summary Summary) error {
	buffer := bytes.NewBuffer(nil)
	fmt.Fprintf(buffer, "------ %s -------\n", summary.Title)

	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Group", "Pane", "Height", "Log", "Series", "Points", "Markers", "Dropped"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, pane := range summary.Panes {
		table.Append([]string{
			pane.Group,
			pane.Kind,
			strconv.Itoa(pane.Height),
			strconv.FormatBool(pane.LogScale),
			strconv.Itoa(pane.Series),
			strconv.Itoa(pane.Points),
			strconv.Itoa(pane.Markers),
			strconv.Itoa(pane.Dropped),
		})
	}
	table.Render()

	if summary.Close.Count > 0 {
		fmt.Fprintln(buffer, "------ CLOSE -------")
		fmt.Fprintf(buffer, "CANDLES: %d\n", summary.Close.Count)
		fmt.Fprintf(buffer, "MEAN:    %.4f (sd %.4f)\n", summary.Close.Mean, summary.Close.StdDev)
		fmt.Fprintf(buffer, "RANGE:   %.4f ~ %.4f\n", summary.Close.Min, summary.Close.Max)
	}

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return err
	}

	if len(summary.Returns) > 1 {
		fmt.Fprintln(w, "------ RETURN (%) -------")
		hist := histogram.Hist(15, summary.Returns)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			return err
		}

		fmt.Fprintf(w, "------ CONFIDENCE INTERVAL (%.0f%%) -------\n", DefaultConfidence*100)
		fmt.Fprintf(w, "RETURN:  %.2f%% (%.2f%% ~ %.2f%%)\n",
			summary.MeanReturn.Mean, summary.MeanReturn.Lower, summary.MeanReturn.Upper)
	}

	return nil
}

// RenderHistory prints the run history, most recent first
func RenderHistory(w io.Writer, runs []report.HistoryRun) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Title", "Run", "Created", "Profitability", "ID"})
	for _, run := range runs {
		profitability := ""
		if run.Summary != nil {
			profitability = run.Summary.Profitability
		}
		table.Append([]string{run.Title, run.RunName, run.CreationTime, profitability, run.ID})
	}
	table.SetFooter([]string{"TOTAL", strconv.Itoa(len(runs)), "", "", ""})
	table.Render()
}
