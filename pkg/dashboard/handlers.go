package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/chart/plan"
	"github.com/raykavin/reportview/pkg/history"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
)

// errNotFound is answered with a 404
var errNotFound = errors.New("not found")

// clearResponse is the body of POST /history-clear
type clearResponse struct {
	Cleared            int                 `json:"cleared"`
	ClearedHistoryDirs int                 `json:"cleared_history_dirs"`
	ClearedRunReports  int                 `json:"cleared_run_reports"`
	History            []report.HistoryRun `json:"history"`
}

// handleHealth handles health check requests
func (d *Dashboard) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleIndex handles the main page request
func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	run := r.URL.Query().Get("run")
	title, tables := "Backtesting report", []string{}
	if bundle, err := d.loadRun(run); err == nil {
		if bundle.Meta.Title != "" {
			title = bundle.Meta.Title
		}
		tables = lo.Map(bundle.Report.Tables(), func(t report.TableElement, _ int) string { return t.Title })
	}

	w.Header().Set("Content-Type", "text/html")
	err := d.indexHTML.Execute(w, map[string]any{
		"title":  title,
		"run":    run,
		"height": d.height,
		"tables": tables,
		"groups": []string{report.GroupAll, report.GroupTradesOrders, report.GroupIndicators, report.GroupPortfolioHistory},
	})
	if err != nil {
		d.log.Error("Template execution failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleScript serves the transpiled dashboard script
func (d *Dashboard) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprint(w, d.scriptContent)
}

// handleHistory lists the runs, rescanning the disk first
func (d *Dashboard) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := d.history(r)
	if err != nil {
		d.fail(w, err)
		return
	}
	d.writeJSON(w, runs)
}

func (d *Dashboard) history(r *http.Request) ([]report.HistoryRun, error) {
	runs, err := d.watcher.Refresh(r.Context())
	if err == nil {
		return runs, nil
	}

	d.log.WithError(err).Warn("dashboard: history rescan failed, serving stored index")
	return d.store.Runs()
}

// handleHistoryFile serves one raw report file of a run
func (d *Dashboard) handleHistoryFile(w http.ResponseWriter, r *http.Request) {
	path, err := d.scanner.ResolveFile(chi.URLParam(r, "id"), chi.URLParam(r, "file"))
	if err != nil {
		d.fail(w, err)
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		d.fail(w, errNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	if _, err := w.Write(content); err != nil {
		d.log.Error("Failed writing report file: ", err)
	}
}

// handleHistoryClear removes past runs and returns the refreshed history
func (d *Dashboard) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	result, err := d.scanner.Clear()
	if err != nil {
		d.log.WithError(err).Warn("dashboard: history clear incomplete")
	}

	runs, err := d.history(r)
	if err != nil {
		d.fail(w, err)
		return
	}

	d.writeJSON(w, clearResponse{
		Cleared:            result.HistoryDirs,
		ClearedHistoryDirs: result.HistoryDirs,
		ClearedRunReports:  result.RunReports,
		History:            runs,
	})
}

// handleCharts composes a chart group and returns its drawing plan
func (d *Dashboard) handleCharts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	elements, group, err := d.groupElements(query.Get("run"), query.Get("group"))
	if err != nil {
		d.fail(w, err)
		return
	}

	layout, err := d.newComposer(&plan.Factory{}).Compose(elements, d.parseHeight(query.Get("height")))
	if err != nil {
		d.fail(w, err)
		return
	}
	defer layout.Dispose()

	doc := plan.Describe(layout)
	doc.Group = group
	d.writeJSON(w, doc)
}

// handleTableCSV handles CSV export of a trades table
func (d *Dashboard) handleTableCSV(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	bundle, err := d.loadRun(query.Get("run"))
	if err != nil {
		d.fail(w, err)
		return
	}

	table, ok := bundle.Report.Table(query.Get("table"))
	if !ok {
		d.fail(w, errNotFound)
		return
	}

	buffer := bytes.NewBuffer(nil)
	if err := table.WriteCSV(buffer); err != nil {
		d.log.Error("Failed writing CSV data: ", err)
		http.Error(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=%q", table.Title+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buffer.Bytes()); err != nil {
		d.log.Error("Failed writing CSV response: ", err)
	}
}

// loadRun loads the run with the given history id, the current report
// when id is empty
func (d *Dashboard) loadRun(id string) (*report.Bundle, error) {
	dir := d.scanner.ReportDir
	if id != "" {
		resolved, err := d.scanner.Resolve(id)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	return report.LoadDir(dir)
}

// groupElements returns the augmented elements of a chart group of a run
func (d *Dashboard) groupElements(run, group string) ([]report.ChartElement, string, error) {
	if group == "" {
		group = report.GroupAll
	}

	bundle, err := d.loadRun(run)
	if err != nil {
		return nil, group, err
	}

	elements, ok := report.ChartGroups(bundle.Report)[group]
	if !ok {
		return nil, group, errNotFound
	}

	return indicator.Augment(elements, d.indicators...), group, nil
}

func (d *Dashboard) parseHeight(raw string) int {
	if height, err := strconv.Atoi(raw); err == nil && height > 0 {
		return height
	}
	return d.height
}

func (d *Dashboard) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		d.log.Error("JSON encoding failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (d *Dashboard) fail(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	d.log.WithError(err).Error("dashboard: request failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func isNotFound(err error) bool {
	return errors.Is(err, errNotFound) ||
		errors.Is(err, history.ErrNotFound) ||
		errors.Is(err, history.ErrOutsideRoots) ||
		errors.Is(err, report.ErrNoReportData) ||
		errors.Is(err, os.ErrNotExist)
}

// paneByKind finds a pane of a layout
func paneByKind(layout *chart.Layout, kind string) *chart.Pane {
	for _, pane := range layout.Panes() {
		if pane.Kind.String() == kind {
			return pane
		}
	}
	return nil
}
