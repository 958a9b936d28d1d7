// Package storage persists the run history index.
package storage

import (
	"errors"

	"github.com/raykavin/reportview/pkg/report"
)

// ErrRunNotFound is returned when no run matches an id
var ErrRunNotFound = errors.New("run not found")

// RunStorage keeps the latest history scan
type RunStorage interface {
	// ReplaceRuns swaps the stored index for runs
	ReplaceRuns(runs []report.HistoryRun) error
	// Runs lists runs, most recent timestamp first
	Runs() ([]report.HistoryRun, error)
	Run(id string) (report.HistoryRun, error)
	Close() error
}

// runRecord is the persisted form of a history run. Unlike the API shape
// it keeps the path and sort timestamp.
type runRecord struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Title        string          `json:"title"`
	CreationTime string          `json:"creation_time"`
	RunName      string          `json:"run_name"`
	Path         string          `json:"path"`
	Timestamp    string          `json:"timestamp" gorm:"index"`
	Summary      *report.Summary `json:"summary,omitempty" gorm:"serializer:json;type:text"`
}

// TableName implements gorm's tabler
func (runRecord) TableName() string {
	return "history_runs"
}

func toRecord(run report.HistoryRun, _ int) runRecord {
	return runRecord{
		ID:           run.ID,
		Title:        run.Title,
		CreationTime: run.CreationTime,
		RunName:      run.RunName,
		Path:         run.Path,
		Timestamp:    run.Timestamp,
		Summary:      run.Summary,
	}
}

func (r runRecord) run() report.HistoryRun {
	return report.HistoryRun{
		ID:           r.ID,
		Title:        r.Title,
		CreationTime: r.CreationTime,
		RunName:      r.RunName,
		Path:         r.Path,
		Timestamp:    r.Timestamp,
		Summary:      r.Summary,
	}
}
