package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raykavin/reportview/pkg/report"
)

// ClearResult counts what Clear removed
type ClearResult struct {
	HistoryDirs int `json:"cleared_history_dirs"`
	RunReports  int `json:"cleared_run_reports"`
}

// Clear deletes every history directory and the report files of every run
// except the current one. Removal failures are joined into the returned
// error; the counts always reflect what was removed.
func (s *Scanner) Clear() (ClearResult, error) {
	var result ClearResult

	dirs, err := s.RunDirs()
	if err != nil {
		return result, err
	}

	var errs []error
	for _, dir := range dirs {
		historyRoot := filepath.Join(dir, s.historyDir())
		if info, err := os.Stat(historyRoot); err == nil && info.IsDir() {
			if err := os.RemoveAll(historyRoot); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", historyRoot, err))
			} else {
				result.HistoryDirs++
			}
		}

		if samePath(dir, s.ReportDir) {
			continue
		}

		removed := false
		for _, name := range []string{report.BundleFilename, report.DataFilename, report.MetaFilename} {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				continue
			}
			if err := os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			removed = true
		}
		if removed {
			result.RunReports++
		}
	}

	s.log().Infof("history: cleared %d history dirs and %d run reports", result.HistoryDirs, result.RunReports)

	return result, errors.Join(errs...)
}
