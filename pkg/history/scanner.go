// Package history discovers backtesting runs on disk and serves them as a
// browsable history.
package history

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Directory naming
const (
	DefaultHistoryDir = "backtesting"
	RunDirPrefix      = "backtesting_"
)

var (
	ErrNotFound     = errors.New("history entry not found")
	ErrOutsideRoots = errors.New("history entry outside allowed roots")
)

// Scanner finds report directories under a runs root
type Scanner struct {
	RunsRoot   string
	ReportDir  string
	HistoryDir string
	Log        logger.Logger
}

// NewScanner creates a scanner with the default history directory name
func NewScanner(runsRoot, reportDir string) *Scanner {
	return &Scanner{
		RunsRoot:   runsRoot,
		ReportDir:  reportDir,
		HistoryDir: DefaultHistoryDir,
		Log:        logger.Nop(),
	}
}

func (s *Scanner) log() logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

func (s *Scanner) historyDir() string {
	if s.HistoryDir == "" {
		return DefaultHistoryDir
	}
	return s.HistoryDir
}

// RunDirs lists every backtesting_* directory below the runs root plus the
// current report directory
func (s *Scanner) RunDirs() ([]string, error) {
	var dirs []string

	if s.RunsRoot != "" {
		err := filepath.WalkDir(s.RunsRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == s.RunsRoot {
					return err
				}
				s.log().Debugf("history: skip %s: %v", path, err)
				return nil
			}
			if d.IsDir() && path != s.RunsRoot && strings.HasPrefix(d.Name(), RunDirPrefix) {
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("walk runs root: %w", err)
		}
	}

	if s.ReportDir != "" && !lo.ContainsBy(dirs, func(dir string) bool { return samePath(dir, s.ReportDir) }) {
		dirs = append(dirs, s.ReportDir)
	}

	return dirs, nil
}

// Collect returns every run with report data, most recent timestamp
// first. A run directory is stamped with its creation time, a history
// snapshot with its directory name. Unreadable entries are skipped.
func (s *Scanner) Collect() ([]report.HistoryRun, error) {
	dirs, err := s.RunDirs()
	if err != nil {
		return nil, err
	}

	runs := make([]report.HistoryRun, 0, len(dirs))
	for _, dir := range dirs {
		runName := filepath.Base(dir)

		if report.HasReportData(dir) {
			if run, ok := s.entry(dir, runName, ""); ok {
				runs = append(runs, run)
			}
		}

		snapshots, err := os.ReadDir(filepath.Join(dir, s.historyDir()))
		if err != nil {
			continue
		}
		for _, snapshot := range snapshots {
			path := filepath.Join(dir, s.historyDir(), snapshot.Name())
			if !snapshot.IsDir() || !report.HasReportData(path) {
				continue
			}
			if run, ok := s.entry(path, runName, snapshot.Name()); ok {
				runs = append(runs, run)
			}
		}
	}

	slices.SortStableFunc(runs, func(a, b report.HistoryRun) int {
		return strings.Compare(b.Timestamp, a.Timestamp)
	})

	return runs, nil
}

func (s *Scanner) entry(path, runName, timestamp string) (report.HistoryRun, bool) {
	meta, err := report.LoadMeta(path)
	if err != nil {
		s.log().Debugf("history: skip %s: %v", path, err)
		return report.HistoryRun{}, false
	}

	if timestamp == "" {
		timestamp = meta.CreationTime
	}

	return report.HistoryRun{
		ID:           EncodeID(path),
		Title:        meta.Title,
		CreationTime: meta.CreationTime,
		RunName:      runName,
		Path:         path,
		Timestamp:    timestamp,
		Summary:      meta.Summary,
	}, true
}

// Resolve maps an entry id back to its directory. The directory must exist
// and live under the runs root or the report directory.
func (s *Scanner) Resolve(id string) (string, error) {
	path, err := DecodeID(id)
	if err != nil {
		return "", ErrNotFound
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", ErrNotFound
	}

	allowed := lo.SomeBy([]string{s.RunsRoot, s.ReportDir}, func(root string) bool {
		return root != "" && within(resolved, root)
	})
	if !allowed {
		return "", ErrOutsideRoots
	}

	if info, err := os.Stat(resolved); err != nil || !info.IsDir() {
		return "", ErrNotFound
	}

	return path, nil
}

// ResolveFile returns the path of one report file of an entry
func (s *Scanner) ResolveFile(id, name string) (string, error) {
	if !report.IsReportFile(name) {
		return "", ErrNotFound
	}

	dir, err := s.Resolve(id)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", ErrNotFound
	}

	return path, nil
}

// EncodeID encodes a path as an unpadded URL-safe base64 id
func EncodeID(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}

// DecodeID reverses EncodeID, tolerating padding
func DecodeID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
	if err != nil {
		return "", fmt.Errorf("decode history id: %w", err)
	}
	return string(raw), nil
}

// within reports whether path is root or below it, after resolving links
func within(path, root string) bool {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(realRoot, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
