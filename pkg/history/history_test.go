package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/reportview/pkg/report"
	"github.com/raykavin/reportview/pkg/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const data = `{"name": "backtesting", "data": {"sub_elements": []}}`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// layout builds:
//
//	root/backtesting_1/report.json
//	root/backtesting_1/backtesting/1700000100/{report_data,report_meta}.json
//	root/backtesting_1/backtesting/1700000000/ (no data)
//	root/nested/backtesting_2/report_meta.json
//	root/current/report.json
func layout(t *testing.T) (*Scanner, string) {
	t.Helper()
	root := t.TempDir()

	write(t, filepath.Join(root, "backtesting_1", report.BundleFilename),
		`{"meta": {"title": "run one", "creation_time": "2024-01-02"}, "data": `+data+`}`)
	write(t, filepath.Join(root, "backtesting_1", DefaultHistoryDir, "1700000100", report.DataFilename), data)
	write(t, filepath.Join(root, "backtesting_1", DefaultHistoryDir, "1700000100", report.MetaFilename),
		`{"title": "snapshot", "creation_time": "2023-11-14"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "backtesting_1", DefaultHistoryDir, "1700000000"), 0o755))
	write(t, filepath.Join(root, "nested", "backtesting_2", report.MetaFilename), `{"title": "meta only"}`)
	write(t, filepath.Join(root, "current", report.BundleFilename),
		`{"meta": {"title": "current", "creation_time": "2024-05-01", "summary": {"profitability": "3%"}}, "data": `+data+`}`)

	return NewScanner(root, filepath.Join(root, "current")), root
}

func TestScanner_Collect(t *testing.T) {
	scanner, root := layout(t)

	dirs, err := scanner.RunDirs()
	require.NoError(t, err)
	require.Len(t, dirs, 3)

	runs, err := scanner.Collect()
	require.NoError(t, err)
	require.Equal(t, []string{"current", "run one", "snapshot"}, lo.Map(runs, func(r report.HistoryRun, _ int) string {
		return r.Title
	}))

	require.Equal(t, "2024-05-01", runs[0].Timestamp)
	require.Equal(t, "3%", runs[0].Summary.Profitability)
	require.Equal(t, "backtesting_1", runs[2].RunName)
	require.Equal(t, "1700000100", runs[2].Timestamp)
	require.Equal(t, EncodeID(filepath.Join(root, "backtesting_1", DefaultHistoryDir, "1700000100")), runs[2].ID)
}

func TestScanner_MissingRoot(t *testing.T) {
	scanner := NewScanner(filepath.Join(t.TempDir(), "absent"), "")

	runs, err := scanner.Collect()
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestScanner_Resolve(t *testing.T) {
	scanner, root := layout(t)
	run := filepath.Join(root, "backtesting_1")

	id := EncodeID(run)
	require.NotContains(t, id, "=")

	path, err := scanner.Resolve(id)
	require.NoError(t, err)
	require.Equal(t, run, path)

	path, err = scanner.Resolve(id + "==")
	require.NoError(t, err)
	require.Equal(t, run, path)

	_, err = scanner.Resolve(EncodeID(t.TempDir()))
	require.ErrorIs(t, err, ErrOutsideRoots)

	_, err = scanner.Resolve(EncodeID(root + "_sibling"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = scanner.Resolve(EncodeID(filepath.Join(root, "missing")))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = scanner.Resolve("***")
	require.ErrorIs(t, err, ErrNotFound)

	file, err := scanner.ResolveFile(id, report.BundleFilename)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(run, report.BundleFilename), file)

	_, err = scanner.ResolveFile(id, report.DataFilename)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = scanner.ResolveFile(id, "../../etc/passwd")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScanner_Clear(t *testing.T) {
	scanner, root := layout(t)

	result, err := scanner.Clear()
	require.NoError(t, err)
	require.Equal(t, ClearResult{HistoryDirs: 1, RunReports: 2}, result)

	require.NoDirExists(t, filepath.Join(root, "backtesting_1", DefaultHistoryDir))
	require.NoFileExists(t, filepath.Join(root, "backtesting_1", report.BundleFilename))
	require.NoFileExists(t, filepath.Join(root, "nested", "backtesting_2", report.MetaFilename))
	require.FileExists(t, filepath.Join(root, "current", report.BundleFilename))

	runs, err := scanner.Collect()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "current", runs[0].Title)
}

func TestWatcher_Refresh(t *testing.T) {
	scanner, _ := layout(t)
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	watcher := NewWatcher(scanner, store)
	runs, err := watcher.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 3)

	stored, err := store.Runs()
	require.NoError(t, err)
	require.Equal(t, "current", stored[0].Title)
}

func TestWatcher_RetriesFailedScan(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	watcher := NewWatcher(NewScanner("", ""), store, WithBackoff(time.Millisecond, 5*time.Millisecond), WithMaxAttempts(3))

	calls := 0
	watcher.collect = func() ([]report.HistoryRun, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("disk busy")
		}
		return []report.HistoryRun{{ID: "x", Timestamp: "1"}}, nil
	}

	runs, err := watcher.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, 3, calls)

	calls = -10
	_, err = watcher.Refresh(context.Background())
	require.Error(t, err)
	require.Equal(t, -7, calls)
}

func TestWatcher_StartStop(t *testing.T) {
	scanner, _ := layout(t)
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := NewWatcher(scanner, store, WithSchedule("@every 1h"))
	require.NoError(t, watcher.Start(ctx))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	watcher.Stop()
	watcher.Stop()

	bad := NewWatcher(scanner, store, WithSchedule("not a schedule"))
	require.Error(t, bad.Start(ctx))
}
