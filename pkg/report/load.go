package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Files written by the engine for every run
const (
	DataFilename   = "report_data.json"
	MetaFilename   = "report_meta.json"
	BundleFilename = "report.json"
)

// ErrNoReportData is returned when a directory holds no report files
var ErrNoReportData = errors.New("no report data")

// Bundle is a loaded run: its meta and its report document
type Bundle struct {
	Meta   Meta
	Report *Report
}

// IsReportFile reports whether name is one of the files a run may expose
func IsReportFile(name string) bool {
	return name == DataFilename || name == MetaFilename || name == BundleFilename
}

// HasReportData reports whether dir holds a bundle or a data+meta pair
func HasReportData(dir string) bool {
	if isFile(filepath.Join(dir, BundleFilename)) {
		return true
	}
	return isFile(filepath.Join(dir, MetaFilename)) && isFile(filepath.Join(dir, DataFilename))
}

// LoadMeta reads only the meta of the run stored in dir
func LoadMeta(dir string) (Meta, error) {
	if content, err := os.ReadFile(filepath.Join(dir, MetaFilename)); err == nil {
		return ParseMeta(content)
	}

	content, err := os.ReadFile(filepath.Join(dir, BundleFilename))
	if err != nil {
		return Meta{}, fmt.Errorf("read meta of %s: %w", dir, err)
	}

	meta := gjson.GetBytes(content, "meta")
	if !meta.IsObject() {
		return Meta{}, nil
	}
	return parseMeta(meta), nil
}

// LoadDir reads the run stored in dir, preferring the bundle file
func LoadDir(dir string) (*Bundle, error) {
	if content, err := os.ReadFile(filepath.Join(dir, BundleFilename)); err == nil {
		return parseBundle(content)
	}

	if !HasReportData(dir) {
		return nil, fmt.Errorf("load %s: %w", dir, ErrNoReportData)
	}

	data, err := os.ReadFile(filepath.Join(dir, DataFilename))
	if err != nil {
		return nil, fmt.Errorf("read report data: %w", err)
	}

	report, err := Parse(data)
	if err != nil {
		return nil, err
	}

	meta, err := LoadMeta(dir)
	if err != nil {
		return nil, err
	}

	return &Bundle{Meta: meta, Report: report}, nil
}

func parseBundle(content []byte) (*Bundle, error) {
	root := gjson.ParseBytes(content)
	if !root.IsObject() {
		return nil, fmt.Errorf("parse bundle: %w", ErrInvalidReport)
	}

	bundle := &Bundle{Report: &Report{}}
	if meta := root.Get("meta"); meta.IsObject() {
		bundle.Meta = parseMeta(meta)
	}

	if data := root.Get("data"); data.IsObject() {
		report, err := Parse([]byte(data.Raw))
		if err != nil {
			return nil, err
		}
		bundle.Report = report
	}

	return bundle, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
