package chart

import (
	"math"
	"strings"
	"time"

	"github.com/raykavin/reportview/pkg/report"
)

// Time is a point on the chart time axis in epoch seconds
type Time int64

// millisecondsThreshold separates epoch seconds from epoch milliseconds
const millisecondsThreshold = 10_000_000_000

// maxSeconds bounds the values that fit a Time
const maxSeconds = float64(math.MaxInt64)

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
	}
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
	}
)

// NormalizeTime converts a raw axis value into epoch seconds. Numbers above
// the milliseconds threshold are read as milliseconds. Strings are parsed
// as calendar dates; date-only strings are UTC and zoneless date-times use
// the local zone.
func NormalizeTime(raw report.RawTime) (Time, bool) {
	if !raw.Valid {
		return 0, false
	}

	if raw.IsNum {
		return numericTime(raw.Num)
	}

	return parseTime(raw.Str)
}

func numericTime(v float64) (Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v > millisecondsThreshold {
		v /= 1000
	}

	seconds := math.Floor(v)
	if seconds >= maxSeconds || seconds < -maxSeconds {
		return 0, false
	}
	return Time(seconds), true
}

func parseTime(s string) (Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t), true
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return fromTime(t), true
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return fromTime(t), true
		}
	}

	return 0, false
}

// fromTime floors sub-second precision like the numeric path does
func fromTime(t time.Time) Time {
	return Time(math.Floor(float64(t.UnixMilli()) / 1000))
}

// TimeRange is the visible window of a time axis
type TimeRange struct {
	From Time `json:"from"`
	To   Time `json:"to"`
}

// IsZero reports whether the range carries no window
func (r TimeRange) IsZero() bool {
	return r.From == 0 && r.To == 0
}
