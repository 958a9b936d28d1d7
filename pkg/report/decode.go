package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// ErrInvalidReport is returned when a document is not a JSON object
var ErrInvalidReport = errors.New("invalid report document")

// Parse decodes a report data document. Loosely typed fields are
// normalized: numeric arrays carry NaN for null or non-numeric entries,
// x entries keep their number or string form.
func Parse(data []byte) (*Report, error) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("parse report: %w", ErrInvalidReport)
	}

	return &Report{
		Name: root.Get("name").String(),
		Type: root.Get("type").String(),
		Data: parseData(root.Get("data"), ""),
	}, nil
}

// ParseMeta decodes a report meta document
func ParseMeta(data []byte) (Meta, error) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Meta{}, fmt.Errorf("parse meta: %w", ErrInvalidReport)
	}
	return parseMeta(root), nil
}

func parseMeta(v gjson.Result) Meta {
	meta := Meta{
		Title:          v.Get("title").String(),
		CreationTime:   v.Get("creation_time").String(),
		StrategyConfig: parseStringMap(v.Get("strategy_config")),
		Symbols:        parseStrings(v.Get("symbols")),
		TimeFrames:     parseStrings(v.Get("time_frames")),
		Exchanges:      parseStrings(v.Get("exchanges")),
		TradingMode:    v.Get("trading_mode").String(),
	}

	if summary := v.Get("summary"); summary.IsObject() {
		meta.Summary = &Summary{
			Profitability: summary.Get("profitability").String(),
			Portfolio:     summary.Get("portfolio").String(),
			Metrics:       parseStringMap(summary.Get("metrics")),
		}
	}

	return meta
}

func parseData(v gjson.Result, sectionType string) Data {
	var data Data

	for _, sub := range v.Get("sub_elements").Array() {
		element := SubElement{
			Name: sub.Get("name").String(),
			Type: sub.Get("type").String(),
		}
		element.Data = parseData(sub.Get("data"), element.Type)
		data.SubElements = append(data.SubElements, element)
	}

	elements := v.Get("elements").Array()
	switch sectionType {
	case TypeChart:
		for _, el := range elements {
			data.Charts = append(data.Charts, parseChartElement(el))
		}
	case TypeTable:
		for _, el := range elements {
			data.Tables = append(data.Tables, parseTableElement(el))
		}
	case TypeValue:
		for _, el := range elements {
			data.Values = append(data.Values, ValueElement{
				Title: el.Get("title").String(),
				Value: el.Get("value").String(),
				HTML:  el.Get("html").String(),
			})
		}
	}

	return data
}

func parseChartElement(v gjson.Result) ChartElement {
	el := ChartElement{
		Kind:      v.Get("kind").String(),
		Title:     v.Get("title").String(),
		Type:      v.Get("type").String(),
		Mode:      v.Get("mode").String(),
		XType:     v.Get("x_type").String(),
		YType:     v.Get("y_type").String(),
		LineShape: v.Get("line_shape").String(),
		HTML:      v.Get("html").String(),
		OwnXAxis:  v.Get("own_xaxis").Bool(),
		OwnYAxis:  v.Get("own_yaxis").Bool(),
		IsHidden:  v.Get("is_hidden").Bool(),
		Opacity:   1,

		X:      parseTimes(v.Get("x")),
		Y:      parseNumbers(v.Get("y")),
		Open:   parseNumbers(v.Get("open")),
		High:   parseNumbers(v.Get("high")),
		Low:    parseNumbers(v.Get("low")),
		Close:  parseNumbers(v.Get("close")),
		Volume: parseNumbers(v.Get("volume")),
		Text:   parseStrings(v.Get("text")),
		Color:  parseStyle(v.Get("color")),
		Symbol: parseStyle(v.Get("symbol")),
	}

	if opacity := v.Get("opacity"); opacity.Type == gjson.Number {
		el.Opacity = opacity.Float()
	}

	size := v.Get("size")
	switch {
	case size.IsArray():
		el.Size = parseNumbers(size)
	case size.Type == gjson.Number:
		el.Size = []float64{size.Float()}
	}

	return el
}

func parseTableElement(v gjson.Result) TableElement {
	table := TableElement{
		Title: v.Get("title").String(),
	}

	for _, column := range v.Get("columns").Array() {
		table.Columns = append(table.Columns, TableColumn{
			Field:  column.Get("field").String(),
			Label:  column.Get("label").String(),
			Attr:   column.Get("attr").String(),
			Render: column.Get("render").String(),
		})
	}

	for _, search := range v.Get("searches").Array() {
		table.Searches = append(table.Searches, TableSearch{
			Field: search.Get("field").String(),
			Label: search.Get("label").String(),
			Type:  search.Get("type").String(),
		})
	}

	for _, row := range v.Get("rows").Array() {
		if values, ok := row.Value().(map[string]any); ok {
			table.Rows = append(table.Rows, values)
		}
	}

	return table
}

// parseTimes returns nil when the field is absent or null
func parseTimes(v gjson.Result) []RawTime {
	if !v.IsArray() {
		return nil
	}

	items := v.Array()
	times := make([]RawTime, len(items))
	for i, item := range items {
		switch item.Type {
		case gjson.Number:
			times[i] = NumTime(item.Float())
		case gjson.String:
			times[i] = StrTime(item.String())
		}
	}
	return times
}

// parseNumbers returns nil when the field is absent or null
func parseNumbers(v gjson.Result) []float64 {
	if !v.IsArray() {
		return nil
	}

	items := v.Array()
	values := make([]float64, len(items))
	for i, item := range items {
		if item.Type == gjson.Number {
			values[i] = item.Float()
			continue
		}
		values[i] = math.NaN()
	}
	return values
}

func parseStrings(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}

	items := v.Array()
	values := make([]string, len(items))
	for i, item := range items {
		if item.Type != gjson.Null {
			values[i] = item.String()
		}
	}
	return values
}

func parseStyle(v gjson.Result) Style {
	switch {
	case v.Type == gjson.String:
		return Style{Scalar: v.String(), Set: true}
	case v.IsArray():
		points := make([]string, 0)
		for _, item := range v.Array() {
			if item.Type == gjson.String {
				points = append(points, item.String())
				continue
			}
			points = append(points, "")
		}
		return Style{Points: points, Set: true}
	default:
		return Style{}
	}
}

func parseStringMap(v gjson.Result) map[string]string {
	values := make(map[string]string)
	v.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value.String()
		return true
	})
	return values
}
