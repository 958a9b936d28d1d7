package plan

import (
	"github.com/raykavin/reportview/pkg/chart"
)

// Pane is the serialized form of a composed pane
type Pane struct {
	SurfaceID string             `json:"surface_id,omitempty"`
	Kind      chart.PaneKind     `json:"kind"`
	Height    int                `json:"height"`
	LogScale  bool               `json:"log_scale"`
	Theme     chart.Theme        `json:"theme"`
	Visible   chart.TimeRange    `json:"visible"`
	Dropped   int                `json:"dropped_markers"`
	Info      []chart.SeriesInfo `json:"info"`
	Series    []SeriesSpec       `json:"series"`
}

// Document is everything the browser needs to draw a chart group
type Document struct {
	Group  string             `json:"group,omitempty"`
	Empty  bool               `json:"empty"`
	Panes  []Pane             `json:"panes"`
	Legend []chart.LegendItem `json:"legend"`
}

// Describe serializes a layout. Series payloads are only available for
// panes drawn on recording surfaces.
func Describe(layout *chart.Layout) Document {
	doc := Document{
		Empty:  layout.Empty(),
		Panes:  []Pane{},
		Legend: []chart.LegendItem{},
	}
	if layout == nil {
		return doc
	}
	if layout.Legend != nil {
		doc.Legend = layout.Legend
	}

	for _, pane := range layout.Panes() {
		out := Pane{
			Kind:     pane.Kind,
			Height:   pane.Height,
			LogScale: pane.LogScale,
			Dropped:  pane.Dropped,
			Info:     pane.Series,
			Series:   []SeriesSpec{},
		}

		if surface, ok := pane.Surface.(*Surface); ok {
			out.SurfaceID = surface.ID()
			out.Theme = surface.Options().Theme
			out.Visible = surface.VisibleRange()
			out.Series = surface.Series()
		}

		doc.Panes = append(doc.Panes, out)
	}

	return doc
}
