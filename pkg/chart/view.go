package chart

import "github.com/raykavin/reportview/pkg/report"

// View owns the layout drawn into one container. Every render tears the
// previous layout down before composing the next one.
type View struct {
	composer *Composer
	layout   *Layout
	renders  int
}

// NewView creates an empty view
func NewView(composer *Composer) *View {
	return &View{composer: composer}
}

// Render disposes the current layout and composes elements from scratch
func (v *View) Render(elements []report.ChartElement, height int) (*Layout, error) {
	v.Dispose()

	layout, err := v.composer.Compose(elements, height)
	v.layout = layout
	v.renders++

	return layout, err
}

// Layout returns the layout of the last render, nil before the first one
func (v *View) Layout() *Layout {
	return v.layout
}

// Renders counts the renders performed so far
func (v *View) Renders() int {
	return v.renders
}

// Dispose releases the current layout
func (v *View) Dispose() {
	if v.layout != nil {
		v.layout.Dispose()
		v.layout = nil
	}
}
