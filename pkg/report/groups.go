package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// Chart groups offered by the dashboard
const (
	GroupAll              = "all"
	GroupTradesOrders     = "tradesOrders"
	GroupIndicators       = "indicators"
	GroupPortfolioHistory = "portfolioHistory"
)

// Section returns the top level section with the given name
func (r *Report) Section(name string) (SubElement, bool) {
	return lo.Find(r.Data.SubElements, func(el SubElement) bool {
		return el.Name == name
	})
}

// SectionCharts returns the chart elements of a chart section
func (r *Report) SectionCharts(name string) []ChartElement {
	section, ok := r.Section(name)
	if !ok || section.Type != TypeChart {
		return nil
	}
	return section.Data.Charts
}

// Tables returns every table element of the trades section
func (r *Report) Tables() []TableElement {
	section, ok := r.Section(SectionTrades)
	if !ok || section.Type != TypeTable {
		return nil
	}
	return section.Data.Tables
}

// Table returns the trades table with the given title
func (r *Report) Table(title string) (TableElement, bool) {
	return lo.Find(r.Tables(), func(t TableElement) bool {
		return t.Title == title
	})
}

// ChartGroups splits the chart sections into dashboard groups. A section
// only contributes when at least one of its elements carries an x axis.
func ChartGroups(r *Report) map[string][]ChartElement {
	withData := func(name string) []ChartElement {
		elements := r.SectionCharts(name)
		if lo.SomeBy(elements, func(el ChartElement) bool { return el.X != nil }) {
			return elements
		}
		return nil
	}

	main := withData(SectionMainChart)
	sub := withData(SectionSubChart)
	portfolio := withData(SectionPortfolio)

	all := make([]ChartElement, 0, len(main)+len(sub)+len(portfolio))
	all = append(all, main...)
	all = append(all, sub...)
	all = append(all, portfolio...)

	return map[string][]ChartElement{
		GroupAll:              all,
		GroupTradesOrders:     main,
		GroupIndicators:       sub,
		GroupPortfolioHistory: portfolio,
	}
}

// WriteCSV writes the table as CSV: one header row of column labels, then
// one row per table row in column order
func (t TableElement) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := lo.Map(t.Columns, func(c TableColumn, _ int) string {
		if c.Label != "" {
			return c.Label
		}
		return c.Field
	})
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := lo.Map(t.Columns, func(c TableColumn, _ int) string {
			value, ok := row[c.Field]
			if !ok || value == nil {
				return ""
			}
			return fmt.Sprint(value)
		})
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
