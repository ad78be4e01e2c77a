/*
Copyright © 2025 the cementflow authors.
This file is part of cementflow.

cementflow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cementflow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cementflow.  If not, see <http://www.gnu.org/licenses/>.
*/

package charts

import (
	"fmt"
	"image/color"
	"io"

	"github.com/spatialmodel/cementflow/flows"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func flowSeries(years []flows.Year, f func(flows.Year) float64) ([]int, []float64) {
	y := make([]int, len(years))
	v := make([]float64, len(years))
	for i, yr := range years {
		y[i] = yr.Year
		v[i] = f(yr)
	}
	return y, v
}

// Consumption draws apparent consumption and production over time.
func Consumption(w io.Writer, years []flows.Year) error {
	if len(years) == 0 {
		return fmt.Errorf("charts: no flow data")
	}
	p := newPlot("US Sand Production vs. Apparent Consumption Over Time", "Year", "Million Metric Tons")
	for i, s := range []struct {
		name string
		f    func(flows.Year) float64
	}{
		{"Apparent Consumption", func(y flows.Year) float64 { return y.Consumption }},
		{"Production", func(y flows.Year) float64 { return y.Production }},
	} {
		if err := addLine(p, s.name, i, yearXYs(flowSeries(years, s.f))); err != nil {
			return err
		}
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return writePlot(w, p, Width, Height)
}

// ConsumptionGap draws the difference between apparent consumption
// and production over time, along with exports and imports.
func ConsumptionGap(w io.Writer, years []flows.Year) error {
	if len(years) == 0 {
		return fmt.Errorf("charts: no flow data")
	}
	p := newPlot("Difference Between Apparent Consumption and Production", "Year", "Consumption minus Production (million metric tons)")
	for i, s := range []struct {
		name string
		f    func(flows.Year) float64
	}{
		{"Consumption - Production", flows.Year.Gap},
		{"Exports", func(y flows.Year) float64 { return y.Exports }},
		{"Imports", func(y flows.Year) float64 { return y.Imports }},
	} {
		if err := addLine(p, s.name, i, yearXYs(flowSeries(years, s.f))); err != nil {
			return err
		}
	}
	zeroLine(p)
	p.Legend.Top = true
	return writePlot(w, p, Width, Height)
}

// Production draws total production in each year.
func Production(w io.Writer, years []int, quantity []float64) error {
	if len(years) == 0 || len(years) != len(quantity) {
		return fmt.Errorf("charts: have %d years and %d production values", len(years), len(quantity))
	}
	p := newPlot("US Sand Production Over Time", "Year", "Quantity (metric tons)")
	if err := addLine(p, "Total US Quantity", 0, yearXYs(years, quantity)); err != nil {
		return err
	}
	p.Legend.Top = true
	return writePlot(w, p, Width, Height)
}

// Sankey draws the flows in one year as a sankey diagram, with link
// widths from flows.Year.Links.
func Sankey(w io.Writer, y flows.Year) error {
	var fs []plotter.Flow
	groups := make(map[string]int)
	for _, l := range y.Links() {
		if !(l.Scaled > 0) {
			continue
		}
		g := fmt.Sprintf("%s to %s: %s", l.Source, l.Target, l.Label())
		groups[g] = len(groups)
		fs = append(fs, plotter.Flow{
			SourceLabel:      l.Source.String(),
			SourceCategory:   0,
			ReceptorLabel:    l.Target.String(),
			ReceptorCategory: 1,
			Value:            l.Scaled,
			Group:            g,
		})
	}
	if len(fs) == 0 {
		return fmt.Errorf("charts: no flows in %d", y.Year)
	}
	s, err := plotter.NewSankey(fs...)
	if err != nil {
		return fmt.Errorf("charts: sankey: %w", err)
	}
	s.FlowStyle = func(group string) (color.Color, draw.LineStyle) {
		c := plotutil.Color(groups[group])
		r, g, b, _ := c.RGBA()
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 110}, draw.LineStyle{}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("US Aggregate Material Flows - %d\nDomestic Extraction: %.1fM tons | Imports: %.1fM tons | Exports: %.1fM tons | Domestic Consumption: %.1fM tons",
		y.Year, y.Production, y.Imports, y.Exports, y.Consumption)
	p.Add(s)
	p.HideY()
	p.NominalX("Supply", "Use")
	labels, thumbs := s.Thumbnailers()
	for i, l := range labels {
		p.Legend.Add(l, thumbs[i])
	}
	p.Legend.Top = true
	return writePlot(w, p, Width, 7*vg.Inch)
}
