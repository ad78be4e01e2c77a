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

// Package charts draws PNG charts of stock model results, regional
// stock allocations, and national aggregate flows.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/spatialmodel/cementflow"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI is the resolution of the PNG images.
const DPI = 96

// Sizes of the images.
const (
	TiledWidth  = 14 * vg.Inch
	TiledHeight = 10 * vg.Inch
	Width       = 10 * vg.Inch
	Height      = 5 * vg.Inch
)

var gridColor = color.Gray{Y: 220}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	g := plotter.NewGrid()
	g.Vertical.Color = gridColor
	g.Horizontal.Color = gridColor
	p.Add(g)
	return p
}

// writeTiled draws plots in a grid, which must be rectangular, and
// writes it to w as a PNG image. Nil plots are left blank.
func writeTiled(w io.Writer, plots [][]*plot.Plot, width, height vg.Length) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(DPI))
	dc := draw.New(img)
	t := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      8 * vg.Millimeter,
		PadY:      8 * vg.Millimeter,
		PadTop:    4 * vg.Millimeter,
		PadBottom: 4 * vg.Millimeter,
		PadLeft:   4 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}
	canvases := plot.Align(plots, t, dc)
	for j := range plots {
		for i, p := range plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("charts: writing image: %w", err)
	}
	return nil
}

// writePlot writes a single plot to w as a PNG image.
func writePlot(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("charts: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("charts: writing image: %w", err)
	}
	return nil
}

func yearXYs(years []int, v []float64) plotter.XYs {
	o := make(plotter.XYs, 0, len(years))
	for i, y := range years {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			continue
		}
		o = append(o, plotter.XY{X: float64(y), Y: v[i]})
	}
	return o
}

func addLine(p *plot.Plot, name string, i int, xys plotter.XYs) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("charts: %s: %w", name, err)
	}
	l.Color = plotutil.Color(i)
	l.Width = vg.Points(2)
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

func zeroLine(p *plot.Plot) {
	z := plotter.NewFunction(func(float64) float64 { return 0 })
	z.Color = color.Black
	z.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(z)
}

// StockAnalysis draws four panels: the stock of each building type over
// time, the composition of the stock in the last year, the annual
// inflow to buildings, and the annual growth rate of the total stock.
func StockAnalysis(w io.Writer, ts *cementflow.TimeSeries, in *cementflow.Inflows) error {
	if len(ts.Years) == 0 {
		return fmt.Errorf("charts: empty stock time series")
	}
	stock := newPlot("Concrete Stock in US Buildings Over Time", "Year", "Concrete Stock (million metric tons)")
	for i, b := range cementflow.BuildingTypes {
		if err := addLine(stock, b.Title(), i, yearXYs(ts.Years, ts.ByType(b))); err != nil {
			return err
		}
	}
	stock.Legend.Top = true
	stock.Legend.Left = true

	year, latest := ts.Latest()
	comp := newPlot(fmt.Sprintf("Stock Composition (%d)", year), "", "Share of Stock (%)")
	shares := make(plotter.Values, len(cementflow.BuildingTypes))
	names := make([]string, len(cementflow.BuildingTypes))
	total := latest.Total()
	for i, b := range cementflow.BuildingTypes {
		if total > 0 {
			shares[i] = latest[b] / total * 100
		}
		names[i] = b.Title()
	}
	bars, err := plotter.NewBarChart(shares, vg.Points(40))
	if err != nil {
		return fmt.Errorf("charts: stock composition: %w", err)
	}
	bars.Color = plotutil.Color(0)
	comp.Add(bars)
	comp.NominalX(names...)

	inflow := newPlot("Annual Concrete Inflow to Buildings", "Year", "Concrete Inflow (million metric tons/year)")
	if err := addLine(inflow, "", 2, yearXYs(in.Years, in.ToBuildings)); err != nil {
		return err
	}

	growth := newPlot("Stock Growth Rate", "Year", "Annual Growth Rate (%)")
	if len(ts.Years) > 1 {
		if err := addLine(growth, "", 3, yearXYs(ts.Years, ts.GrowthRates())); err != nil {
			return err
		}
	}
	zeroLine(growth)

	return writeTiled(w, [][]*plot.Plot{{stock, comp}, {inflow, growth}}, TiledWidth, TiledHeight)
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// Spatial draws four panels of regional stock: total stock by region,
// stock per person by region, the building type composition of the
// stock in each region, and stock versus population with points
// colored by stock per person.
func Spatial(w io.Writer, results []cementflow.RegionStock) error {
	if len(results) == 0 {
		return fmt.Errorf("charts: no regional results")
	}
	byTotal := sortedRegions(results, func(r cementflow.RegionStock) float64 { return r.Total })
	byPC := sortedRegions(results, func(r cementflow.RegionStock) float64 { return r.PerCapita })

	total, err := regionBars("Concrete Stock by Region", "Total Stock (million metric tons)", byTotal,
		func(r cementflow.RegionStock) float64 { return r.Total }, 0)
	if err != nil {
		return err
	}
	pc, err := regionBars("Per Capita Concrete Stock by Region", "Stock per Capita (metric tons/person)", byPC,
		func(r cementflow.RegionStock) float64 { return r.PerCapita }, 1)
	if err != nil {
		return err
	}

	comp := newPlot("Stock Composition by Region", "", "Stock (million metric tons)")
	var below *plotter.BarChart
	for i, b := range cementflow.BuildingTypes {
		v := make(plotter.Values, len(byTotal))
		for j, r := range byTotal {
			v[j] = r.Stocks[b]
		}
		bars, err := plotter.NewBarChart(v, barWidth(len(byTotal)))
		if err != nil {
			return fmt.Errorf("charts: stock composition: %w", err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		comp.Add(bars)
		comp.Legend.Add(b.Title(), bars)
	}
	comp.Legend.Top = true
	comp.NominalX(abbrevs(byTotal)...)
	rotateTicks(comp)

	scatter, err := stockVsPopulation(results)
	if err != nil {
		return err
	}
	return writeTiled(w, [][]*plot.Plot{{total, pc}, {comp, scatter}}, TiledWidth, TiledHeight)
}

func sortedRegions(results []cementflow.RegionStock, key func(cementflow.RegionStock) float64) []cementflow.RegionStock {
	o := append([]cementflow.RegionStock(nil), results...)
	sort.SliceStable(o, func(i, j int) bool { return key(o[i]) > key(o[j]) })
	return o
}

func abbrevs(results []cementflow.RegionStock) []string {
	o := make([]string, len(results))
	for i, r := range results {
		o[i] = r.Abbrev
		if o[i] == "" {
			o[i] = r.Name
		}
	}
	return o
}

func barWidth(n int) vg.Length {
	w := 400 * vg.Points(1) / vg.Length(n)
	if w > vg.Points(30) {
		w = vg.Points(30)
	}
	return w
}

func regionBars(title, ylabel string, results []cementflow.RegionStock, value func(cementflow.RegionStock) float64, ci int) (*plot.Plot, error) {
	p := newPlot(title, "", ylabel)
	v := make(plotter.Values, len(results))
	for i, r := range results {
		v[i] = value(r)
	}
	bars, err := plotter.NewBarChart(v, barWidth(len(results)))
	if err != nil {
		return nil, fmt.Errorf("charts: %s: %w", title, err)
	}
	bars.Color = plotutil.Color(ci)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(abbrevs(results)...)
	rotateTicks(p)
	return p, nil
}

func stockVsPopulation(results []cementflow.RegionStock) (*plot.Plot, error) {
	p := newPlot("Stock vs. Population (color = per capita stock)", "Population (millions)", "Total Stock (million metric tons)")
	xys := make(plotter.XYs, len(results))
	pcs := make([]float64, len(results))
	for i, r := range results {
		xys[i] = plotter.XY{X: r.Population, Y: r.Total}
		pcs[i] = r.PerCapita
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("charts: stock vs population: %w", err)
	}
	cmap := moreland.SmoothBlueRed()
	lo, hi := pcs[0], pcs[0]
	for _, v := range pcs {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if !(hi > lo) {
		hi = lo + 1
	}
	cmap.SetMin(lo)
	cmap.SetMax(hi)
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cmap.At(pcs[i])
		if err != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
	}
	p.Add(s)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: abbrevs(results)})
	if err != nil {
		return nil, fmt.Errorf("charts: stock vs population: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].Font.Size = vg.Points(8)
	}
	labels.Offset = vg.Point{Y: vg.Points(6)}
	p.Add(labels)
	return p, nil
}
