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

// Package flows describes national flows of construction aggregate:
// domestic extraction, imports, exports, and apparent consumption.
package flows

import (
	"fmt"
	"io"
	"math"

	"github.com/spatialmodel/cementflow/etl/usgs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Year holds the national flows in one year, in million metric tons.
type Year struct {
	Year                                        int
	Production, Imports, Exports, Consumption float64
}

// FromConsumption converts USGS consumption records, in metric tons,
// to flows in million metric tons.
func FromConsumption(c []usgs.Consumption) []Year {
	o := make([]Year, len(c))
	for i, r := range c {
		o[i] = Year{
			Year:        r.Year,
			Production:  r.Production / 1e6,
			Imports:     r.Imports / 1e6,
			Exports:     r.Exports / 1e6,
			Consumption: r.Apparent / 1e6,
		}
	}
	return o
}

// Balance returns (production + imports) - (consumption + exports),
// which is zero when the flows are consistent.
func (y Year) Balance() float64 {
	return (y.Production + y.Imports) - (y.Consumption + y.Exports)
}

// Gap returns consumption minus production.
func (y Year) Gap() float64 { return y.Consumption - y.Production }

// Node is a stage in the flow diagram.
type Node int

// These are the nodes of the flow diagram.
const (
	DomesticExtraction Node = iota
	Imports
	DomesticConsumption
	Exports
)

func (n Node) String() string {
	switch n {
	case DomesticExtraction:
		return "Domestic Extraction"
	case Imports:
		return "Imports"
	case DomesticConsumption:
		return "Domestic Consumption"
	case Exports:
		return "Exports"
	default:
		return fmt.Sprintf("Node(%d)", int(n))
	}
}

// Link is a flow between two nodes.
type Link struct {
	Source, Target Node

	// Value is the flow in million metric tons.
	Value float64

	// Scaled is the width of the link in a diagram.
	Scaled float64
}

// Label returns the flow for display.
func (l Link) Label() string { return fmt.Sprintf("%.1fM", l.Value) }

// minVisibleFraction is the smallest width of a non-zero import or export
// link, as a fraction of the log-scaled width of the largest flow.
const minVisibleFraction = 0.15

// HybridScale returns log10(v+1), but no less than minVisibleFraction
// of log10(max+1) so that small flows stay visible. Non-positive flows
// have zero width.
func HybridScale(v, max float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Max(math.Log10(v+1), math.Log10(max+1)*minVisibleFraction)
}

// Links returns the flow diagram links for a year: domestic extraction
// to consumption (production not exported), domestic extraction to
// exports, and imports to consumption. Domestic consumption is log
// scaled and the other links use HybridScale.
func (y Year) Links() []Link {
	o := []Link{
		{Source: DomesticExtraction, Target: DomesticConsumption, Value: y.Production - y.Exports},
		{Source: DomesticExtraction, Target: Exports, Value: y.Exports},
		{Source: Imports, Target: DomesticConsumption, Value: y.Imports},
	}
	max := math.Max(o[0].Value, math.Max(o[1].Value, o[2].Value))
	if o[0].Value > 0 {
		o[0].Scaled = math.Log10(o[0].Value + 1)
	}
	o[1].Scaled = HybridScale(o[1].Value, max)
	o[2].Scaled = HybridScale(o[2].Value, max)
	return o
}

// Summary summarizes flows over a range of years.
type Summary struct {
	FirstYear, LastYear int

	MeanProduction, MeanImports, MeanExports, MeanConsumption float64

	// ProductionChange and ConsumptionChange are the differences
	// between the last and first years, and the Pct fields are the
	// same changes as percentages of the first year.
	ProductionChange, ProductionChangePct   float64
	ConsumptionChange, ConsumptionChangePct float64

	// MaxImbalance is the largest absolute balance in any year.
	MaxImbalance float64
}

// Summarize summarizes years, which should be in chronological order.
func Summarize(years []Year) (*Summary, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("flows: no years to summarize")
	}
	n := len(years)
	var prod, imp, exp, cons, bal []float64
	for _, y := range years {
		prod = append(prod, y.Production)
		imp = append(imp, y.Imports)
		exp = append(exp, y.Exports)
		cons = append(cons, y.Consumption)
		bal = append(bal, math.Abs(y.Balance()))
	}
	first, last := years[0], years[n-1]
	return &Summary{
		FirstYear:            first.Year,
		LastYear:             last.Year,
		MeanProduction:       stat.Mean(prod, nil),
		MeanImports:          stat.Mean(imp, nil),
		MeanExports:          stat.Mean(exp, nil),
		MeanConsumption:      stat.Mean(cons, nil),
		ProductionChange:     last.Production - first.Production,
		ProductionChangePct:  (last.Production/first.Production - 1) * 100,
		ConsumptionChange:    last.Consumption - first.Consumption,
		ConsumptionChangePct: (last.Consumption/first.Consumption - 1) * 100,
		MaxImbalance:         floats.Max(bal),
	}, nil
}

// Write writes the summary to w.
func (s *Summary) Write(w io.Writer) error {
	fmt.Fprintf(w, "Years covered: %d - %d\n", s.FirstYear, s.LastYear)
	fmt.Fprintf(w, "Average production: %.1fM tons\n", s.MeanProduction)
	fmt.Fprintf(w, "Average imports: %.1fM tons\n", s.MeanImports)
	fmt.Fprintf(w, "Average exports: %.1fM tons\n", s.MeanExports)
	fmt.Fprintf(w, "Average consumption: %.1fM tons\n", s.MeanConsumption)
	fmt.Fprintf(w, "\nProduction change: %.1fM tons (%.1f%%)\n", s.ProductionChange, s.ProductionChangePct)
	fmt.Fprintf(w, "Consumption change: %.1fM tons (%.1f%%)\n", s.ConsumptionChange, s.ConsumptionChangePct)
	_, err := fmt.Fprintf(w, "Largest imbalance: %.3fM tons\n", s.MaxImbalance)
	return err
}

// Index returns v relative to its first element, times 100.
func Index(v []float64) []float64 {
	o := make([]float64, len(v))
	if len(v) == 0 {
		return o
	}
	floats.ScaleTo(o, 100/v[0], v)
	return o
}
