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

package cementflow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Production holds annual cement production.
type Production struct {
	// Years must be strictly increasing.
	Years []int

	// Cement is production in million metric tons.
	Cement []float64
}

// Validate checks that the years are strictly increasing and that
// every year has a production value.
func (p *Production) Validate() error {
	if len(p.Years) != len(p.Cement) {
		return fmt.Errorf("cementflow: production has %d years but %d values", len(p.Years), len(p.Cement))
	}
	for i := 1; i < len(p.Years); i++ {
		if p.Years[i] <= p.Years[i-1] {
			return fmt.Errorf("cementflow: production years are not increasing at %d", p.Years[i])
		}
	}
	return nil
}

// Total returns cumulative production.
func (p *Production) Total() float64 { return floats.Sum(p.Cement) }

// SampleProduction returns an approximate 1950-2024 US cement production
// series in million metric tons, following the shape of the USGS Mineral
// Commodity Summaries.
func SampleProduction() *Production {
	p := new(Production)
	add := func(v float64) {
		p.Years = append(p.Years, 1950+len(p.Years))
		p.Cement = append(p.Cement, v)
	}
	for i := 0; i < 10; i++ { // post-war boom
		add(40 + float64(i)*1.5)
	}
	for i := 0; i < 10; i++ {
		add(55 + float64(i)*2)
	}
	for i := 0; i < 10; i++ { // oil crisis
		add(75 + float64(i)*0.5)
	}
	for i := 0; i < 10; i++ {
		add(80 + float64(i))
	}
	for i := 0; i < 10; i++ {
		add(90 + float64(i)*0.8)
	}
	for _, v := range []float64{
		98, 99.3, 97, 95, 94, 92, 90, 85, 75, 65, // 2000s
		66, 67, 71, 76, 81, 84, 86, 87, 88, 87, // 2010s
		83, 90, 91, 93, 90,
	} {
		add(v)
	}
	return p
}

// Allocation holds the fraction of building concrete that goes to
// each building type in each year.
type Allocation struct {
	Years     []int
	Fractions map[BuildingType][]float64
}

// DefaultFractions are the default shares of building construction
// by type.
var DefaultFractions = map[BuildingType]float64{
	Residential:   0.60,
	Commercial:    0.25,
	Institutional: 0.10,
	Industrial:    0.05,
}

const fractionTolerance = 0.001

// UniformAllocation returns an allocation that uses the same
// fractions for every one of the given years.
func UniformAllocation(years []int, fractions map[BuildingType]float64) (*Allocation, error) {
	a := &Allocation{
		Years:     append([]int(nil), years...),
		Fractions: make(map[BuildingType][]float64),
	}
	for _, b := range BuildingTypes {
		f := fractions[b]
		v := make([]float64, len(years))
		for i := range v {
			v[i] = f
		}
		a.Fractions[b] = v
	}
	return a, a.Validate()
}

// Validate checks that each year's fractions sum to one.
func (a *Allocation) Validate() error {
	for i, y := range a.Years {
		var sum float64
		for _, b := range BuildingTypes {
			f := a.Fractions[b]
			if len(f) != len(a.Years) {
				return fmt.Errorf("cementflow: allocation for %s has %d values but there are %d years", b, len(f), len(a.Years))
			}
			if f[i] < 0 {
				return fmt.Errorf("cementflow: negative %s allocation fraction in %d", b, y)
			}
			sum += f[i]
		}
		if math.Abs(sum-1) > fractionTolerance {
			return fmt.Errorf("cementflow: allocation fractions for %d sum to %g, not 1", y, sum)
		}
	}
	return nil
}

func (a *Allocation) index() map[int]int {
	o := make(map[int]int, len(a.Years))
	for i, y := range a.Years {
		o[y] = i
	}
	return o
}

// Inflows holds annual concrete inflows, in million metric tons.
type Inflows struct {
	Years []int

	// Concrete is all concrete made from cement production.
	Concrete []float64

	// ToBuildings is the part of Concrete that goes to buildings.
	ToBuildings []float64

	// ByType is ToBuildings split by building type.
	ByType map[BuildingType][]float64
}

// CalculateInflows converts cement production to concrete inflows
// to each building type. Only years present in both prod and alloc
// are included.
func CalculateInflows(prod *Production, alloc *Allocation, p *Parameters) (*Inflows, error) {
	if err := prod.Validate(); err != nil {
		return nil, err
	}
	if err := alloc.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	idx := alloc.index()
	o := &Inflows{ByType: make(map[BuildingType][]float64)}
	for i, y := range prod.Years {
		j, ok := idx[y]
		if !ok {
			continue
		}
		concrete := prod.Cement[i] * p.ConcreteToCement
		buildings := concrete * p.BuildingFraction
		o.Years = append(o.Years, y)
		o.Concrete = append(o.Concrete, concrete)
		o.ToBuildings = append(o.ToBuildings, buildings)
		for _, b := range BuildingTypes {
			o.ByType[b] = append(o.ByType[b], buildings*alloc.Fractions[b][j])
		}
	}
	if len(o.Years) == 0 {
		return nil, fmt.Errorf("cementflow: production and allocation data have no years in common")
	}
	return o, nil
}

// Peak returns the year with the largest inflow to buildings
// and the inflow in that year. Both are zero if there are no inflows.
func (in *Inflows) Peak() (year int, value float64) {
	if len(in.ToBuildings) == 0 || len(in.Years) != len(in.ToBuildings) {
		return 0, 0
	}
	i := floats.MaxIdx(in.ToBuildings)
	return in.Years[i], in.ToBuildings[i]
}

// MeanToBuildings returns the average annual inflow to buildings.
func (in *Inflows) MeanToBuildings() float64 {
	return floats.Sum(in.ToBuildings) / float64(len(in.ToBuildings))
}
