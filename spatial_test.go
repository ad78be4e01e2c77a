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
	"strings"
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func twoRegions() []Region {
	return []Region{
		{Name: "A", Abbrev: "AA", Population: 1, GDP: 30, FloorArea: 10, Urbanization: 0.5, AvgConstructionYear: 1980},
		{Name: "B", Abbrev: "BB", Population: 3, GDP: 10, FloorArea: 30, Urbanization: 1, AvgConstructionYear: 2000},
	}
}

func sampleStocks() Stocks {
	return Stocks{Residential: 3000, Commercial: 1200, Institutional: 600, Industrial: 400}
}

func TestCharacteristics(t *testing.T) {
	c := Characteristics(SampleRegions(), 2024)
	ca := c[0]
	if ca.Name != "California" {
		t.Fatalf("first region is %s", ca.Name)
	}
	if different(ca.DensityScore, 37.05, testTolerance) {
		t.Errorf("density score: have %g, want 37.05", ca.DensityScore)
	}
	if different(ca.GDPPerCapita, 100, testTolerance) {
		t.Errorf("GDP per capita: have %g, want 100", ca.GDPPerCapita)
	}
	if ca.AvgBuildingAge != 49 {
		t.Errorf("building age: have %g, want 49", ca.AvgBuildingAge)
	}
}

func TestByProxy(t *testing.T) {
	a := &Allocator{NationalStock: 100, Regions: twoRegions()}
	tests := []struct {
		name  string
		proxy []float64
		want  []float64
		err   bool
	}{
		{name: "proportional", proxy: []float64{1, 3}, want: []float64{25, 75}},
		{name: "zero region", proxy: []float64{0, 2}, want: []float64{0, 100}},
		{name: "zero sum", proxy: []float64{0, 0}, err: true},
		{name: "negative", proxy: []float64{-1, 3}, err: true},
		{name: "length", proxy: []float64{1, 2, 3}, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := a.ByProxy(test.proxy)
			if test.err {
				if err == nil {
					t.Errorf("expected an error, got %v", have)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !floats.EqualApprox(have, test.want, testTolerance) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestAllocatorNamedProxies(t *testing.T) {
	a := &Allocator{NationalStock: 100, Regions: twoRegions()}
	for name, f := range map[string]func() ([]float64, error){
		"population": a.ByPopulation,
		"gdp":        a.ByGDP,
		"floor_area": a.ByFloorArea,
	} {
		v, err := f()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if different(floats.Sum(v), 100, testTolerance) {
			t.Errorf("%s: allocation sums to %g", name, floats.Sum(v))
		}
	}
	if v, _ := a.ByGDP(); different(v[0], 75, testTolerance) {
		t.Errorf("gdp: have %v", v)
	}
	if _, err := a.ByNighttimeLights(); err == nil {
		t.Error("expected an error when nighttime lights are missing")
	}
}

func TestByConstructionSpending(t *testing.T) {
	a := &Allocator{NationalStock: 10, Regions: twoRegions()}
	spending := mat.NewDense(3, 2, []float64{
		1, 0,
		2, 1,
		1, 3,
	})
	have, err := a.ByConstructionSpending(spending)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(have, []float64{5, 5}, testTolerance) {
		t.Errorf("have %v, want [5 5]", have)
	}
	if _, err := a.ByConstructionSpending(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("expected an error for wrong number of columns")
	}
}

func TestHybrid(t *testing.T) {
	a := &Allocator{NationalStock: 100, Regions: twoRegions()}
	proxies := Proxies(a.Regions)
	have, err := a.Hybrid(map[string]float64{"population": 0.5, "gdp": 0.5}, proxies)
	if err != nil {
		t.Fatal(err)
	}
	// population gives [25 75] and gdp gives [75 25].
	if !floats.EqualApprox(have, []float64{50, 50}, testTolerance) {
		t.Errorf("have %v, want [50 50]", have)
	}

	if _, err := a.Hybrid(map[string]float64{"population": 0.5, "gdp": 0.4}, proxies); err == nil {
		t.Error("expected an error for weights that do not sum to 1")
	}

	partial := map[string][]float64{"population": proxies["population"]}
	have, err = a.Hybrid(map[string]float64{"population": 0.6, "gdp": 0.4}, partial)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(have, []float64{15, 45}, testTolerance) {
		t.Errorf("missing proxy: have %v, want [15 45]", have)
	}
}

func TestWithBuildingTypes(t *testing.T) {
	a := &Allocator{NationalStock: 90, Regions: twoRegions()}
	fractions := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 0, 1, 0,
	})
	intensities := make([]float64, len(BuildingTypes))
	for i, b := range BuildingTypes {
		intensities[i] = IntensityPerDollar[b]
	}
	have, err := a.WithBuildingTypes(fractions, intensities)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(have, []float64{30, 60}, testTolerance) {
		t.Errorf("have %v, want [30 60]", have)
	}
	if _, err := a.WithBuildingTypes(fractions, intensities[:2]); err == nil {
		t.Error("expected an error for mismatched intensities")
	}
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"population", "gdp", "floor_area", "nighttime_lights", "Hybrid"} {
		if _, err := ParseMethod(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for _, name := range []string{"building_type", "construction_spending"} {
		if _, err := ParseMethod(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := ParseMethod("construction"); err == nil {
		t.Error("expected an error for an unknown method")
	}
}

func TestLoadStrategies(t *testing.T) {
	s, err := LoadStrategies(strings.NewReader(`
[residential]
population = 0.5
floor_area = 0.5

[Industrial]
urban = 1.0
`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultStrategies()
	want[Residential] = Strategy{"population": 0.5, "floor_area": 0.5}
	want[Industrial] = Strategy{"urban": 1}
	if diff := pretty.Diff(s, want); len(diff) != 0 {
		t.Error(diff)
	}

	for name, in := range map[string]string{
		"sum":   "[commercial]\ngdp = 0.5\n",
		"proxy": "[commercial]\nroads = 1.0\n",
		"type":  "[agricultural]\ngdp = 1.0\n",
		"toml":  "[commercial\n",
	} {
		if _, err := LoadStrategies(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestAllocateNationalPopulation(t *testing.T) {
	res, err := AllocateNational(sampleStocks(), SampleRegions(), MethodPopulation, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 10 {
		t.Fatalf("have %d regions, want 10", len(res))
	}
	if want := 3000 * 39 / 179.7; different(res[0].Stocks[Residential], want, testTolerance) {
		t.Errorf("CA residential: have %g, want %g", res[0].Stocks[Residential], want)
	}
	// Every region has the same per capita stock.
	for _, r := range res {
		if different(r.PerCapita, 5200/179.7, testTolerance) {
			t.Errorf("%s per capita: have %g, want %g", r.Name, r.PerCapita, 5200/179.7)
		}
	}
}

func TestAllocateNationalHybrid(t *testing.T) {
	res, err := AllocateNational(sampleStocks(), SampleRegions(), MethodHybrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	total := make(Stocks)
	for _, r := range res {
		for _, b := range BuildingTypes {
			total[b] += r.Stocks[b]
		}
		if different(r.Total, r.Stocks.Total(), testTolerance) {
			t.Errorf("%s: total %g does not match sum of types", r.Name, r.Total)
		}
	}
	for b, v := range sampleStocks() {
		if different(total[b], v, testTolerance) {
			t.Errorf("%s: regions sum to %g, want %g", b, total[b], v)
		}
	}
	ca := res[0]
	if different(ca.Stocks[Residential], 634.926, 1e-5) {
		t.Errorf("CA residential: have %g, want 634.926", ca.Stocks[Residential])
	}
	if different(ca.Total, 1186.831, 1e-5) {
		t.Errorf("CA total: have %g, want 1186.831", ca.Total)
	}
	if different(ca.PerCapita, 30.432, 1e-4) {
		t.Errorf("CA per capita: have %g, want 30.432", ca.PerCapita)
	}
	if ca.GDP != 3900 || ca.FloorArea != 8000 {
		t.Errorf("proxies not carried through: %+v", ca)
	}
}

func TestAllocateNationalBuildingType(t *testing.T) {
	regions := twoRegions()
	regions[0].Units = make([]float64, len(UnitTypes))
	regions[0].Units[0] = 10 // detached houses
	regions[1].Units = make([]float64, len(UnitTypes))
	regions[1].Units[7] = 25 // 50+ unit buildings, 1.6 each
	res, err := AllocateNational(sampleStocks(), regions, MethodBuildingType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if different(res[0].Stocks[Residential], 600, testTolerance) {
		t.Errorf("A residential: have %g, want 600", res[0].Stocks[Residential])
	}
	if different(res[1].Total, 5200*0.8, testTolerance) {
		t.Errorf("B total: have %g, want %g", res[1].Total, 5200*0.8)
	}

	regions[1].Units = nil
	if _, err := AllocateNational(sampleStocks(), regions, MethodBuildingType, nil); err == nil {
		t.Error("expected an error for a region without housing units")
	}
	if _, err := AllocateNational(sampleStocks(), twoRegions(), MethodBuildingType, nil); err == nil {
		t.Error("expected an error without housing units")
	}
}

func TestAllocateNationalSpending(t *testing.T) {
	regions := twoRegions()
	regions[0].Spending = []float64{1, 2, 1}
	regions[1].Spending = []float64{0, 1, 3}
	res, err := AllocateNational(sampleStocks(), regions, MethodSpending, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res {
		if different(r.Total, 2600, testTolerance) {
			t.Errorf("%s: have %g, want 2600", r.Name, r.Total)
		}
	}
	regions[1].Spending = []float64{1}
	if _, err := AllocateNational(sampleStocks(), regions, MethodSpending, nil); err == nil {
		t.Error("expected an error for spending with different numbers of years")
	}
}

func TestAllocateNationalErrors(t *testing.T) {
	if _, err := AllocateNational(sampleStocks(), SampleRegions(), Method("roads"), nil); err == nil {
		t.Error("expected an error for an invalid method")
	}
	if _, err := AllocateNational(sampleStocks(), nil, MethodGDP, nil); err == nil {
		t.Error("expected an error for no regions")
	}
	if _, err := AllocateNational(sampleStocks(), SampleRegions(), MethodNighttimeLights, nil); err == nil {
		t.Error("expected an error for missing nighttime lights")
	}
	s := DefaultStrategies()
	delete(s, Commercial)
	if _, err := AllocateNational(sampleStocks(), SampleRegions(), MethodHybrid, s); err == nil {
		t.Error("expected an error for a missing strategy")
	}
}
