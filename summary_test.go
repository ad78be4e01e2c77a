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
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestSummarizeSpatial(t *testing.T) {
	// Total stock is 2 × population + 1.
	var res []RegionStock
	for i, pop := range []float64{1, 2, 3, 4, 5, 6} {
		total := 2*pop + 1
		res = append(res, RegionStock{
			Name:       string(rune('A' + i)),
			Total:      total,
			Population: pop,
			PerCapita:  total / pop,
		})
	}
	s, err := SummarizeSpatial(res)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 6 || s.NationalTotal != 48 {
		t.Errorf("count %d total %g, want 6 48", s.Count, s.NationalTotal)
	}
	if len(s.TopByTotal) != 5 || s.TopByTotal[0].Name != "F" || s.TopByTotal[4].Name != "B" {
		t.Errorf("top by total: %+v", s.TopByTotal)
	}
	if s.TopByPerCapita[0].Name != "A" || s.MaxPerCapita.Name != "A" || s.MinPerCapita.Name != "F" {
		t.Errorf("per capita ordering: top %s, max %s, min %s",
			s.TopByPerCapita[0].Name, s.MaxPerCapita.Name, s.MinPerCapita.Name)
	}
	// Per capita values are 3, 2.5, 2.333, 2.25, 2.2, 2.1667.
	if want := (2.3333333333333335 + 2.25) / 2; different(s.MedianPerCapita, want, testTolerance) {
		t.Errorf("median: have %g, want %g", s.MedianPerCapita, want)
	}
	if want := (3 + 2.5 + 7.0/3 + 2.25 + 2.2 + 13.0/6) / 6; different(s.MeanPerCapita, want, testTolerance) {
		t.Errorf("mean: have %g, want %g", s.MeanPerCapita, want)
	}
	if !(s.StdPerCapita > 0) {
		t.Errorf("std: have %g", s.StdPerCapita)
	}
	if different(s.Top3Share, 33.0/48, testTolerance) || different(s.Top5Share, 45.0/48, testTolerance) {
		t.Errorf("shares: have %g %g", s.Top3Share, s.Top5Share)
	}
	if different(s.Slope, 2, 1e-6) || different(s.Intercept, 1, 1e-6) || different(s.RSquared, 1, 1e-6) {
		t.Errorf("regression: slope %g intercept %g r² %g", s.Slope, s.Intercept, s.RSquared)
	}
}

func TestSummarizeSpatialSample(t *testing.T) {
	res, err := AllocateNational(sampleStocks(), SampleRegions(), MethodHybrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := SummarizeSpatial(res)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		have, want float64
	}{
		{"total", s.NationalTotal, 5200},
		{"mean", s.MeanPerCapita, 28.498504286351665},
		{"median", s.MedianPerCapita, 28.045819723697345},
		{"std", s.StdPerCapita, 1.4215565059387896},
		{"top3", s.Top3Share, 0.512589899535137},
		{"top5", s.Top5Share, 0.7003487079978779},
	}
	for _, test := range tests {
		if different(test.have, test.want, 1e-8) {
			t.Errorf("%s: have %g, want %g", test.name, test.have, test.want)
		}
	}
	if s.MaxPerCapita.Name != "New York" || s.MinPerCapita.Name != "North Carolina" {
		t.Errorf("max %s min %s", s.MaxPerCapita.Name, s.MinPerCapita.Name)
	}

	var b bytes.Buffer
	if err := WriteSpatialSummary(&b, s); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Number of spatial units: 10",
		"Total national stock: 5,200 million metric tons",
		"31.27 tons/person (New York)",
		"Top 3 regions account for: 51.3% of national stock",
	} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("summary is missing %q:\n%s", want, b.String())
		}
	}
}

func TestSummarizeSpatialSingle(t *testing.T) {
	s, err := SummarizeSpatial([]RegionStock{{Name: "A", Total: 5, Population: 1, PerCapita: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if s.MedianPerCapita != 5 || !math.IsNaN(s.StdPerCapita) || !math.IsNaN(s.Slope) {
		t.Errorf("have %+v", s)
	}
	if _, err := SummarizeSpatial(nil); err == nil {
		t.Error("expected an error for no regions")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{in: []float64{3, 1, 2}, want: 2},
		{in: []float64{4, 1, 3, 2}, want: 2.5},
		{in: []float64{7}, want: 7},
	}
	for _, test := range tests {
		if have := median(test.in); have != test.want {
			t.Errorf("%v: have %g, want %g", test.in, have, test.want)
		}
	}
}

func TestWriteCharacteristics(t *testing.T) {
	var b bytes.Buffer
	if err := WriteCharacteristics(&b, Characteristics(twoRegions(), 2020)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		fmt.Sprintf("%-16s %12.1f %12.1f %12.0f %12.1f", "A", 0.5, 30.0, 40.0, 10.0),
		fmt.Sprintf("%-16s %12.1f %12.1f %12.0f %12.1f", "B", 3.0, 10.0/3, 20.0, 10.0),
	} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("output is missing %q:\n%s", want, b.String())
		}
	}
}
