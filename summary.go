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
	"io"
	"math"
	"sort"
	"strings"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpatialSummary holds summary statistics of an allocated stock.
type SpatialSummary struct {
	Count int

	// NationalTotal is the sum of the regional totals in million metric tons.
	NationalTotal float64

	// TopByTotal and TopByPerCapita hold up to five regions with the
	// largest total and per capita stocks, largest first.
	TopByTotal, TopByPerCapita []RegionStock

	// Per capita statistics in metric tons per person. StdPerCapita is
	// the sample standard deviation.
	MeanPerCapita, MedianPerCapita, StdPerCapita float64
	MinPerCapita, MaxPerCapita                   RegionStock

	// Top3Share and Top5Share are the fractions of the national stock
	// held by the three and five regions with the largest stocks.
	Top3Share, Top5Share float64

	// Slope, Intercept and RSquared describe a least-squares fit of
	// total stock against population.
	Slope, Intercept, RSquared float64
}

// SummarizeSpatial calculates summary statistics for results.
func SummarizeSpatial(results []RegionStock) (*SpatialSummary, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("cementflow: no regions to summarize")
	}
	s := &SpatialSummary{Count: len(results)}

	totals := make([]float64, len(results))
	pc := make([]float64, len(results))
	pop := make([]float64, len(results))
	for i, r := range results {
		totals[i] = r.Total
		pc[i] = r.PerCapita
		pop[i] = r.Population
	}
	s.NationalTotal = floats.Sum(totals)

	byTotal := sortedBy(results, func(r RegionStock) float64 { return r.Total })
	byPC := sortedBy(results, func(r RegionStock) float64 { return r.PerCapita })
	s.TopByTotal = byTotal[:min(5, len(byTotal))]
	s.TopByPerCapita = byPC[:min(5, len(byPC))]
	s.MaxPerCapita = byPC[0]
	s.MinPerCapita = byPC[len(byPC)-1]

	s.MeanPerCapita = stat.Mean(pc, nil)
	s.MedianPerCapita = median(pc)
	if len(pc) > 1 {
		s.StdPerCapita = stat.StdDev(pc, nil)
	} else {
		s.StdPerCapita = math.NaN()
	}

	if s.NationalTotal > 0 {
		s.Top3Share = sumTotals(byTotal[:min(3, len(byTotal))]) / s.NationalTotal
		s.Top5Share = sumTotals(s.TopByTotal) / s.NationalTotal
	}

	if len(results) > 1 {
		s.Slope, s.Intercept, s.RSquared, _, _, _ = stats.LinearRegression(pop, totals)
	} else {
		s.Slope, s.Intercept, s.RSquared = math.NaN(), math.NaN(), math.NaN()
	}
	return s, nil
}

// sortedBy returns a copy of results sorted by f, largest first.
// Ties keep their original order.
func sortedBy(results []RegionStock, f func(RegionStock) float64) []RegionStock {
	o := append([]RegionStock(nil), results...)
	sort.SliceStable(o, func(i, j int) bool { return f(o[i]) > f(o[j]) })
	return o
}

func sumTotals(r []RegionStock) float64 {
	var t float64
	for _, v := range r {
		t += v.Total
	}
	return t
}

// median returns the middle value of x, or the mean of the two middle
// values when len(x) is even.
func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// WriteSpatialSummary writes a human-readable version of s to w.
func WriteSpatialSummary(w io.Writer, s *SpatialSummary) error {
	line := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\nSPATIAL DISTRIBUTION OF CONCRETE STOCK\n%s\n", line, line)
	fmt.Fprintf(w, "\nNumber of spatial units: %d\n", s.Count)
	fmt.Fprintf(w, "Total national stock: %s million metric tons\n", formatThousands(s.NationalTotal, 0))

	fmt.Fprintf(w, "\n--- TOP %d REGIONS BY TOTAL STOCK ---\n", len(s.TopByTotal))
	fmt.Fprintf(w, "%-16s %12s %12s %12s\n", "region", "total_stock", "population", "per_capita")
	for _, r := range s.TopByTotal {
		fmt.Fprintf(w, "%-16s %12.1f %12.1f %12.2f\n", r.Name, r.Total, r.Population, r.PerCapita)
	}
	fmt.Fprintf(w, "\n--- TOP %d REGIONS BY PER CAPITA STOCK ---\n", len(s.TopByPerCapita))
	fmt.Fprintf(w, "%-16s %12s %12s %12s\n", "region", "per_capita", "population", "total_stock")
	for _, r := range s.TopByPerCapita {
		fmt.Fprintf(w, "%-16s %12.2f %12.1f %12.1f\n", r.Name, r.PerCapita, r.Population, r.Total)
	}

	fmt.Fprintf(w, "\n--- SUMMARY STATISTICS ---\n")
	fmt.Fprintf(w, "Mean per capita stock:   %8.2f tons/person\n", s.MeanPerCapita)
	fmt.Fprintf(w, "Median per capita stock: %8.2f tons/person\n", s.MedianPerCapita)
	fmt.Fprintf(w, "Std dev per capita:      %8.2f tons/person\n", s.StdPerCapita)
	fmt.Fprintf(w, "Min per capita:          %8.2f tons/person (%s)\n", s.MinPerCapita.PerCapita, s.MinPerCapita.Name)
	fmt.Fprintf(w, "Max per capita:          %8.2f tons/person (%s)\n", s.MaxPerCapita.PerCapita, s.MaxPerCapita.Name)
	fmt.Fprintf(w, "Stock vs. population:    slope %.2f, intercept %.2f, R² %.3f\n", s.Slope, s.Intercept, s.RSquared)

	fmt.Fprintf(w, "\n--- REGIONAL CONCENTRATION ---\n")
	fmt.Fprintf(w, "Top 3 regions account for: %.1f%% of national stock\n", s.Top3Share*100)
	fmt.Fprintf(w, "Top 5 regions account for: %.1f%% of national stock\n", s.Top5Share*100)
	_, err := fmt.Fprintf(w, "%s\n", line)
	return err
}

// WriteCharacteristics writes the derived metrics of each region.
func WriteCharacteristics(w io.Writer, c []RegionCharacteristics) error {
	fmt.Fprintf(w, "\n--- REGION CHARACTERISTICS ---\n")
	fmt.Fprintf(w, "%-16s %12s %12s %12s %12s\n", "region", "density", "gdp_per_cap", "bldg_age", "floor_per_cap")
	for _, r := range c {
		if _, err := fmt.Fprintf(w, "%-16s %12.1f %12.1f %12.0f %12.1f\n",
			r.Name, r.DensityScore, r.GDPPerCapita, r.AvgBuildingAge, r.FloorAreaPerCapita); err != nil {
			return err
		}
	}
	return nil
}
