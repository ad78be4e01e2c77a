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
	"strings"

	"github.com/ctessum/unit"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/mat"
)

// SurvivalMatrix holds survival probabilities in CurrentYear for
// buildings constructed in each year from StartYear to CurrentYear,
// with one column per building type.
type SurvivalMatrix struct {
	StartYear, CurrentYear int
	*mat.Dense
}

// NewSurvivalMatrix calculates survival probabilities for all construction
// years and building types.
func NewSurvivalMatrix(currentYear, startYear int, lifetimes map[BuildingType]Survivor) (*SurvivalMatrix, error) {
	if startYear > currentYear {
		return nil, fmt.Errorf("cementflow: survival matrix start year %d is after current year %d", startYear, currentYear)
	}
	nYears := currentYear - startYear + 1
	m := mat.NewDense(nYears, len(BuildingTypes), nil)
	for j, b := range BuildingTypes {
		s, ok := lifetimes[b]
		if !ok {
			return nil, fmt.Errorf("cementflow: no lifetime specified for building type %s", b)
		}
		for i := 0; i < nYears; i++ {
			age := float64(currentYear - (startYear + i))
			m.Set(i, j, s.Survival(age))
		}
	}
	return &SurvivalMatrix{StartYear: startYear, CurrentYear: currentYear, Dense: m}, nil
}

// Survival returns the survival probability of buildings of type b
// built in yearBuilt. ok is false if yearBuilt is outside of the matrix.
func (s *SurvivalMatrix) Survival(yearBuilt int, b BuildingType) (p float64, ok bool) {
	if yearBuilt < s.StartYear || yearBuilt > s.CurrentYear {
		return 0, false
	}
	return s.At(yearBuilt-s.StartYear, int(b)), true
}

// WriteSurvival writes the probability that buildings of each type
// built in yearBuilt are still standing in s.CurrentYear.
func WriteSurvival(w io.Writer, s *SurvivalMatrix, yearBuilt int) error {
	fmt.Fprintf(w, "Survival in %d of buildings built in %d (age %d):\n", s.CurrentYear, yearBuilt, s.CurrentYear-yearBuilt)
	for _, b := range BuildingTypes {
		p, ok := s.Survival(yearBuilt, b)
		if !ok {
			return fmt.Errorf("cementflow: %d is outside of the survival years %d-%d", yearBuilt, s.StartYear, s.CurrentYear)
		}
		if _, err := fmt.Fprintf(w, "  %-15s %5.1f%%\n", b.Title()+":", p*100); err != nil {
			return err
		}
	}
	return nil
}

// Stocks holds concrete stock in million metric tons by building type.
type Stocks map[BuildingType]float64

// Total returns the stock summed over building types.
func (s Stocks) Total() float64 {
	var t float64
	for _, b := range BuildingTypes {
		t += s[b]
	}
	return t
}

// PerCapita returns the total stock in metric tons per person
// for the given number of people.
func (s Stocks) PerCapita(population float64) (float64, error) {
	if !(population > 0) {
		return math.NaN(), fmt.Errorf("cementflow: population must be >0 to calculate per capita stock")
	}
	mass := unit.New(s.Total()*1e9, unit.Kilogram) // 1 Mt = 1e9 kg
	return tonsPerPerson(mass, unit.New(population, unit.Dimless))
}

// tonsPerPerson returns mass divided by a head count, in metric tons.
func tonsPerPerson(mass, people *unit.Unit) (float64, error) {
	pc := unit.Div(mass, people)
	if err := pc.Check(unit.Kilogram); err != nil {
		return math.NaN(), fmt.Errorf("cementflow: per capita mass: %w", err)
	}
	return pc.Value() / 1000, nil
}

// CalculateStock calculates the stock in s.CurrentYear as the sum over
// construction years of inflow × survival. Inflow years that are
// not in s are ignored.
func CalculateStock(in *Inflows, s *SurvivalMatrix) Stocks {
	o := make(Stocks)
	for _, b := range BuildingTypes {
		var stock float64
		for i, y := range in.Years {
			p, ok := s.Survival(y, b)
			if !ok {
				continue
			}
			stock += in.ByType[b][i] * p
		}
		o[b] = stock
	}
	return o
}

// TimeSeries holds the stock in each of a range of years.
type TimeSeries struct {
	Years  []int
	Stocks []Stocks
}

// CalculateStockTimeSeries calculates the stock in every year from
// startYear through endYear. The stock in each year is the sum of
// the inflows from all earlier years (and the year itself) that are
// still standing.
func CalculateStockTimeSeries(in *Inflows, lifetimes map[BuildingType]Survivor, startYear, endYear int) (*TimeSeries, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("cementflow: time series start year %d is after end year %d", startYear, endYear)
	}
	for _, b := range BuildingTypes {
		if _, ok := lifetimes[b]; !ok {
			return nil, fmt.Errorf("cementflow: no lifetime specified for building type %s", b)
		}
	}
	ts := new(TimeSeries)
	for year := startYear; year <= endYear; year++ {
		s := make(Stocks)
		for _, b := range BuildingTypes {
			var stock float64
			for i, built := range in.Years {
				if built > year {
					continue
				}
				stock += in.ByType[b][i] * lifetimes[b].Survival(float64(year-built))
			}
			s[b] = stock
		}
		ts.Years = append(ts.Years, year)
		ts.Stocks = append(ts.Stocks, s)
	}
	return ts, nil
}

// Totals returns the total stock in each year.
func (ts *TimeSeries) Totals() []float64 {
	o := make([]float64, len(ts.Stocks))
	for i, s := range ts.Stocks {
		o[i] = s.Total()
	}
	return o
}

// ByType returns the stock of building type b in each year.
func (ts *TimeSeries) ByType(b BuildingType) []float64 {
	o := make([]float64, len(ts.Stocks))
	for i, s := range ts.Stocks {
		o[i] = s[b]
	}
	return o
}

// Latest returns the last year and its stocks.
func (ts *TimeSeries) Latest() (int, Stocks) {
	n := len(ts.Years) - 1
	return ts.Years[n], ts.Stocks[n]
}

// GrowthRates returns the annual percent change in total stock.
// The first element is NaN because there is no previous year.
func (ts *TimeSeries) GrowthRates() []float64 {
	totals := ts.Totals()
	o := make([]float64, len(totals))
	for i := range totals {
		if i == 0 || totals[i-1] == 0 {
			o[i] = math.NaN()
			continue
		}
		o[i] = (totals[i]/totals[i-1] - 1) * 100
	}
	return o
}

// WriteStockSummary writes a summary of the stock in year to w,
// including the per capita stock for the given population.
func WriteStockSummary(w io.Writer, s Stocks, year int, population float64) error {
	line := strings.Repeat("=", 70)
	fmt.Fprintf(w, "%s\nCONCRETE STOCK IN US BUILDINGS - %d\n%s\n\nBy Building Type:\n", line, year, line)
	for _, b := range BuildingTypes {
		name := b.Title() + ":"
		fmt.Fprintf(w, "  %-15s %12s million metric tons\n", name, formatThousands(s[b], 0))
	}
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 60))
	fmt.Fprintf(w, "  %-15s %12s million metric tons\n", "TOTAL:", formatThousands(s.Total(), 0))
	pc, err := s.PerCapita(population)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPer Capita (assuming %s million people):\n", formatThousands(population/1e6, 0))
	_, err = fmt.Fprintf(w, "  %12s metric tons per person\n%s\n", formatThousands(pc, 1), line)
	return err
}

// printer formats numbers with commas separating thousands.
var printer = message.NewPrinter(language.English)

// formatThousands formats v with the given number of decimal places
// and commas separating thousands.
func formatThousands(v float64, prec int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", prec), v)
}
