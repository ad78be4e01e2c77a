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

// Package usgs cleans USGS construction aggregate datasets: the
// aggregates time series by state, type and end use, and the
// construction sand and gravel historical statistics (Data Series 140).
package usgs

import (
	"fmt"
	"strconv"

	"github.com/spatialmodel/cementflow/internal/table"
)

// Column names in the USGS aggregates time series.
const (
	Year            = "Year"
	StateCoverage   = "State Coverage"
	Region          = "Region"
	Commodity       = "Commodity"
	Quantity        = "Quantity"
	DataDescription = "Data Description"
	TotalValue      = "Total Value"
)

// CleanAggregateProduction reduces the USGS aggregates time series to
// state-level production. Only state total rows are kept, the combined
// "Aggregates, construction" commodity is dropped because earlier years
// do not report it, withheld ("W") and unavailable ("--") quantities are
// dropped, and national rows (which have no region) are dropped.
// Quantity (metric tons) and Total Value ($) are then summed by year,
// state and region.
func CleanAggregateProduction(t *table.Table) (*table.Table, error) {
	t, err := t.Select(Year, StateCoverage, Region, Commodity, Quantity, DataDescription, TotalValue)
	if err != nil {
		return nil, fmt.Errorf("usgs: cleaning aggregate production: %w", err)
	}
	t = t.Filter(func(r table.Row) bool {
		q := r.Get(Quantity)
		return r.Get(DataDescription) == "State totals" &&
			r.Get(Commodity) != "Aggregates, construction" &&
			q != "W" && q != "--"
	}).DropMissing(Region)
	o, err := t.GroupBy([]string{Year, StateCoverage, Region},
		table.Agg{Column: Quantity, Func: table.Sum},
		table.Agg{Column: TotalValue, Func: table.Sum},
	)
	if err != nil {
		return nil, fmt.Errorf("usgs: cleaning aggregate production: %w", err)
	}
	return o, nil
}

// Column names in the sand and gravel consumption data.
const (
	Production          = "Production"
	Imports             = "Imports"
	Exports             = "Exports"
	ApparentConsumption = "Apparent consumption"
)

// CleanConsumption keeps the year, production, imports, exports and
// apparent consumption columns, drops rows without a year, and
// replaces missing values with zero. Numbers are written without
// thousands separators.
func CleanConsumption(t *table.Table) (*table.Table, error) {
	cols := []string{Year, Production, Imports, Exports, ApparentConsumption}
	t, err := t.Select(cols...)
	if err != nil {
		return nil, fmt.Errorf("usgs: cleaning consumption: %w", err)
	}
	t = t.DropMissing(Year).FillMissing("0")
	var parseErr error
	t = t.Map(func(r []string) {
		for i, v := range r {
			x, err := table.ParseFloat(v)
			if err != nil {
				if parseErr == nil {
					parseErr = fmt.Errorf("usgs: cleaning consumption: column %s: %w", cols[i], err)
				}
				continue
			}
			r[i] = table.FormatFloat(x)
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return t, nil
}

// Consumption holds one year of national sand and gravel statistics,
// in metric tons.
type Consumption struct {
	Year                                    int
	Production, Imports, Exports, Apparent float64
}

// ReadConsumption converts a table produced by CleanConsumption
// to records.
func ReadConsumption(t *table.Table) ([]Consumption, error) {
	if err := t.Require(Year, Production, Imports, Exports, ApparentConsumption); err != nil {
		return nil, fmt.Errorf("usgs: %w", err)
	}
	o := make([]Consumption, t.Len())
	for i := range o {
		r := t.Row(i)
		y, err := r.Float(Year)
		if err != nil {
			return nil, fmt.Errorf("usgs: row %d: %w", i, err)
		}
		o[i].Year = int(y)
		for col, dst := range map[string]*float64{
			Production:          &o[i].Production,
			Imports:             &o[i].Imports,
			Exports:             &o[i].Exports,
			ApparentConsumption: &o[i].Apparent,
		} {
			if *dst, err = r.Float(col); err != nil {
				return nil, fmt.Errorf("usgs: row %d: %w", i, err)
			}
		}
	}
	return o, nil
}

// Column names in the state production summary.
const (
	State         = "State"
	TotalQuantity = "Total_Quantity"
)

// StateProduction sums the production in a table from
// CleanAggregateProduction by state for one year, largest first.
func StateProduction(t *table.Table, year int) (*table.Table, error) {
	y := strconv.Itoa(year)
	t = t.Filter(func(r table.Row) bool {
		v, err := r.Float(Year)
		return err == nil && strconv.Itoa(int(v)) == y
	})
	if t.Len() == 0 {
		return nil, fmt.Errorf("usgs: no production data for %d", year)
	}
	g, err := t.GroupBy([]string{StateCoverage}, table.Agg{Column: Quantity, Name: TotalQuantity, Func: table.Sum})
	if err != nil {
		return nil, fmt.Errorf("usgs: summarizing production by state: %w", err)
	}
	return g.Rename(map[string]string{StateCoverage: State}).SortFloat(TotalQuantity, true)
}

// AnnualTotals sums the production in a table from
// CleanAggregateProduction by year.
func AnnualTotals(t *table.Table) (*table.Table, error) {
	g, err := t.GroupBy([]string{Year}, table.Agg{Column: Quantity, Func: table.Sum})
	if err != nil {
		return nil, fmt.Errorf("usgs: summarizing production by year: %w", err)
	}
	return g.SortFloat(Year, false)
}
