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
	"strconv"
	"strings"

	"github.com/spatialmodel/cementflow/internal/table"
	"github.com/xuri/excelize/v2"
)

// readCSV reads a CSV file with lower-case column names and checks
// that it has the required columns.
func readCSV(r io.Reader, required ...string) (*table.Table, error) {
	t, err := table.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("cementflow: %w", err)
	}
	for i, h := range t.Header {
		t.Header[i] = strings.ToLower(h)
	}
	if err := t.Require(required...); err != nil {
		return nil, fmt.Errorf("cementflow: %w", err)
	}
	return t.TrimSpace(), nil
}

func float(t *table.Table, row int, col string) (float64, error) {
	v, err := t.Row(row).Float(col)
	if err != nil {
		return 0, fmt.Errorf("cementflow: row %d column %s: %w", row+2, col, err)
	}
	return v, nil
}

// integer parses a whole number. Values with a fractional part are
// an error.
func integer(t *table.Table, row int, col string) (int, error) {
	v, err := float(t, row, col)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("cementflow: row %d column %s: %g is not a whole number", row+2, col, v)
	}
	return int(v), nil
}

// ReadProduction reads annual cement production from a CSV file
// with columns year and production_mt.
func ReadProduction(r io.Reader) (*Production, error) {
	t, err := readCSV(r, "year", "production_mt")
	if err != nil {
		return nil, err
	}
	p := new(Production)
	for i := range t.Rows {
		y, err := integer(t, i, "year")
		if err != nil {
			return nil, err
		}
		v, err := float(t, i, "production_mt")
		if err != nil {
			return nil, err
		}
		p.Years = append(p.Years, y)
		p.Cement = append(p.Cement, v)
	}
	return p, p.Validate()
}

// ReadAllocation reads building type fractions from a CSV file with
// a year column and a <type>_fraction column for each building type.
func ReadAllocation(r io.Reader) (*Allocation, error) {
	cols := []string{"year"}
	for _, b := range BuildingTypes {
		cols = append(cols, b.String()+"_fraction")
	}
	t, err := readCSV(r, cols...)
	if err != nil {
		return nil, err
	}
	a := &Allocation{Fractions: make(map[BuildingType][]float64)}
	for i := range t.Rows {
		y, err := integer(t, i, "year")
		if err != nil {
			return nil, err
		}
		a.Years = append(a.Years, y)
		for _, b := range BuildingTypes {
			v, err := float(t, i, b.String()+"_fraction")
			if err != nil {
				return nil, err
			}
			a.Fractions[b] = append(a.Fractions[b], v)
		}
	}
	return a, a.Validate()
}

// ReadRegions reads spatial proxy data from a CSV file. The
// nighttime_lights column is optional.
func ReadRegions(r io.Reader) ([]Region, error) {
	t, err := readCSV(r, "state", "state_abbrev", "population", "gdp", "floor_area",
		"urbanization", "avg_construction_year")
	if err != nil {
		return nil, err
	}
	o := make([]Region, t.Len())
	for i := range t.Rows {
		row := t.Row(i)
		reg := Region{Name: row.Get("state"), Abbrev: row.Get("state_abbrev")}
		for col, dst := range map[string]*float64{
			"population":   &reg.Population,
			"gdp":          &reg.GDP,
			"floor_area":   &reg.FloorArea,
			"urbanization": &reg.Urbanization,
		} {
			if *dst, err = float(t, i, col); err != nil {
				return nil, err
			}
		}
		if reg.AvgConstructionYear, err = integer(t, i, "avg_construction_year"); err != nil {
			return nil, err
		}
		if !table.Missing(row.Get("nighttime_lights")) {
			if reg.NighttimeLights, err = float(t, i, "nighttime_lights"); err != nil {
				return nil, err
			}
		}
		o[i] = reg
	}
	return o, nil
}

// ReadNationalStocks reads the stock by building type in the last
// row of a time series CSV file written by WriteTimeSeriesCSV.
func ReadNationalStocks(r io.Reader) (Stocks, int, error) {
	cols := []string{"year"}
	for _, b := range BuildingTypes {
		cols = append(cols, b.String())
	}
	t, err := readCSV(r, cols...)
	if err != nil {
		return nil, 0, err
	}
	if t.Len() == 0 {
		return nil, 0, fmt.Errorf("cementflow: stock time series has no rows")
	}
	last := t.Len() - 1
	year, err := integer(t, last, "year")
	if err != nil {
		return nil, 0, err
	}
	s := make(Stocks)
	for _, b := range BuildingTypes {
		if s[b], err = float(t, last, b.String()); err != nil {
			return nil, 0, err
		}
	}
	return s, year, nil
}

// ReadHousingUnits sets the Units of each region from a cleaned ACS
// table B25024 file with a state_name column and a column for each of
// UnitTypes. Regions are matched by name, ignoring case. Every region
// must be in the file.
func ReadHousingUnits(r io.Reader, regions []Region) error {
	t, err := readCSV(r, append([]string{"state_name"}, UnitTypes...)...)
	if err != nil {
		return err
	}
	rows := make(map[string]int)
	for i := range t.Rows {
		rows[strings.ToLower(t.Row(i).Get("state_name"))] = i
	}
	for j, reg := range regions {
		i, ok := rows[strings.ToLower(reg.Name)]
		if !ok {
			return fmt.Errorf("cementflow: no housing units for region %s", reg.Name)
		}
		units := make([]float64, len(UnitTypes))
		for k, col := range UnitTypes {
			if units[k], err = float(t, i, col); err != nil {
				return err
			}
		}
		regions[j].Units = units
	}
	return nil
}

// ReadSpending sets the Spending of each region from a CSV file with
// a year column and one column of annual construction spending per
// region, named by the region's abbreviation.
func ReadSpending(r io.Reader, regions []Region) error {
	cols := []string{"year"}
	for _, reg := range regions {
		cols = append(cols, strings.ToLower(reg.Abbrev))
	}
	t, err := readCSV(r, cols...)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		return fmt.Errorf("cementflow: construction spending file has no rows")
	}
	for j := range regions {
		v := make([]float64, t.Len())
		for i := range t.Rows {
			if v[i], err = float(t, i, cols[j+1]); err != nil {
				return err
			}
		}
		regions[j].Spending = v
	}
	return nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// timeSeriesRecords returns the header and rows of ts.
func timeSeriesRecords(ts *TimeSeries) [][]string {
	h := []string{"year"}
	for _, b := range BuildingTypes {
		h = append(h, b.String())
	}
	recs := [][]string{append(h, "total")}
	for i, y := range ts.Years {
		r := []string{strconv.Itoa(y)}
		for _, b := range BuildingTypes {
			r = append(r, ftoa(ts.Stocks[i][b]))
		}
		recs = append(recs, append(r, ftoa(ts.Stocks[i].Total())))
	}
	return recs
}

func inflowRecords(in *Inflows) [][]string {
	h := []string{"year", "concrete_available_mt", "concrete_to_buildings_mt"}
	for _, b := range BuildingTypes {
		h = append(h, b.String()+"_concrete_mt")
	}
	recs := [][]string{h}
	for i, y := range in.Years {
		r := []string{strconv.Itoa(y), ftoa(in.Concrete[i]), ftoa(in.ToBuildings[i])}
		for _, b := range BuildingTypes {
			r = append(r, ftoa(in.ByType[b][i]))
		}
		recs = append(recs, r)
	}
	return recs
}

func spatialRecords(results []RegionStock) [][]string {
	h := []string{"state", "state_abbrev"}
	for _, b := range BuildingTypes {
		h = append(h, b.String()+"_stock")
	}
	h = append(h, "total_stock", "population", "gdp", "floor_area", "stock_per_capita")
	recs := [][]string{h}
	for _, res := range results {
		r := []string{res.Name, res.Abbrev}
		for _, b := range BuildingTypes {
			r = append(r, ftoa(res.Stocks[b]))
		}
		r = append(r, ftoa(res.Total), ftoa(res.Population), ftoa(res.GDP),
			ftoa(res.FloorArea), ftoa(res.PerCapita))
		recs = append(recs, r)
	}
	return recs
}

func writeCSV(w io.Writer, recs [][]string) error {
	if err := table.New(recs[0], recs[1:]...).WriteCSV(w); err != nil {
		return fmt.Errorf("cementflow: %w", err)
	}
	return nil
}

// WriteTimeSeriesCSV writes the stock in each year of ts, with one
// column per building type and a total column.
func WriteTimeSeriesCSV(w io.Writer, ts *TimeSeries) error {
	return writeCSV(w, timeSeriesRecords(ts))
}

// WriteInflowsCSV writes the annual concrete inflows.
func WriteInflowsCSV(w io.Writer, in *Inflows) error {
	return writeCSV(w, inflowRecords(in))
}

// WriteSpatialCSV writes the stock allocated to each region.
func WriteSpatialCSV(w io.Writer, results []RegionStock) error {
	return writeCSV(w, spatialRecords(results))
}

// WriteWorkbook writes an XLSX workbook with one sheet each for the
// stock time series, the inflows, and the spatial results. Any of the
// arguments may be nil, in which case its sheet is omitted.
func WriteWorkbook(w io.Writer, ts *TimeSeries, in *Inflows, results []RegionStock) error {
	f := excelize.NewFile()
	defer f.Close()
	type sheet struct {
		name string
		recs [][]string
	}
	var sheets []sheet
	if ts != nil {
		sheets = append(sheets, sheet{"stock", timeSeriesRecords(ts)})
	}
	if in != nil {
		sheets = append(sheets, sheet{"inflows", inflowRecords(in)})
	}
	if results != nil {
		sheets = append(sheets, sheet{"spatial", spatialRecords(results)})
	}
	if len(sheets) == 0 {
		return fmt.Errorf("cementflow: no results to write to workbook")
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("cementflow: writing workbook: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("cementflow: writing workbook: %w", err)
		}
		for r, rec := range s.recs {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			row := make([]interface{}, len(rec))
			for j, v := range rec {
				if x, err := strconv.ParseFloat(v, 64); err == nil && r > 0 && !(s.name == "spatial" && j < 2) {
					row[j] = x
				} else {
					row[j] = v
				}
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("cementflow: writing workbook: %w", err)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("cementflow: writing workbook: %w", err)
	}
	return nil
}
