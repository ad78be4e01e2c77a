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

// Package ghgrp extracts cement producers from the EPA Greenhouse Gas
// Reporting Program (GHGRP) data sets, where cement plants report
// under subpart H.
package ghgrp

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow/internal/table"
)

// Column names in the GHGRP data.
const (
	IndustryType     = "Industry Type (subparts)"
	FacilityID       = "Facility Id"
	FacilityName     = "Facility Name"
	City             = "City"
	State            = "State"
	ZipCode          = "Zip Code"
	Address          = "Address"
	County           = "County"
	Latitude         = "Latitude"
	Longitude        = "Longitude"
	NAICS            = "Primary NAICS Code"
	CementProduction = "Cement Production"
	YearColumn       = "year"
)

// cementIndustryTypes are the subpart lists of facilities that
// produce cement.
var cementIndustryTypes = map[string]bool{"C,H": true, "H": true}

// CleanCementProducers keeps the facilities in a GHGRP data set that
// report under subpart H, and the columns describing their location
// and cement production.
func CleanCementProducers(t *table.Table) (*table.Table, error) {
	if err := t.Require(IndustryType); err != nil {
		return nil, fmt.Errorf("ghgrp: %w", err)
	}
	t = t.Filter(func(r table.Row) bool { return cementIndustryTypes[r.Get(IndustryType)] })
	o, err := t.Select(FacilityID, FacilityName, City, State, ZipCode, Address, County,
		Latitude, Longitude, NAICS, CementProduction)
	if err != nil {
		return nil, fmt.Errorf("ghgrp: cleaning cement producers: %w", err)
	}
	return o, nil
}

var yearPattern = regexp.MustCompile(`cement_production_(\d{4})`)

// FileYear returns the reporting year in a file name such as
// cement_production_2021.csv.
func FileYear(path string) (int, bool) {
	m := yearPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	return y, err == nil
}

// MergeYears stacks cleaned tables from several reporting years,
// adding a year column taken from each file name. Files whose names
// have no year are skipped with a warning.
func MergeYears(files map[string]*table.Table, log logrus.FieldLogger) (*table.Table, error) {
	var tables []*table.Table
	for _, path := range sortedPaths(files) {
		year, ok := FileYear(path)
		if !ok {
			log.WithField("file", path).Warn("couldn't extract year from file name; skipping")
			continue
		}
		y := strconv.Itoa(year)
		tables = append(tables, files[path].AddColumn(YearColumn, func(table.Row) string { return y }))
		log.WithFields(logrus.Fields{"file": path, "year": year, "rows": files[path].Len()}).Debug("merging cement producers")
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("ghgrp: no files with a year in the name")
	}
	return table.Concat(tables...), nil
}

func sortedPaths(files map[string]*table.Table) []string {
	o := make([]string, 0, len(files))
	for p := range files {
		o = append(o, p)
	}
	sort.Strings(o)
	return o
}

// Column names in the state summary.
const (
	TotalProduction          = "Total_Production"
	AvgProductionPerFacility = "Avg_Production_Per_Facility"
	NumProducingFacilities   = "Num_Cement_Production_Facilities"
	TotalFacilities          = "Total_Facilities"
)

// StateSummary summarizes the cement producers in t by state: total and
// average production, the number of facilities reporting production,
// and the number of facilities. Rows without a state or a production
// value are dropped first. States are sorted by total production,
// largest first.
func StateSummary(t *table.Table) (*table.Table, error) {
	if err := t.Require(State, CementProduction, FacilityName); err != nil {
		return nil, fmt.Errorf("ghgrp: %w", err)
	}
	t = t.DropMissing(State, CementProduction)
	g, err := t.GroupBy([]string{State},
		table.Agg{Column: CementProduction, Name: TotalProduction, Func: table.Sum},
		table.Agg{Column: CementProduction, Name: AvgProductionPerFacility, Func: table.Mean},
		table.Agg{Column: CementProduction, Name: NumProducingFacilities, Func: table.Count},
		table.Agg{Column: FacilityName, Name: TotalFacilities, Func: table.Count},
	)
	if err != nil {
		return nil, fmt.Errorf("ghgrp: summarizing by state: %w", err)
	}
	return g.SortFloat(TotalProduction, true)
}

// National holds national totals of cement production.
type National struct {
	TotalProduction float64
	Facilities      int
	States          int
	MeanProduction  float64
	TopState        string
	TopProduction   float64
}

// NationalSummary calculates national totals from the cement producers
// in t and the state summary from StateSummary.
func NationalSummary(t, stateSummary *table.Table) (*National, error) {
	t = t.DropMissing(State, CementProduction)
	prod, err := t.Floats(CementProduction)
	if err != nil {
		return nil, fmt.Errorf("ghgrp: %w", err)
	}
	n := &National{Facilities: len(prod), States: stateSummary.Len()}
	for _, p := range prod {
		n.TotalProduction += p
	}
	n.MeanProduction = math.NaN()
	if len(prod) > 0 {
		n.MeanProduction = n.TotalProduction / float64(len(prod))
	}
	if stateSummary.Len() > 0 {
		top := stateSummary.Row(0)
		n.TopState = top.Get(State)
		if n.TopProduction, err = top.Float(TotalProduction); err != nil {
			return nil, fmt.Errorf("ghgrp: %w", err)
		}
	}
	return n, nil
}
